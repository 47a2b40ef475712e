package model

import "testing"

func TestContentHash_NormalizesWhitespace(t *testing.T) {
	a := ContentHash("BTC ETF approved, sources say.")
	b := ContentHash("  BTC\n\tETF   approved, sources say.  ")
	c := ContentHash("BTC ETF rejected, sources say.")

	if a != b {
		t.Error("whitespace variants must hash identically")
	}
	if a == c {
		t.Error("different content must hash differently")
	}
}

func TestCoerceClaimType(t *testing.T) {
	if got := CoerceClaimType("exploit_or_hack"); got != ClaimTypeExploitOrHack {
		t.Errorf("got %s", got)
	}
	if got := CoerceClaimType("alien_invasion"); got != ClaimTypeMisc {
		t.Errorf("unknown type = %s, want misc_claim", got)
	}
}

func TestCoerceResolutionType(t *testing.T) {
	if got := CoerceResolutionType("scheduled"); got != ResolutionScheduled {
		t.Errorf("got %s", got)
	}
	if got := CoerceResolutionType("eventually"); got != ResolutionIndefinite {
		t.Errorf("unknown type = %s, want indefinite", got)
	}
}

func TestCoerceVerdictLabel(t *testing.T) {
	if got := CoerceVerdictLabel("misleading"); got != LabelMisleading {
		t.Errorf("got %s", got)
	}
	if got := CoerceVerdictLabel("definitely_true"); got != LabelSpeculative {
		t.Errorf("unknown label = %s, want speculative", got)
	}
}

func TestGradeWeight(t *testing.T) {
	if GradeA.Weight() != 4 || GradeD.Weight() != 1 {
		t.Error("grade ladder weights off")
	}
	if !GradeB.Authoritative() || GradeC.Authoritative() {
		t.Error("authoritative boundary sits between B and C")
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0}, {0, 0}, {0.42, 0.42}, {1, 1}, {3.7, 1},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
