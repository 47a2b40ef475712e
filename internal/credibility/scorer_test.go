package credibility

import (
	"math"
	"testing"
	"time"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

func testScorer() *Scorer {
	return NewScorer(model.DefaultConfig().Scoring)
}

func history(sourceID string, accurate, inaccurate int) []model.ClaimOutcome {
	var out []model.ClaimOutcome
	for i := 0; i < accurate; i++ {
		out = append(out, model.ClaimOutcome{
			SourceID: sourceID, Outcome: model.OutcomeTrue, Accurate: true,
			HadPrimaryEvidence: true, ResolvedAt: time.Now(),
		})
	}
	for i := 0; i < inaccurate; i++ {
		out = append(out, model.ClaimOutcome{
			SourceID: sourceID, Outcome: model.OutcomeFalse, Accurate: false,
			ResolvedAt: time.Now(),
		})
	}
	return out
}

func TestScore_EmptyHistory(t *testing.T) {
	score := testScorer().Score("src-1", nil)

	if score.TrackRecord != 50 {
		t.Errorf("track record = %v, want the 50 prior with no history", score.TrackRecord)
	}
	if score.SampleSize != 0 {
		t.Errorf("sample size = %v, want 0", score.SampleSize)
	}
	if score.CILow != 0 || score.CIHigh != 100 {
		t.Errorf("interval = [%v, %v], want [0, 100] with no data", score.CILow, score.CIHigh)
	}
	if score.ScoreVersion != ScoreVersion {
		t.Errorf("score version = %s, want %s", score.ScoreVersion, ScoreVersion)
	}
}

func TestScore_ShrinkageTowardPrior(t *testing.T) {
	s := testScorer()

	// Both sources run at 80% raw accuracy; only the sample sizes differ.
	small := s.Score("small", history("small", 4, 1))
	large := s.Score("large", history("large", 160, 40))

	smallGap := math.Abs(small.TrackRecord - 80)
	largeGap := math.Abs(large.TrackRecord - 80)

	if smallGap <= largeGap {
		t.Errorf("small sample (gap %v) should sit further from the raw ratio than large (gap %v)",
			smallGap, largeGap)
	}
	if small.TrackRecord <= 50 || small.TrackRecord >= 80 {
		t.Errorf("small-sample track record = %v, want strictly between prior 50 and raw 80", small.TrackRecord)
	}
	// (4 + 20*0.5) / (5 + 20) = 0.56
	if math.Abs(small.TrackRecord-56) > 1e-9 {
		t.Errorf("small-sample track record = %v, want 56", small.TrackRecord)
	}
}

func TestScore_IntervalNarrowsWithSample(t *testing.T) {
	s := testScorer()

	small := s.Score("small", history("small", 8, 2))
	large := s.Score("large", history("large", 80, 20))

	smallWidth := small.CIHigh - small.CILow
	largeWidth := large.CIHigh - large.CILow

	if largeWidth >= smallWidth {
		t.Errorf("interval width should narrow as the sample grows: %v (n=10) vs %v (n=100)",
			smallWidth, largeWidth)
	}
	if small.CILow < 0 || small.CIHigh > 100 {
		t.Errorf("interval [%v, %v] escapes [0, 100]", small.CILow, small.CIHigh)
	}
}

func TestScore_SkipsUnresolvedAndForeignOutcomes(t *testing.T) {
	s := testScorer()

	outcomes := append(history("src-1", 3, 1),
		model.ClaimOutcome{SourceID: "src-1", Outcome: model.OutcomeUnresolved},
		model.ClaimOutcome{SourceID: "other", Outcome: model.OutcomeTrue, Accurate: true},
	)

	score := s.Score("src-1", outcomes)
	if score.SampleSize != 4 {
		t.Errorf("sample size = %d, want 4 (unresolved and foreign outcomes excluded)", score.SampleSize)
	}
}

func TestScore_MethodDiscipline(t *testing.T) {
	s := testScorer()

	// Accurate but never with primary evidence.
	var outcomes []model.ClaimOutcome
	for i := 0; i < 40; i++ {
		outcomes = append(outcomes, model.ClaimOutcome{
			SourceID: "src-1", Outcome: model.OutcomeTrue, Accurate: true,
		})
	}

	score := s.Score("src-1", outcomes)
	if score.MethodDiscipline >= score.TrackRecord {
		t.Errorf("discipline %v should trail track record %v without primary evidence",
			score.MethodDiscipline, score.TrackRecord)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := testScorer()
	outcomes := history("src-1", 7, 3)

	a := s.Score("src-1", outcomes)
	b := s.Score("src-1", outcomes)

	if a.TrackRecord != b.TrackRecord || a.MethodDiscipline != b.MethodDiscipline ||
		a.CILow != b.CILow || a.CIHigh != b.CIHigh {
		t.Errorf("same history produced different scores: %+v vs %+v", a, b)
	}
}
