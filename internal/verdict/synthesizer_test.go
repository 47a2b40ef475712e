package verdict

import (
	"context"
	"math"
	"testing"

	"github.com/LewisWJackson/confirmd-sub001/internal/logging"
	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

func testSynthesizer() *Synthesizer {
	return NewSynthesizer(nil, model.DefaultConfig().Scoring, logging.Nop())
}

func ev(grade model.Grade, stance model.Stance) model.EvidenceItem {
	return model.EvidenceItem{ID: "ev-" + string(grade) + "-" + string(stance), ClaimID: "c1", Grade: grade, Stance: stance}
}

func TestSynthesize_AuthoritativeSupport(t *testing.T) {
	s := testSynthesizer()
	evidence := []model.EvidenceItem{
		ev(model.GradeA, model.StanceSupports),
		ev(model.GradeA, model.StanceSupports),
		ev(model.GradeB, model.StanceSupports),
		ev(model.GradeA, model.StanceSupports),
	}

	v := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, evidence)

	if v.Label != model.LabelVerified {
		t.Errorf("label = %s, want verified", v.Label)
	}
	if v.ProbabilityTrue < 0.9 {
		t.Errorf("probability = %v, want >= 0.9", v.ProbabilityTrue)
	}
	if v.ProbabilityTrue > 0.98 {
		t.Errorf("probability = %v, must not exceed the ceiling", v.ProbabilityTrue)
	}
	if len(v.KeyEvidenceIDs) == 0 || len(v.KeyEvidenceIDs) > 3 {
		t.Errorf("key evidence count = %d, want 1-3", len(v.KeyEvidenceIDs))
	}
}

func TestSynthesize_AuthoritativeContradiction(t *testing.T) {
	s := testSynthesizer()
	evidence := []model.EvidenceItem{
		ev(model.GradeD, model.StanceSupports),
		ev(model.GradeA, model.StanceContradicts),
	}

	v := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, evidence)

	if v.Label != model.LabelMisleading {
		t.Errorf("label = %s, want misleading", v.Label)
	}
	// Support mass 1 against contradiction mass 4.
	if math.Abs(v.ProbabilityTrue-0.2) > 1e-9 {
		t.Errorf("probability = %v, want 0.2", v.ProbabilityTrue)
	}
}

func TestSynthesize_ContradictionOutranksSupport(t *testing.T) {
	s := testSynthesizer()
	evidence := []model.EvidenceItem{
		ev(model.GradeA, model.StanceSupports),
		ev(model.GradeA, model.StanceSupports),
		ev(model.GradeA, model.StanceContradicts),
	}

	v := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, evidence)
	if v.Label != model.LabelMisleading {
		t.Errorf("label = %s; an authoritative contradiction above threshold must win", v.Label)
	}
}

func TestSynthesize_ZeroEvidence(t *testing.T) {
	s := testSynthesizer()

	v := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, nil)

	if v.Label != model.LabelSpeculative {
		t.Errorf("label = %s, want speculative", v.Label)
	}
	if v.EvidenceStrength != 0 {
		t.Errorf("strength = %v, want 0", v.EvidenceStrength)
	}
	if v.ProbabilityTrue != 0.5 {
		t.Errorf("probability = %v, want 0.5 with no stance mass", v.ProbabilityTrue)
	}
	if v.Reasoning == "" || v.InvalidationTrigger == "" {
		t.Error("zero-evidence verdict must still carry reasoning and an invalidation trigger")
	}
	if v.ModelVersion != RuleVersion {
		t.Errorf("model version = %s, want %s", v.ModelVersion, RuleVersion)
	}
}

func TestSynthesize_MentionsOnly(t *testing.T) {
	s := testSynthesizer()
	evidence := []model.EvidenceItem{
		ev(model.GradeA, model.StanceMentions),
		ev(model.GradeC, model.StanceMentions),
	}

	v := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, evidence)
	if v.Label != model.LabelSpeculative {
		t.Errorf("label = %s, want speculative when nothing takes a stance", v.Label)
	}
	if v.ProbabilityTrue != 0.5 {
		t.Errorf("probability = %v, want neutral 0.5", v.ProbabilityTrue)
	}
	if v.EvidenceStrength <= 0 {
		t.Error("mention-only evidence still contributes strength")
	}
}

func TestSynthesize_SupportMonotonicity(t *testing.T) {
	s := testSynthesizer()
	base := []model.EvidenceItem{
		ev(model.GradeB, model.StanceSupports),
		ev(model.GradeA, model.StanceContradicts),
	}

	before := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, base)
	after := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, append(base, ev(model.GradeC, model.StanceSupports)))

	if after.ProbabilityTrue < before.ProbabilityTrue {
		t.Errorf("adding supporting evidence lowered probability: %v -> %v",
			before.ProbabilityTrue, after.ProbabilityTrue)
	}
}

func TestSynthesize_ContradictionMonotonicity(t *testing.T) {
	s := testSynthesizer()
	base := []model.EvidenceItem{
		ev(model.GradeB, model.StanceSupports),
		ev(model.GradeC, model.StanceContradicts),
	}

	before := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, base)
	after := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, append(base, ev(model.GradeD, model.StanceContradicts)))

	if after.ProbabilityTrue > before.ProbabilityTrue {
		t.Errorf("adding contradicting evidence raised probability: %v -> %v",
			before.ProbabilityTrue, after.ProbabilityTrue)
	}
}

func TestSynthesize_BoundsAlwaysHold(t *testing.T) {
	s := testSynthesizer()
	grades := []model.Grade{model.GradeA, model.GradeB, model.GradeC, model.GradeD}
	stances := []model.Stance{model.StanceSupports, model.StanceContradicts, model.StanceMentions}

	var evidence []model.EvidenceItem
	for _, g := range grades {
		for _, st := range stances {
			evidence = append(evidence, ev(g, st))
			v := s.Synthesize(context.Background(), model.Claim{ID: "c1"}, evidence)
			if v.ProbabilityTrue < 0.02 || v.ProbabilityTrue > 0.98 {
				t.Errorf("probability %v outside [0.02, 0.98]", v.ProbabilityTrue)
			}
			if v.EvidenceStrength < 0 || v.EvidenceStrength > 1 {
				t.Errorf("strength %v outside [0, 1]", v.EvidenceStrength)
			}
		}
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	s := testSynthesizer()
	evidence := []model.EvidenceItem{
		ev(model.GradeB, model.StanceSupports),
		ev(model.GradeC, model.StanceContradicts),
		ev(model.GradeA, model.StanceMentions),
	}
	claim := model.Claim{ID: "c1", Text: "same input"}

	a := s.Synthesize(context.Background(), claim, evidence)
	b := s.Synthesize(context.Background(), claim, evidence)

	if a.Label != b.Label || a.ProbabilityTrue != b.ProbabilityTrue || a.EvidenceStrength != b.EvidenceStrength {
		t.Errorf("same evidence produced different verdicts: %+v vs %+v", a, b)
	}
}
