package verdict

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LewisWJackson/confirmd-sub001/internal/llm"
	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// RuleVersion tags verdicts produced without a model provider.
const RuleVersion = "rules-v1"

const reasoningSystemPrompt = `You summarize evidence assessments for crypto claims.
Write 2-3 sentences describing how well the evidence supports the claim.
Describe support quality only. Never assert the claim is true or false yourself.
Respond with plain text, no JSON, no markdown.`

// Synthesizer combines a claim with graded evidence into a verdict. The
// label, probability and strength are deterministic functions of grade
// and stance; the model provider only polishes the reasoning text.
type Synthesizer struct {
	provider llm.Provider // nil: count-based reasoning text
	policy   model.ScoringPolicy
	logger   *zap.Logger
}

// NewSynthesizer creates a synthesizer. provider may be nil.
func NewSynthesizer(provider llm.Provider, policy model.ScoringPolicy, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{provider: provider, policy: policy, logger: logger}
}

// tally holds the deterministic scoring inputs.
type tally struct {
	total        int
	supports     int
	contradicts  int
	supportMass  float64 // grade-weighted, A=4..D=1
	contraMass   float64
	qualitySum   float64
	hasABSupport bool
	hasABContra  bool
	hasAnyAB     bool
}

func tallyEvidence(evidence []model.EvidenceItem) tally {
	var t tally
	t.total = len(evidence)
	for _, ev := range evidence {
		w := ev.Grade.Weight()
		t.qualitySum += w
		if ev.Grade.Authoritative() {
			t.hasAnyAB = true
		}
		switch ev.Stance {
		case model.StanceSupports:
			t.supports++
			t.supportMass += w
			if ev.Grade.Authoritative() {
				t.hasABSupport = true
			}
		case model.StanceContradicts:
			t.contradicts++
			t.contraMass += w
			if ev.Grade.Authoritative() {
				t.hasABContra = true
			}
		}
	}
	return t
}

func (t tally) supportFrac() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.supports) / float64(t.total)
}

func (t tally) contraFrac() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.contradicts) / float64(t.total)
}

// Synthesize produces a verdict for the claim. Zero evidence yields a
// structurally valid speculative verdict, not an error.
func (s *Synthesizer) Synthesize(ctx context.Context, claim model.Claim, evidence []model.EvidenceItem) model.Verdict {
	t := tallyEvidence(evidence)

	label := s.decide(t)
	probability := s.probability(t)
	strength := s.strength(t)

	v := model.Verdict{
		ID:                  uuid.NewString(),
		ClaimID:             claim.ID,
		Label:               label,
		ProbabilityTrue:     probability,
		EvidenceStrength:    strength,
		KeyEvidenceIDs:      keyEvidence(evidence),
		InvalidationTrigger: invalidationTrigger(label, claim),
		ModelVersion:        s.version(),
		CreatedAt:           time.Now().UTC(),
	}
	v.Reasoning = s.reasoning(ctx, claim, t, v)
	return v
}

// decide applies the decision policy in precedence order; first match wins.
func (s *Synthesizer) decide(t tally) model.VerdictLabel {
	switch {
	case t.hasABContra && t.contraFrac() > s.policy.ContradictionThreshold:
		return model.LabelMisleading
	case t.hasABSupport && t.supportFrac() > s.policy.SupportThreshold:
		return model.LabelVerified
	case t.hasAnyAB && t.supportFrac() > s.policy.PlausibleThreshold:
		return model.LabelPlausibleUnverified
	default:
		return model.LabelSpeculative
	}
}

// probability is the grade-weighted support share of all stance-taking
// evidence, bounded away from certainty. Adding supporting evidence can
// only raise it; adding contradicting evidence can only lower it.
func (s *Synthesizer) probability(t tally) float64 {
	stanceMass := t.supportMass + t.contraMass
	if stanceMass == 0 {
		return 0.5
	}
	ratio := t.supportMass / stanceMass
	return clampRange(ratio, s.policy.ProbabilityFloor, s.policy.ProbabilityCeiling)
}

// strength blends grade quality with evidence volume.
func (s *Synthesizer) strength(t tally) float64 {
	if t.total == 0 {
		return 0
	}
	quality := t.qualitySum / (4 * float64(t.total))
	target := s.policy.TargetEvidenceCount
	if target <= 0 {
		target = 4
	}
	volume := float64(t.total) / float64(target)
	if volume > 1 {
		volume = 1
	}
	return model.Clamp01(quality * volume)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// keyEvidence picks the canonical citation plus the strongest remaining
// items as references.
func keyEvidence(evidence []model.EvidenceItem) []string {
	sorted := make([]model.EvidenceItem, len(evidence))
	copy(sorted, evidence)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Primary != sorted[j].Primary {
			return sorted[i].Primary
		}
		return sorted[i].Grade.Weight() > sorted[j].Grade.Weight()
	})

	var ids []string
	for i, ev := range sorted {
		if i >= 3 {
			break
		}
		ids = append(ids, ev.ID)
	}
	return ids
}

// invalidationTrigger states what new evidence would flip the verdict.
// The resolution engine depends on this being populated for every verdict.
func invalidationTrigger(label model.VerdictLabel, claim model.Claim) string {
	subject := "this claim"
	if len(claim.Assets) > 0 {
		subject = "this " + strings.Join(claim.Assets, "/") + " claim"
	}

	switch label {
	case model.LabelVerified:
		return fmt.Sprintf("An A-grade contradiction (regulator statement, official denial, or on-chain data) of %s would overturn this verdict.", subject)
	case model.LabelMisleading:
		return fmt.Sprintf("An A-grade confirmation (official filing, project announcement, or on-chain data) of %s would overturn this verdict.", subject)
	case model.LabelPlausibleUnverified:
		return fmt.Sprintf("A primary-source confirmation would upgrade %s to verified; an authoritative denial would downgrade it to misleading.", subject)
	default:
		return fmt.Sprintf("Any A/B-grade evidence taking a position on %s would change this verdict.", subject)
	}
}

func (s *Synthesizer) version() string {
	if s.provider == nil {
		return RuleVersion
	}
	return s.provider.Name() + "/" + RuleVersion
}

func (s *Synthesizer) reasoning(ctx context.Context, claim model.Claim, t tally, v model.Verdict) string {
	fallback := ruleReasoning(t, v.Label)
	if s.provider == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"Claim: %s\nEvidence: %d items total, %d supporting, %d contradicting. Computed label: %s, probability %.2f.\nSummarize the evidence situation.",
		claim.Text, t.total, t.supports, t.contradicts, v.Label, v.ProbabilityTrue)

	out, err := s.provider.Complete(ctx, reasoningSystemPrompt, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		if err != nil {
			s.logger.Debug("reasoning generation failed, using rule text",
				zap.String("claim_id", claim.ID), zap.Error(err))
		}
		return fallback
	}
	return strings.TrimSpace(out)
}

// ruleReasoning is the degraded-mode summary computed purely from
// grade/stance counts.
func ruleReasoning(t tally, label model.VerdictLabel) string {
	if t.total == 0 {
		return "No corroborating or contradicting evidence was found; the claim rests solely on the original source."
	}
	return fmt.Sprintf(
		"Of %d evidence items, %d support and %d contradict the claim; authoritative support: %t, authoritative contradiction: %t. Assessed as %s.",
		t.total, t.supports, t.contradicts, t.hasABSupport, t.hasABContra, label)
}
