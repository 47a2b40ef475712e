package model

import "time"

// VerdictLabel is the synthesized conclusion class for a claim.
type VerdictLabel string

const (
	LabelVerified            VerdictLabel = "verified"
	LabelPlausibleUnverified VerdictLabel = "plausible_unverified"
	LabelSpeculative         VerdictLabel = "speculative"
	LabelMisleading          VerdictLabel = "misleading"
)

// CoerceVerdictLabel maps an untrusted label onto the enum; the safe
// default is speculative.
func CoerceVerdictLabel(s string) VerdictLabel {
	switch VerdictLabel(s) {
	case LabelVerified, LabelPlausibleUnverified, LabelSpeculative, LabelMisleading:
		return VerdictLabel(s)
	default:
		return LabelSpeculative
	}
}

// Verdict is the analyst conclusion for a claim at a point in time.
// Verdicts are append-only; the current verdict is the most recent.
type Verdict struct {
	ID                  string       `json:"id"`
	ClaimID             string       `json:"claim_id"`
	Label               VerdictLabel `json:"label"`
	ProbabilityTrue     float64      `json:"probability_true"`  // [0,1]
	EvidenceStrength    float64      `json:"evidence_strength"` // [0,1]
	KeyEvidenceIDs      []string     `json:"key_evidence_ids,omitempty"`
	Reasoning           string       `json:"reasoning"`
	InvalidationTrigger string       `json:"invalidation_trigger"` // required: what new evidence would flip this
	ModelVersion        string       `json:"model_version"`
	CreatedAt           time.Time    `json:"created_at"`
}

// ResolutionOutcome is the ground-truth result once a claim settles.
type ResolutionOutcome string

const (
	OutcomeTrue          ResolutionOutcome = "true"
	OutcomeFalse         ResolutionOutcome = "false"
	OutcomePartiallyTrue ResolutionOutcome = "partially_true"
	OutcomeUnresolved    ResolutionOutcome = "unresolved"
)

// Resolution records ground truth for a claim. At most one per claim;
// once created it is terminal for the claim's credibility contribution.
type Resolution struct {
	ID          string            `json:"id"`
	ClaimID     string            `json:"claim_id"`
	Outcome     ResolutionOutcome `json:"outcome"`
	ResolvedAt  time.Time         `json:"resolved_at"`
	EvidenceURL string            `json:"evidence_url,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}
