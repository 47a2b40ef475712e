package model

import "time"

// SourceType categorizes a publisher/handle/regulator entity.
type SourceType string

const (
	SourceTypeOutlet    SourceType = "outlet"
	SourceTypeHandle    SourceType = "handle"
	SourceTypeRegulator SourceType = "regulator"
	SourceTypeProject   SourceType = "project"
)

// Source is a publisher/handle/regulator entity whose claims get scored.
type Source struct {
	ID          string            `json:"id"`
	Type        SourceType        `json:"type"`
	Handle      string            `json:"handle"` // handle or domain
	DisplayName string            `json:"display_name,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// SourceScore is a versioned point-in-time credibility snapshot.
// Multiple snapshots per source; the current one is latest by ComputedAt.
type SourceScore struct {
	ID               string    `json:"id"`
	SourceID         string    `json:"source_id"`
	TrackRecord      float64   `json:"track_record"`      // [0,100], shrinkage-adjusted accuracy
	MethodDiscipline float64   `json:"method_discipline"` // [0,100], evidentiary process quality
	SampleSize       int       `json:"sample_size"`
	CILow            float64   `json:"ci_low"`  // [0,100]
	CIHigh           float64   `json:"ci_high"` // [0,100]
	ScoreVersion     string    `json:"score_version"`
	ComputedAt       time.Time `json:"computed_at"`
}

// ClaimOutcome is one resolved-claim signal in a source's history: did the
// source's assertion hold up, and did the automated verdict agree with
// ground truth. Appended only by the resolution engine.
type ClaimOutcome struct {
	ClaimID            string            `json:"claim_id"`
	SourceID           string            `json:"source_id"`
	Outcome            ResolutionOutcome `json:"outcome"`
	Accurate           bool              `json:"accurate"`             // assertion matched ground truth
	VerdictAgreed      bool              `json:"verdict_agreed"`       // final verdict matched the resolution
	HadPrimaryEvidence bool              `json:"had_primary_evidence"` // at least one A/B item in the claim's evidence
	ResolvedAt         time.Time         `json:"resolved_at"`
}
