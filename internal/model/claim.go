package model

import "time"

// ClaimType is the closed taxonomy of claims the extractor may emit.
// Unrecognized values from untrusted model output are coerced to
// ClaimTypeMisc, never rejected.
type ClaimType string

const (
	ClaimTypeRegulatoryAction ClaimType = "regulatory_action"
	ClaimTypeExploitOrHack    ClaimType = "exploit_or_hack"
	ClaimTypePricePrediction  ClaimType = "price_prediction"
	ClaimTypePartnership      ClaimType = "partnership"
	ClaimTypeListing          ClaimType = "listing"
	ClaimTypeOnchainActivity  ClaimType = "onchain_activity"
	ClaimTypeFundraising      ClaimType = "fundraising"
	ClaimTypeRumor            ClaimType = "rumor"
	ClaimTypeMisc             ClaimType = "misc_claim"
)

// CoerceClaimType maps an untrusted type string onto the closed taxonomy.
func CoerceClaimType(s string) ClaimType {
	switch ClaimType(s) {
	case ClaimTypeRegulatoryAction, ClaimTypeExploitOrHack, ClaimTypePricePrediction,
		ClaimTypePartnership, ClaimTypeListing, ClaimTypeOnchainActivity,
		ClaimTypeFundraising, ClaimTypeRumor, ClaimTypeMisc:
		return ClaimType(s)
	default:
		return ClaimTypeMisc
	}
}

// ResolutionType describes how a claim can reach ground truth.
type ResolutionType string

const (
	ResolutionImmediate  ResolutionType = "immediate"  // resolvable as soon as a confident verdict exists
	ResolutionScheduled  ResolutionType = "scheduled"  // resolvable at/after ResolveBy
	ResolutionIndefinite ResolutionType = "indefinite" // only explicit ground-truth input resolves
)

// CoerceResolutionType maps an untrusted resolution type onto the enum.
func CoerceResolutionType(s string) ResolutionType {
	switch ResolutionType(s) {
	case ResolutionImmediate, ResolutionScheduled, ResolutionIndefinite:
		return ResolutionType(s)
	default:
		return ResolutionIndefinite
	}
}

// ClaimStatus is the lifecycle state. It only advances forward
// (unreviewed -> reviewed -> resolved), never backward.
type ClaimStatus string

const (
	StatusUnreviewed ClaimStatus = "unreviewed"
	StatusReviewed   ClaimStatus = "reviewed"
	StatusResolved   ClaimStatus = "resolved"
)

// ReviewSubStatus refines StatusReviewed.
type ReviewSubStatus string

const (
	SubStatusPendingRecheck    ReviewSubStatus = "pending_recheck"
	SubStatusSettledIndefinite ReviewSubStatus = "settled_indefinite"
)

// Claim is an atomic falsifiable assertion extracted from one item.
type Claim struct {
	ID                string          `json:"id"`
	ItemID            string          `json:"item_id"`
	SourceID          string          `json:"source_id"`
	Text              string          `json:"text"`
	Type              ClaimType       `json:"type"`
	Assets            []string        `json:"assets,omitempty"`
	AssertedAt        time.Time       `json:"asserted_at"`
	ResolutionType    ResolutionType  `json:"resolution_type"`
	ResolveBy         *time.Time      `json:"resolve_by,omitempty"`
	Falsifiability    float64         `json:"falsifiability"`     // [0,1]
	InitialConfidence float64         `json:"initial_confidence"` // [0,1]
	Status            ClaimStatus     `json:"status"`
	SubStatus         ReviewSubStatus `json:"sub_status,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	SupersedesID      string          `json:"supersedes_id,omitempty"` // correction path: new claim referencing a settled one
	CreatedAt         time.Time       `json:"created_at"`
}

// Clamp01 bounds a score to [0,1]. Every numeric field parsed from model
// output passes through this, since LLM output is untrusted.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
