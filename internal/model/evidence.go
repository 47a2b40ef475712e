package model

import "time"

// Stance is the position a piece of evidence takes on a claim,
// classified independently of its grade.
type Stance string

const (
	StanceSupports    Stance = "supports"
	StanceContradicts Stance = "contradicts"
	StanceMentions    Stance = "mentions" // neutral reference without taking a position
)

// Grade is the evidence ladder: A = primary/authoritative, D = speculative.
type Grade string

const (
	GradeA Grade = "A" // regulator, official project channel, verifiable on-chain data
	GradeB Grade = "B" // reputable secondary outlet directly citing a primary source
	GradeC Grade = "C" // aggregator or unsourced secondary reporting
	GradeD Grade = "D" // anonymous/influencer/rumor-tier material
)

// Weight maps the grade onto the A=4..D=1 ladder used by the synthesizer.
func (g Grade) Weight() float64 {
	switch g {
	case GradeA:
		return 4
	case GradeB:
		return 3
	case GradeC:
		return 2
	default:
		return 1
	}
}

// Authoritative reports whether the grade sits on the A/B rungs.
func (g Grade) Authoritative() bool {
	return g == GradeA || g == GradeB
}

// EvidenceItem is one piece of supporting/opposing material for a claim.
// Append-only within a verification round.
type EvidenceItem struct {
	ID          string    `json:"id"`
	ClaimID     string    `json:"claim_id"`
	URL         string    `json:"url"`
	Publisher   string    `json:"publisher,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Stance      Stance    `json:"stance"`
	Grade       Grade     `json:"grade"`
	Primary     bool      `json:"primary"` // the single canonical citation for the claim
	RetrievedAt time.Time `json:"retrieved_at"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
