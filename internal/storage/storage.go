package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// Sentinel errors surfaced to the orchestrator as structured conditions.
// A not-found or conflict on one unit of work skips that unit; only a
// failure to reach the store at all aborts a batch.
var (
	ErrNotFound  = errors.New("storage: not found")
	ErrConflict  = errors.New("storage: conflict")
	ErrDuplicate = errors.New("storage: duplicate content")
)

// Store is the persistence contract the pipeline depends on. The pipeline
// never assumes a specific engine; memory and Postgres implementations
// both satisfy this.
type Store interface {
	// Items. SaveItem enforces content-hash dedup: saving an item whose
	// hash already exists returns the stored item and ErrDuplicate.
	SaveItem(ctx context.Context, item model.Item) (model.Item, error)
	GetItem(ctx context.Context, id string) (model.Item, error)
	GetItemByHash(ctx context.Context, hash string) (model.Item, error)

	// Claims. Mutated only by status transitions and metadata merges.
	SaveClaim(ctx context.Context, claim model.Claim) error
	GetClaim(ctx context.Context, id string) (model.Claim, error)
	UpdateClaimStatus(ctx context.Context, id string, status model.ClaimStatus, sub model.ReviewSubStatus) error
	ClaimsByItem(ctx context.Context, itemID string) ([]model.Claim, error)
	ClaimsByStatus(ctx context.Context, status model.ClaimStatus) ([]model.Claim, error)
	// DeleteClaim cascades to the claim's evidence and verdicts.
	DeleteClaim(ctx context.Context, id string) error

	// Evidence: append-only within a verification round.
	AppendEvidence(ctx context.Context, items []model.EvidenceItem) error
	EvidenceByClaim(ctx context.Context, claimID string) ([]model.EvidenceItem, error)

	// Verdicts: an ordered log per claim. AppendVerdict never touches
	// prior entries; CurrentVerdict is the last entry of the log.
	AppendVerdict(ctx context.Context, v model.Verdict) error
	VerdictHistory(ctx context.Context, claimID string) ([]model.Verdict, error)
	CurrentVerdict(ctx context.Context, claimID string) (model.Verdict, error)

	// Resolutions: at most one per claim; a second save is ErrConflict.
	SaveResolution(ctx context.Context, r model.Resolution) error
	GetResolution(ctx context.Context, claimID string) (model.Resolution, error)

	// Sources and credibility snapshots.
	SaveSource(ctx context.Context, s model.Source) error
	GetSource(ctx context.Context, id string) (model.Source, error)
	ListSources(ctx context.Context) ([]model.Source, error)
	SaveSourceScore(ctx context.Context, score model.SourceScore) error
	LatestSourceScore(ctx context.Context, sourceID string) (model.SourceScore, error)

	// Outcome history feeding the credibility scorer. Appended only by
	// the resolution engine.
	AppendOutcome(ctx context.Context, o model.ClaimOutcome) error
	OutcomesBySource(ctx context.Context, sourceID string) ([]model.ClaimOutcome, error)
}
