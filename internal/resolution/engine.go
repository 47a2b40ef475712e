package resolution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
	"github.com/LewisWJackson/confirmd-sub001/internal/storage"
)

// Engine manages the claim lifecycle state machine:
// unreviewed -> reviewed -> resolved. Resolved is terminal; the only way
// past it is Correct, which creates a new claim record.
type Engine struct {
	store  storage.Store
	policy model.ScoringPolicy
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates a resolution engine over the given store.
func NewEngine(store storage.Store, policy model.ScoringPolicy, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		policy: policy,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OnVerdict advances an unreviewed claim to reviewed once its first
// verdict exists, then applies the auto-resolution rules. Returns the
// claim's updated view.
func (e *Engine) OnVerdict(ctx context.Context, claim model.Claim, v model.Verdict, evidence []model.EvidenceItem) (model.Claim, error) {
	if claim.Status == model.StatusResolved {
		// Terminal: a new verdict never moves a resolved claim.
		return claim, nil
	}

	if claim.Status == model.StatusUnreviewed {
		sub := model.SubStatusPendingRecheck
		if claim.ResolutionType == model.ResolutionIndefinite {
			sub = model.SubStatusSettledIndefinite
		}
		if err := e.store.UpdateClaimStatus(ctx, claim.ID, model.StatusReviewed, sub); err != nil {
			return claim, errors.Wrap(err, "advance to reviewed")
		}
		claim.Status = model.StatusReviewed
		claim.SubStatus = sub
	}

	return e.maybeResolve(ctx, claim, v, evidence)
}

// maybeResolve applies the automatic reviewed -> resolved transitions.
// Indefinite claims never auto-resolve.
func (e *Engine) maybeResolve(ctx context.Context, claim model.Claim, v model.Verdict, evidence []model.EvidenceItem) (model.Claim, error) {
	outcome, ok := e.autoOutcome(claim, v)
	if !ok {
		return claim, nil
	}

	if err := e.resolve(ctx, claim, outcome, primaryURL(evidence), "auto-resolved from verdict "+v.ID, v, evidence); err != nil {
		return claim, err
	}
	claim.Status = model.StatusResolved
	return claim, nil
}

func (e *Engine) autoOutcome(claim model.Claim, v model.Verdict) (model.ResolutionOutcome, bool) {
	high := e.policy.HighConfidence

	switch claim.ResolutionType {
	case model.ResolutionImmediate:
		if v.ProbabilityTrue >= high {
			return model.OutcomeTrue, true
		}
		if v.ProbabilityTrue <= 1-high {
			return model.OutcomeFalse, true
		}

	case model.ResolutionScheduled:
		deadlinePassed := claim.ResolveBy != nil && !claim.ResolveBy.After(e.now())
		if deadlinePassed {
			// Settle from the verdict we have at the deadline.
			switch {
			case v.ProbabilityTrue >= high:
				return model.OutcomeTrue, true
			case v.ProbabilityTrue <= 1-high:
				return model.OutcomeFalse, true
			case v.Label == model.LabelVerified:
				return model.OutcomePartiallyTrue, true
			default:
				return model.OutcomeUnresolved, true
			}
		}
		// Before the deadline only conclusive authoritative evidence
		// settles the claim.
		if v.Label == model.LabelVerified && v.ProbabilityTrue >= high {
			return model.OutcomeTrue, true
		}
		if v.Label == model.LabelMisleading && v.ProbabilityTrue <= 1-high {
			return model.OutcomeFalse, true
		}
	}

	return "", false
}

// Resolve is the explicit ground-truth path, the only one available for
// indefinite claims.
func (e *Engine) Resolve(ctx context.Context, claimID string, outcome model.ResolutionOutcome, evidenceURL, notes string) error {
	claim, err := e.store.GetClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if claim.Status == model.StatusResolved {
		return storage.ErrConflict
	}

	v, err := e.store.CurrentVerdict(ctx, claimID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	evidence, err := e.store.EvidenceByClaim(ctx, claimID)
	if err != nil {
		return err
	}

	return e.resolve(ctx, claim, outcome, evidenceURL, notes, v, evidence)
}

// resolve writes the resolution record, moves the claim to its terminal
// state, and feeds the outcome into the credibility history. This is the
// only path by which the scorer's sample grows.
func (e *Engine) resolve(ctx context.Context, claim model.Claim, outcome model.ResolutionOutcome, evidenceURL, notes string, v model.Verdict, evidence []model.EvidenceItem) error {
	resolvedAt := e.now()
	err := e.store.SaveResolution(ctx, model.Resolution{
		ID:          uuid.NewString(),
		ClaimID:     claim.ID,
		Outcome:     outcome,
		ResolvedAt:  resolvedAt,
		EvidenceURL: evidenceURL,
		Notes:       notes,
	})
	if err != nil {
		return errors.Wrap(err, "save resolution")
	}

	if err := e.store.UpdateClaimStatus(ctx, claim.ID, model.StatusResolved, claim.SubStatus); err != nil {
		return errors.Wrap(err, "mark resolved")
	}

	accurate := outcome == model.OutcomeTrue || outcome == model.OutcomePartiallyTrue
	agreed := (v.Label == model.LabelVerified && accurate) ||
		(v.Label == model.LabelMisleading && outcome == model.OutcomeFalse)

	outcomeRec := model.ClaimOutcome{
		ClaimID:            claim.ID,
		SourceID:           claim.SourceID,
		Outcome:            outcome,
		Accurate:           accurate,
		VerdictAgreed:      agreed,
		HadPrimaryEvidence: hasAuthoritative(evidence),
		ResolvedAt:         resolvedAt,
	}
	if err := e.store.AppendOutcome(ctx, outcomeRec); err != nil {
		return errors.Wrap(err, "append outcome")
	}

	e.logger.Info("claim resolved",
		zap.String("claim_id", claim.ID),
		zap.String("source_id", claim.SourceID),
		zap.String("outcome", string(outcome)))
	return nil
}

// Due returns reviewed claims awaiting a scheduled re-check: sub-status
// pending re-check with a resolve-by deadline set. Claims past their
// deadline are included so the next synthesis pass settles them.
func (e *Engine) Due(ctx context.Context) ([]model.Claim, error) {
	reviewed, err := e.store.ClaimsByStatus(ctx, model.StatusReviewed)
	if err != nil {
		return nil, err
	}

	var due []model.Claim
	for _, c := range reviewed {
		if c.SubStatus != model.SubStatusPendingRecheck {
			continue
		}
		if c.ResolutionType == model.ResolutionScheduled && c.ResolveBy == nil {
			continue
		}
		due = append(due, c)
	}
	return due, nil
}

// Correct opens a correction for a settled claim: a new unreviewed claim
// referencing the old one. Settled ground truth is never rewritten in
// place.
func (e *Engine) Correct(ctx context.Context, claimID, correctedText string) (model.Claim, error) {
	old, err := e.store.GetClaim(ctx, claimID)
	if err != nil {
		return model.Claim{}, err
	}
	if old.Status != model.StatusResolved {
		return model.Claim{}, errors.New("correction requires a resolved claim")
	}

	text := correctedText
	if text == "" {
		text = old.Text
	}

	corrected := old
	corrected.ID = uuid.NewString()
	corrected.Text = text
	corrected.Status = model.StatusUnreviewed
	corrected.SubStatus = ""
	corrected.SupersedesID = old.ID
	corrected.CreatedAt = e.now()

	if err := e.store.SaveClaim(ctx, corrected); err != nil {
		return model.Claim{}, errors.Wrap(err, "save corrected claim")
	}
	return corrected, nil
}

func primaryURL(evidence []model.EvidenceItem) string {
	for _, ev := range evidence {
		if ev.Primary {
			return ev.URL
		}
	}
	return ""
}

func hasAuthoritative(evidence []model.EvidenceItem) bool {
	for _, ev := range evidence {
		if ev.Grade.Authoritative() {
			return true
		}
	}
	return false
}
