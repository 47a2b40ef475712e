package resolution

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/LewisWJackson/confirmd-sub001/internal/logging"
	"github.com/LewisWJackson/confirmd-sub001/internal/model"
	"github.com/LewisWJackson/confirmd-sub001/internal/storage"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	engine := NewEngine(store, model.DefaultConfig().Scoring, logging.Nop())
	engine.now = func() time.Time { return testNow }
	return engine, store
}

func seedClaim(t *testing.T, store *storage.MemoryStore, resType model.ResolutionType, resolveBy *time.Time) model.Claim {
	t.Helper()
	ctx := context.Background()

	item := model.Item{ID: "i1", SourceID: "src-1", RawText: "content", ContentHash: model.ContentHash("content")}
	if _, err := store.SaveItem(ctx, item); err != nil && !errors.Is(err, storage.ErrDuplicate) {
		t.Fatal(err)
	}
	_ = store.SaveSource(ctx, model.Source{ID: "src-1", Type: model.SourceTypeOutlet, Handle: "src-1"})

	claim := model.Claim{
		ID:             "c1",
		ItemID:         "i1",
		SourceID:       "src-1",
		Text:           "test claim",
		Type:           model.ClaimTypeRegulatoryAction,
		ResolutionType: resType,
		ResolveBy:      resolveBy,
		Status:         model.StatusUnreviewed,
		CreatedAt:      testNow,
	}
	if err := store.SaveClaim(ctx, claim); err != nil {
		t.Fatal(err)
	}
	return claim
}

func verdictWith(p float64, label model.VerdictLabel) model.Verdict {
	return model.Verdict{
		ID:              "v1",
		ClaimID:         "c1",
		Label:           label,
		ProbabilityTrue: p,
	}
}

func TestOnVerdict_AdvancesToReviewed(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionIndefinite, nil)

	got, err := engine.OnVerdict(context.Background(), claim, verdictWith(0.5, model.LabelSpeculative), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusReviewed {
		t.Errorf("status = %s, want reviewed", got.Status)
	}
	if got.SubStatus != model.SubStatusSettledIndefinite {
		t.Errorf("sub-status = %s, want settled_indefinite", got.SubStatus)
	}
}

func TestOnVerdict_ScheduledGetsPendingRecheck(t *testing.T) {
	engine, store := newTestEngine(t)
	deadline := testNow.Add(48 * time.Hour)
	claim := seedClaim(t, store, model.ResolutionScheduled, &deadline)

	got, err := engine.OnVerdict(context.Background(), claim, verdictWith(0.6, model.LabelPlausibleUnverified), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusReviewed || got.SubStatus != model.SubStatusPendingRecheck {
		t.Errorf("got (%s, %s), want (reviewed, pending_recheck)", got.Status, got.SubStatus)
	}
}

func TestOnVerdict_ImmediateHighConfidenceResolves(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionImmediate, nil)
	ctx := context.Background()

	got, err := engine.OnVerdict(ctx, claim, verdictWith(0.95, model.LabelVerified), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusResolved {
		t.Fatalf("status = %s, want resolved at p=0.95", got.Status)
	}

	r, err := store.GetResolution(ctx, claim.ID)
	if err != nil {
		t.Fatal(err)
	}
	if r.Outcome != model.OutcomeTrue {
		t.Errorf("outcome = %s, want true", r.Outcome)
	}

	history, err := store.OutcomesBySource(ctx, "src-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("outcome history length = %d, want 1", len(history))
	}
	if !history[0].Accurate || !history[0].VerdictAgreed {
		t.Errorf("outcome record = %+v, want accurate and agreed", history[0])
	}
}

func TestOnVerdict_ImmediateLowConfidenceResolvesFalse(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionImmediate, nil)

	got, err := engine.OnVerdict(context.Background(), claim, verdictWith(0.05, model.LabelMisleading), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusResolved {
		t.Fatalf("status = %s, want resolved at p=0.05", got.Status)
	}

	r, _ := store.GetResolution(context.Background(), claim.ID)
	if r.Outcome != model.OutcomeFalse {
		t.Errorf("outcome = %s, want false", r.Outcome)
	}
}

func TestOnVerdict_ImmediateMidProbabilityStaysReviewed(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionImmediate, nil)

	got, err := engine.OnVerdict(context.Background(), claim, verdictWith(0.6, model.LabelPlausibleUnverified), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusReviewed {
		t.Errorf("status = %s, want reviewed at p=0.6", got.Status)
	}
}

func TestOnVerdict_IndefiniteNeverAutoResolves(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionIndefinite, nil)

	got, err := engine.OnVerdict(context.Background(), claim, verdictWith(0.98, model.LabelVerified), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status == model.StatusResolved {
		t.Error("indefinite claims must never auto-resolve, however confident the verdict")
	}
}

func TestOnVerdict_ScheduledDeadlinePassedSettles(t *testing.T) {
	engine, store := newTestEngine(t)
	deadline := testNow.Add(-time.Hour)
	claim := seedClaim(t, store, model.ResolutionScheduled, &deadline)

	got, err := engine.OnVerdict(context.Background(), claim, verdictWith(0.4, model.LabelSpeculative), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusResolved {
		t.Fatalf("status = %s, want resolved past deadline", got.Status)
	}

	r, _ := store.GetResolution(context.Background(), claim.ID)
	if r.Outcome != model.OutcomeUnresolved {
		t.Errorf("outcome = %s, want unresolved for an inconclusive verdict at deadline", r.Outcome)
	}
}

func TestOnVerdict_ScheduledEarlyConclusiveEvidence(t *testing.T) {
	engine, store := newTestEngine(t)
	deadline := testNow.Add(72 * time.Hour)
	claim := seedClaim(t, store, model.ResolutionScheduled, &deadline)

	got, err := engine.OnVerdict(context.Background(), claim, verdictWith(0.97, model.LabelVerified), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusResolved {
		t.Error("a conclusive verified verdict should settle a scheduled claim before its deadline")
	}
}

func TestOnVerdict_ResolvedIsTerminal(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionImmediate, nil)
	ctx := context.Background()

	got, err := engine.OnVerdict(ctx, claim, verdictWith(0.95, model.LabelVerified), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusResolved {
		t.Fatal("setup: claim should be resolved")
	}

	// A later contradicting verdict must not move it.
	again, err := engine.OnVerdict(ctx, got, verdictWith(0.05, model.LabelMisleading), nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != model.StatusResolved {
		t.Error("resolved is terminal")
	}

	r, _ := store.GetResolution(ctx, claim.ID)
	if r.Outcome != model.OutcomeTrue {
		t.Errorf("original outcome %s must stand", r.Outcome)
	}
}

func TestResolve_Explicit(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionIndefinite, nil)
	ctx := context.Background()

	if _, err := engine.OnVerdict(ctx, claim, verdictWith(0.7, model.LabelPlausibleUnverified), nil); err != nil {
		t.Fatal(err)
	}

	if err := engine.Resolve(ctx, claim.ID, model.OutcomePartiallyTrue, "https://sec.gov/x", "manual review"); err != nil {
		t.Fatal(err)
	}

	got, _ := store.GetClaim(ctx, claim.ID)
	if got.Status != model.StatusResolved {
		t.Errorf("status = %s, want resolved", got.Status)
	}

	history, _ := store.OutcomesBySource(ctx, "src-1")
	if len(history) != 1 || !history[0].Accurate {
		t.Errorf("partially_true should count as accurate: %+v", history)
	}

	// Re-resolving is a conflict.
	if err := engine.Resolve(ctx, claim.ID, model.OutcomeFalse, "", ""); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict on second resolve, got %v", err)
	}
}

func TestDue_FiltersPendingRecheck(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	deadline := testNow.Add(time.Hour)
	scheduled := seedClaim(t, store, model.ResolutionScheduled, &deadline)
	if _, err := engine.OnVerdict(ctx, scheduled, verdictWith(0.6, model.LabelPlausibleUnverified), nil); err != nil {
		t.Fatal(err)
	}

	indefinite := model.Claim{
		ID: "c2", ItemID: "i1", SourceID: "src-1",
		ResolutionType: model.ResolutionIndefinite,
		Status:         model.StatusReviewed,
		SubStatus:      model.SubStatusSettledIndefinite,
	}
	if err := store.SaveClaim(ctx, indefinite); err != nil {
		t.Fatal(err)
	}

	due, err := engine.Due(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != scheduled.ID {
		t.Errorf("due = %v, want only the pending re-check claim", due)
	}
}

func TestCorrect_SupersedesResolvedClaim(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionImmediate, nil)
	ctx := context.Background()

	if _, err := engine.OnVerdict(ctx, claim, verdictWith(0.95, model.LabelVerified), nil); err != nil {
		t.Fatal(err)
	}

	corrected, err := engine.Correct(ctx, claim.ID, "corrected wording")
	if err != nil {
		t.Fatal(err)
	}
	if corrected.ID == claim.ID {
		t.Error("correction must be a new claim record")
	}
	if corrected.SupersedesID != claim.ID {
		t.Errorf("supersedes = %s, want %s", corrected.SupersedesID, claim.ID)
	}
	if corrected.Status != model.StatusUnreviewed {
		t.Errorf("corrected status = %s, want unreviewed", corrected.Status)
	}
	if corrected.Text != "corrected wording" {
		t.Errorf("corrected text = %q", corrected.Text)
	}

	original, _ := store.GetClaim(ctx, claim.ID)
	if original.Status != model.StatusResolved {
		t.Error("original claim must stay resolved")
	}
}

func TestCorrect_RequiresResolvedClaim(t *testing.T) {
	engine, store := newTestEngine(t)
	claim := seedClaim(t, store, model.ResolutionIndefinite, nil)

	if _, err := engine.Correct(context.Background(), claim.ID, ""); err == nil {
		t.Error("correcting an unresolved claim must fail")
	}
}
