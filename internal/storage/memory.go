package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// MemoryStore is the in-memory Store implementation used by tests and
// single-shot CLI runs.
type MemoryStore struct {
	mu sync.RWMutex

	items       map[string]model.Item
	itemsByHash map[string]string // content hash -> item id
	claims      map[string]model.Claim
	evidence    map[string][]model.EvidenceItem // claim id -> append-only list
	verdicts    map[string][]model.Verdict      // claim id -> ordered log
	resolutions map[string]model.Resolution     // claim id -> resolution
	sources     map[string]model.Source
	scores      map[string][]model.SourceScore  // source id -> snapshots
	outcomes    map[string][]model.ClaimOutcome // source id -> history
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:       make(map[string]model.Item),
		itemsByHash: make(map[string]string),
		claims:      make(map[string]model.Claim),
		evidence:    make(map[string][]model.EvidenceItem),
		verdicts:    make(map[string][]model.Verdict),
		resolutions: make(map[string]model.Resolution),
		sources:     make(map[string]model.Source),
		scores:      make(map[string][]model.SourceScore),
		outcomes:    make(map[string][]model.ClaimOutcome),
	}
}

func (s *MemoryStore) SaveItem(_ context.Context, item model.Item) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.itemsByHash[item.ContentHash]; ok {
		return s.items[existingID], ErrDuplicate
	}

	s.items[item.ID] = item
	s.itemsByHash[item.ContentHash] = item.ID
	return item, nil
}

func (s *MemoryStore) GetItem(_ context.Context, id string) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return model.Item{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) GetItemByHash(_ context.Context, hash string) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.itemsByHash[hash]
	if !ok {
		return model.Item{}, ErrNotFound
	}
	return s.items[id], nil
}

func (s *MemoryStore) SaveClaim(_ context.Context, claim model.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[claim.ItemID]; !ok {
		return ErrNotFound
	}
	s.claims[claim.ID] = claim
	return nil
}

func (s *MemoryStore) GetClaim(_ context.Context, id string) (model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.claims[id]
	if !ok {
		return model.Claim{}, ErrNotFound
	}
	return claim, nil
}

func (s *MemoryStore) UpdateClaimStatus(_ context.Context, id string, status model.ClaimStatus, sub model.ReviewSubStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim, ok := s.claims[id]
	if !ok {
		return ErrNotFound
	}
	if regresses(claim.Status, status) {
		return ErrConflict
	}
	claim.Status = status
	claim.SubStatus = sub
	s.claims[id] = claim
	return nil
}

// regresses reports whether moving from -> to would walk the lifecycle
// backward. Status only advances: unreviewed -> reviewed -> resolved.
func regresses(from, to model.ClaimStatus) bool {
	rank := map[model.ClaimStatus]int{
		model.StatusUnreviewed: 0,
		model.StatusReviewed:   1,
		model.StatusResolved:   2,
	}
	return rank[to] < rank[from]
}

func (s *MemoryStore) ClaimsByItem(_ context.Context, itemID string) ([]model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Claim
	for _, c := range s.claims {
		if c.ItemID == itemID {
			out = append(out, c)
		}
	}
	sortClaims(out)
	return out, nil
}

func (s *MemoryStore) ClaimsByStatus(_ context.Context, status model.ClaimStatus) ([]model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Claim
	for _, c := range s.claims {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sortClaims(out)
	return out, nil
}

func sortClaims(claims []model.Claim) {
	sort.Slice(claims, func(i, j int) bool {
		if claims[i].CreatedAt.Equal(claims[j].CreatedAt) {
			return claims[i].ID < claims[j].ID
		}
		return claims[i].CreatedAt.Before(claims[j].CreatedAt)
	})
}

func (s *MemoryStore) DeleteClaim(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[id]; !ok {
		return ErrNotFound
	}
	delete(s.claims, id)
	delete(s.evidence, id)
	delete(s.verdicts, id)
	delete(s.resolutions, id)
	return nil
}

func (s *MemoryStore) AppendEvidence(_ context.Context, items []model.EvidenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range items {
		if _, ok := s.claims[ev.ClaimID]; !ok {
			return ErrNotFound
		}
		s.evidence[ev.ClaimID] = append(s.evidence[ev.ClaimID], ev)
	}
	return nil
}

func (s *MemoryStore) EvidenceByClaim(_ context.Context, claimID string) ([]model.EvidenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.EvidenceItem, len(s.evidence[claimID]))
	copy(out, s.evidence[claimID])
	return out, nil
}

func (s *MemoryStore) AppendVerdict(_ context.Context, v model.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[v.ClaimID]; !ok {
		return ErrNotFound
	}
	s.verdicts[v.ClaimID] = append(s.verdicts[v.ClaimID], v)
	return nil
}

func (s *MemoryStore) VerdictHistory(_ context.Context, claimID string) ([]model.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Verdict, len(s.verdicts[claimID]))
	copy(out, s.verdicts[claimID])
	return out, nil
}

func (s *MemoryStore) CurrentVerdict(_ context.Context, claimID string) (model.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.verdicts[claimID]
	if len(log) == 0 {
		return model.Verdict{}, ErrNotFound
	}
	return log[len(log)-1], nil
}

func (s *MemoryStore) SaveResolution(_ context.Context, r model.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[r.ClaimID]; !ok {
		return ErrNotFound
	}
	if _, exists := s.resolutions[r.ClaimID]; exists {
		return ErrConflict
	}
	s.resolutions[r.ClaimID] = r
	return nil
}

func (s *MemoryStore) GetResolution(_ context.Context, claimID string) (model.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resolutions[claimID]
	if !ok {
		return model.Resolution{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) SaveSource(_ context.Context, src model.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources[src.ID] = src
	return nil
}

func (s *MemoryStore) GetSource(_ context.Context, id string) (model.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[id]
	if !ok {
		return model.Source{}, ErrNotFound
	}
	return src, nil
}

func (s *MemoryStore) ListSources(_ context.Context) ([]model.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Source, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SaveSourceScore(_ context.Context, score model.SourceScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scores[score.SourceID] = append(s.scores[score.SourceID], score)
	return nil
}

func (s *MemoryStore) LatestSourceScore(_ context.Context, sourceID string) (model.SourceScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := s.scores[sourceID]
	if len(snapshots) == 0 {
		return model.SourceScore{}, ErrNotFound
	}
	latest := snapshots[0]
	for _, snap := range snapshots[1:] {
		if snap.ComputedAt.After(latest.ComputedAt) {
			latest = snap
		}
	}
	return latest, nil
}

func (s *MemoryStore) AppendOutcome(_ context.Context, o model.ClaimOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One outcome per (claim, source); a repeat is a no-op so a claim
	// never counts twice in the credibility sample.
	for _, existing := range s.outcomes[o.SourceID] {
		if existing.ClaimID == o.ClaimID {
			return nil
		}
	}
	s.outcomes[o.SourceID] = append(s.outcomes[o.SourceID], o)
	return nil
}

func (s *MemoryStore) OutcomesBySource(_ context.Context, sourceID string) ([]model.ClaimOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ClaimOutcome, len(s.outcomes[sourceID]))
	copy(out, s.outcomes[sourceID])
	return out, nil
}
