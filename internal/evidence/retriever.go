package evidence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/LewisWJackson/confirmd-sub001/internal/cache"
	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// Retriever finds and grades evidence for a claim. Backend failures
// degrade to an empty result set so verdict synthesis can still proceed.
type Retriever struct {
	backend  SearchBackend
	grader   *Grader
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRetriever wires the backend, grader, cache and rate limiter.
func NewRetriever(backend SearchBackend, grader *Grader, cfg model.SearchConfig, logger *zap.Logger) *Retriever {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Retriever{
		backend:  backend,
		grader:   grader,
		cache:    cache.NewMemoryCache(ttl, 2*ttl),
		cacheTTL: ttl,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		logger:   logger,
	}
}

// Retrieve searches for corroborating/refuting material and grades each
// hit. It never returns an error; a degraded (empty) result is a valid
// outcome for the synthesizer.
func (r *Retriever) Retrieve(ctx context.Context, claim model.Claim) []model.EvidenceItem {
	hits := r.search(ctx, claim)
	if len(hits) == 0 {
		return nil
	}

	now := time.Now().UTC()
	items := make([]model.EvidenceItem, 0, len(hits))
	for _, hit := range hits {
		items = append(items, model.EvidenceItem{
			ID:          uuid.NewString(),
			ClaimID:     claim.ID,
			URL:         hit.URL,
			Publisher:   hit.Publisher,
			Excerpt:     hit.Excerpt,
			Stance:      r.grader.Stance(hit),
			Grade:       r.grader.Grade(hit),
			RetrievedAt: now,
			PublishedAt: hit.PublishedAt,
		})
	}

	markPrimary(items)
	return items
}

func (r *Retriever) search(ctx context.Context, claim model.Claim) []SearchHit {
	key := cache.SearchKey(claim.Text, claim.Assets)
	if cached, ok := r.cache.Get(key); ok {
		var hits []SearchHit
		if err := json.Unmarshal(cached, &hits); err == nil {
			return hits
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("evidence search rate wait aborted",
			zap.String("claim_id", claim.ID), zap.Error(err))
		return nil
	}

	hits, err := r.backend.Search(ctx, claim.Text, claim.Assets)
	if err != nil {
		// Backend unavailable means zero evidence found, not a failure
		// of the claim's pipeline.
		r.logger.Warn("evidence search failed",
			zap.String("claim_id", claim.ID),
			zap.String("backend", r.backend.Name()),
			zap.Error(err))
		return nil
	}

	if encoded, err := json.Marshal(hits); err == nil {
		_ = r.cache.Set(key, encoded, r.cacheTTL)
	}
	return hits
}

// markPrimary flags the single strongest piece of evidence as the
// canonical citation: best grade, stance-taking over neutral.
func markPrimary(items []model.EvidenceItem) {
	best := -1
	bestRank := -1.0
	for i, item := range items {
		rank := item.Grade.Weight()
		if item.Stance != model.StanceMentions {
			rank += 0.5
		}
		if rank > bestRank {
			bestRank = rank
			best = i
		}
	}
	if best >= 0 {
		items[best].Primary = true
	}
}
