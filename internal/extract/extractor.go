package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LewisWJackson/confirmd-sub001/internal/llm"
	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

const extractSystemPrompt = `You are a claim extraction engine for crypto news and social content.
Extract atomic, falsifiable claims from the provided content.

Rules:
- Each claim must be a single assertion that could in principle be proven true or false.
- type must be one of: regulatory_action, exploit_or_hack, price_prediction, partnership, listing, onchain_activity, fundraising, rumor, misc_claim.
- resolution_type must be one of: immediate (checkable now), scheduled (checkable at resolve_by), indefinite.
- falsifiability and confidence are floats in [0,1].
- assets are ticker symbols without the $ prefix.
- Respond with JSON only, no prose, using snake_case keys:
{"claims": [{"text": "...", "type": "...", "assets": ["BTC"], "asserted_at": "RFC3339", "resolution_type": "...", "resolve_by": "RFC3339 or empty", "falsifiability": 0.0, "confidence": 0.0, "notes": ""}]}
- If the content contains no typed claim, return {"claims": []}.`

// claimCandidate is an extracted claim before it gets identity and
// lifecycle state.
type claimCandidate struct {
	Text           string
	Type           model.ClaimType
	Assets         []string
	AssertedAt     time.Time
	ResolutionType model.ResolutionType
	ResolveBy      *time.Time
	Falsifiability float64
	Confidence     float64
	Notes          string
}

// Extractor turns one ingested item into zero or more claims. Model-backed
// when a provider is configured, keyword-rule-based otherwise; either way
// a non-empty item always yields at least one claim.
type Extractor struct {
	provider   llm.Provider // nil selects the rule-based path
	maxRetries int
	logger     *zap.Logger
}

// NewExtractor creates an extractor. provider may be nil for the
// rule-based degraded mode.
func NewExtractor(provider llm.Provider, maxRetries int, logger *zap.Logger) *Extractor {
	return &Extractor{
		provider:   provider,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Extract runs extraction for one item. It never returns an error for
// model or parse failures; those degrade to the rule path so one bad item
// cannot abort a batch.
func (e *Extractor) Extract(ctx context.Context, item model.Item) []model.Claim {
	if strings.TrimSpace(item.RawText) == "" {
		return nil
	}

	candidates := e.candidates(ctx, item)

	claims := make([]model.Claim, 0, len(candidates))
	for _, c := range candidates {
		assertedAt := c.AssertedAt
		if assertedAt.IsZero() {
			assertedAt = item.PublishedAt
		}
		claims = append(claims, model.Claim{
			ID:                uuid.NewString(),
			ItemID:            item.ID,
			SourceID:          item.SourceID,
			Text:              c.Text,
			Type:              c.Type,
			Assets:            c.Assets,
			AssertedAt:        assertedAt,
			ResolutionType:    c.ResolutionType,
			ResolveBy:         c.ResolveBy,
			Falsifiability:    c.Falsifiability,
			InitialConfidence: c.Confidence,
			Status:            model.StatusUnreviewed,
			Notes:             c.Notes,
			CreatedAt:         time.Now().UTC(),
		})
	}
	return claims
}

func (e *Extractor) candidates(ctx context.Context, item model.Item) []claimCandidate {
	if e.provider == nil {
		return ruleExtract(item)
	}

	raw, err := llm.CompleteWithRetry(ctx, e.provider, e.maxRetries, extractSystemPrompt, buildExtractPrompt(item))
	if err != nil {
		e.logger.Warn("claim extraction model call failed, using rule path",
			zap.String("item_id", item.ID), zap.Error(err))
		return ruleExtract(item)
	}

	candidates, ok := parseClaims(raw, item.PublishedAt)
	if !ok {
		e.logger.Warn("claim extraction output unparseable, using rule path",
			zap.String("item_id", item.ID))
		return ruleExtract(item)
	}

	if len(candidates) == 0 {
		// The model found nothing typed; keep the item traceable.
		return ruleExtract(item)
	}
	return candidates
}

func buildExtractPrompt(item model.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source item (%s)\n", item.ItemType)
	if item.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", item.Title)
	}
	if item.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", item.URL)
	}
	if !item.PublishedAt.IsZero() {
		fmt.Fprintf(&b, "Published: %s\n", item.PublishedAt.Format(time.RFC3339))
	}
	b.WriteString("\nContent:\n")
	b.WriteString(NormalizeText(item.RawText))
	return b.String()
}
