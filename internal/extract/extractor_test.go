package extract

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/LewisWJackson/confirmd-sub001/internal/logging"
	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// fakeProvider returns a scripted completion.
type fakeProvider struct {
	response string
	err      error
	calls    int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(_ context.Context, _, _ string) (string, error) {
	p.calls++
	return p.response, p.err
}

func (p *fakeProvider) IsAvailable(_ context.Context) bool { return true }

func testItem(text string) model.Item {
	return model.Item{
		ID:          "item-1",
		SourceID:    "src-1",
		RawText:     text,
		ItemType:    model.ItemTypeArticle,
		PublishedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestExtract_ModelPath(t *testing.T) {
	provider := &fakeProvider{response: "```json\n" + `{"claims": [{
		"text": "The SEC charged ExampleCorp with fraud",
		"type": "regulatory_action",
		"assets": ["BTC"],
		"resolution_type": "immediate",
		"falsifiability": 0.9,
		"confidence": 0.8
	}]}` + "\n```"}

	e := NewExtractor(provider, 1, logging.Nop())
	claims := e.Extract(context.Background(), testItem("The SEC charged ExampleCorp with fraud, filings show."))

	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	c := claims[0]
	if c.Type != model.ClaimTypeRegulatoryAction {
		t.Errorf("type = %s, want regulatory_action", c.Type)
	}
	if c.Status != model.StatusUnreviewed {
		t.Errorf("status = %s, want unreviewed", c.Status)
	}
	if c.ItemID != "item-1" || c.SourceID != "src-1" {
		t.Errorf("lineage = (%s, %s), want (item-1, src-1)", c.ItemID, c.SourceID)
	}
	if c.ID == "" {
		t.Error("claim has no ID")
	}
}

func TestExtract_DegradesOnProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream 500")}

	e := NewExtractor(provider, 2, logging.Nop())
	claims := e.Extract(context.Background(), testItem("Attackers drained funds from the bridge contract overnight."))

	if len(claims) == 0 {
		t.Fatal("expected rule-based claims after provider failure")
	}
	if claims[0].Type != model.ClaimTypeExploitOrHack {
		t.Errorf("type = %s, want exploit_or_hack from rule path", claims[0].Type)
	}
}

func TestExtract_DegradesOnUnparseableOutput(t *testing.T) {
	provider := &fakeProvider{response: "Sorry, I cannot help with that."}

	e := NewExtractor(provider, 1, logging.Nop())
	claims := e.Extract(context.Background(), testItem("Attackers drained funds from the bridge contract overnight."))

	if len(claims) == 0 {
		t.Fatal("expected rule-based claims after unparseable output")
	}
}

func TestExtract_NilProviderUsesRules(t *testing.T) {
	e := NewExtractor(nil, 1, logging.Nop())
	claims := e.Extract(context.Background(), testItem("The foundation announced a partnership with a payments processor."))

	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if claims[0].Type != model.ClaimTypePartnership {
		t.Errorf("type = %s, want partnership", claims[0].Type)
	}
}

func TestExtract_EmptyItem(t *testing.T) {
	provider := &fakeProvider{response: `{"claims": []}`}
	e := NewExtractor(provider, 1, logging.Nop())

	if claims := e.Extract(context.Background(), testItem("   ")); claims != nil {
		t.Errorf("expected no claims for blank item, got %d", len(claims))
	}
	if provider.calls != 0 {
		t.Errorf("provider should not be called for blank items, got %d calls", provider.calls)
	}
}

func TestExtract_EmptyModelResultFallsBack(t *testing.T) {
	provider := &fakeProvider{response: `{"claims": []}`}
	e := NewExtractor(provider, 1, logging.Nop())

	claims := e.Extract(context.Background(), testItem("General market commentary without any concrete assertions today."))
	if len(claims) != 1 || claims[0].Type != model.ClaimTypeRumor {
		t.Fatalf("expected one rumor fallback claim, got %v", claims)
	}
}
