package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/LewisWJackson/confirmd-sub001/internal/credibility"
	"github.com/LewisWJackson/confirmd-sub001/internal/evidence"
	"github.com/LewisWJackson/confirmd-sub001/internal/extract"
	"github.com/LewisWJackson/confirmd-sub001/internal/llm"
	"github.com/LewisWJackson/confirmd-sub001/internal/model"
	"github.com/LewisWJackson/confirmd-sub001/internal/resolution"
	"github.com/LewisWJackson/confirmd-sub001/internal/storage"
	"github.com/LewisWJackson/confirmd-sub001/internal/verdict"
	"github.com/LewisWJackson/confirmd-sub001/internal/worker"
)

// Pipeline orchestrates the verification stages for ingested items:
// extract claims, retrieve and grade evidence, synthesize verdicts, and
// drive resolution transitions. Stages communicate only through typed
// values and the store.
type Pipeline struct {
	store       storage.Store
	extractor   *extract.Extractor
	retriever   *evidence.Retriever
	synthesizer *verdict.Synthesizer
	scorer      *credibility.Scorer
	engine      *resolution.Engine
	config      *model.Config
	logger      *zap.Logger
}

// New wires a pipeline from pre-built components. Tests use this to
// inject a static search backend and an in-memory store.
func New(store storage.Store, provider llm.Provider, backend evidence.SearchBackend, cfg *model.Config, logger *zap.Logger) *Pipeline {
	grader := evidence.NewGrader(cfg.Grading)
	return &Pipeline{
		store:       store,
		extractor:   extract.NewExtractor(provider, cfg.LLM.MaxRetries, logger),
		retriever:   evidence.NewRetriever(backend, grader, cfg.Search, logger),
		synthesizer: verdict.NewSynthesizer(provider, cfg.Scoring, logger),
		scorer:      credibility.NewScorer(cfg.Scoring),
		engine:      resolution.NewEngine(store, cfg.Scoring, logger),
		config:      cfg,
		logger:      logger,
	}
}

// NewFromConfig builds the pipeline's components from configuration: the
// storage engine, the completion provider (nil means rule-based only),
// and the search backend.
func NewFromConfig(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		provider, err = llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			// Verification still works without a provider; it falls back
			// to the rule-based paths.
			logger.Warn("completion provider unavailable, using rule-based mode", zap.Error(err))
			provider = nil
		}
	}

	backend, err := openBackend(cfg.Search)
	if err != nil {
		return nil, err
	}
	if backend == nil {
		// No endpoint configured: run with an empty evidence corpus so
		// claims still get (speculative) verdicts.
		logger.Warn("no search endpoint configured, evidence retrieval disabled")
		backend = evidence.NewStaticBackend(nil)
	}

	return New(store, provider, backend, cfg, logger), nil
}

func openStore(cfg model.StorageConfig) (storage.Store, error) {
	switch cfg.Engine {
	case "", "memory":
		return storage.NewMemoryStore(), nil
	case "postgres":
		return storage.NewPostgresStore(cfg.DSN)
	default:
		return nil, errors.Errorf("unknown storage engine: %s", cfg.Engine)
	}
}

func openBackend(cfg model.SearchConfig) (evidence.SearchBackend, error) {
	switch cfg.Backend {
	case "", "http":
		if cfg.Endpoint == "" {
			return nil, nil
		}
		return evidence.NewHTTPBackend(cfg)
	case "static":
		return evidence.NewStaticBackend(nil), nil
	default:
		return nil, errors.Errorf("unknown search backend: %s", cfg.Backend)
	}
}

// Store exposes the underlying store for the CLI's read-only commands.
func (p *Pipeline) Store() storage.Store {
	return p.store
}

// ProcessItem runs one item through the full stage chain. Duplicates are
// detected by content hash and skipped without error.
func (p *Pipeline) ProcessItem(ctx context.Context, item model.Item) (worker.ItemReport, error) {
	report := worker.ItemReport{ItemID: item.ID}

	item = p.fillItem(item)
	report.ItemID = item.ID

	if err := p.ensureSource(ctx, item.SourceID); err != nil {
		return report, errors.Wrap(err, "ensure source")
	}

	saved, err := p.store.SaveItem(ctx, item)
	if errors.Is(err, storage.ErrDuplicate) {
		p.logger.Debug("duplicate item skipped",
			zap.String("item_id", saved.ID),
			zap.String("content_hash", item.ContentHash))
		report.ItemID = saved.ID
		report.Duplicate = true
		return report, nil
	}
	if err != nil {
		return report, errors.Wrap(err, "save item")
	}

	claims := p.extractor.Extract(ctx, saved)
	for _, claim := range claims {
		if err := p.store.SaveClaim(ctx, claim); err != nil {
			return report, errors.Wrapf(err, "save claim %s", claim.ID)
		}
		report.ClaimIDs = append(report.ClaimIDs, claim.ID)

		resolved, err := p.verifyClaim(ctx, claim)
		if err != nil {
			return report, err
		}
		if resolved {
			report.Resolved++
		}
	}

	return report, nil
}

// verifyClaim runs one verification round: retrieve evidence, synthesize
// a verdict, append it to the claim's log, and apply lifecycle
// transitions. Reports whether the round resolved the claim.
func (p *Pipeline) verifyClaim(ctx context.Context, claim model.Claim) (bool, error) {
	stageCtx := ctx
	if p.config.Concurrency.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, p.config.Concurrency.StageTimeout)
		defer cancel()
	}

	items := p.retriever.Retrieve(stageCtx, claim)
	if len(items) > 0 {
		if err := p.store.AppendEvidence(stageCtx, items); err != nil {
			return false, errors.Wrapf(err, "append evidence for claim %s", claim.ID)
		}
	}

	v := p.synthesizer.Synthesize(stageCtx, claim, items)
	if err := p.store.AppendVerdict(stageCtx, v); err != nil {
		return false, errors.Wrapf(err, "append verdict for claim %s", claim.ID)
	}

	updated, err := p.engine.OnVerdict(stageCtx, claim, v, items)
	if err != nil {
		return false, errors.Wrapf(err, "transition claim %s", claim.ID)
	}

	return updated.Status == model.StatusResolved && claim.Status != model.StatusResolved, nil
}

func (p *Pipeline) fillItem(item model.Item) model.Item {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.ItemType == "" {
		item.ItemType = model.ItemTypeArticle
	}
	if item.IngestedAt.IsZero() {
		item.IngestedAt = time.Now().UTC()
	}
	if item.ContentHash == "" {
		item.ContentHash = model.ContentHash(item.RawText)
	}
	return item
}

// ensureSource registers a minimal source record on first sight so the
// outcome history always has a home.
func (p *Pipeline) ensureSource(ctx context.Context, sourceID string) error {
	if sourceID == "" {
		return errors.New("item has no source")
	}
	_, err := p.store.GetSource(ctx, sourceID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return p.store.SaveSource(ctx, model.Source{
		ID:     sourceID,
		Type:   model.SourceTypeOutlet,
		Handle: sourceID,
	})
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Items      int
	Duplicates int
	Failed     int
	Claims     int
	Resolved   int
}

// RunBatch processes items concurrently over a worker pool. Per-item
// failures are counted, not fatal.
func (p *Pipeline) RunBatch(ctx context.Context, items []model.Item) BatchSummary {
	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)
	results := processor.ProcessItems(ctx, items)

	var summary BatchSummary
	summary.Items = len(results)
	for _, r := range results {
		if r.Error != nil {
			summary.Failed++
			p.logger.Error("item failed",
				zap.String("item_id", r.Item.ID),
				zap.Error(r.Error))
			continue
		}
		if r.Report.Duplicate {
			summary.Duplicates++
			continue
		}
		summary.Claims += len(r.Report.ClaimIDs)
		summary.Resolved += r.Report.Resolved
	}
	return summary
}

// RecheckSummary aggregates a re-check pass.
type RecheckSummary struct {
	Checked  int
	Resolved int
	Failed   int
}

// RunRecheck re-verifies claims awaiting a scheduled re-check. Claims
// past their resolve-by deadline settle from the fresh verdict.
func (p *Pipeline) RunRecheck(ctx context.Context) (RecheckSummary, error) {
	var summary RecheckSummary

	due, err := p.engine.Due(ctx)
	if err != nil {
		return summary, errors.Wrap(err, "list due claims")
	}

	for _, claim := range due {
		summary.Checked++
		resolved, err := p.verifyClaim(ctx, claim)
		if err != nil {
			summary.Failed++
			p.logger.Error("re-check failed",
				zap.String("claim_id", claim.ID),
				zap.Error(err))
			continue
		}
		if resolved {
			summary.Resolved++
		}
	}

	return summary, nil
}

// RunRescore recomputes credibility snapshots for every known source
// from its resolved-claim history.
func (p *Pipeline) RunRescore(ctx context.Context) ([]model.SourceScore, error) {
	sources, err := p.store.ListSources(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list sources")
	}

	var scores []model.SourceScore
	for _, src := range sources {
		history, err := p.store.OutcomesBySource(ctx, src.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "outcomes for source %s", src.ID)
		}

		score := p.scorer.Score(src.ID, history)
		if err := p.store.SaveSourceScore(ctx, score); err != nil {
			return nil, errors.Wrapf(err, "save score for source %s", src.ID)
		}
		scores = append(scores, score)
	}

	return scores, nil
}

// Resolve records a manual ground-truth resolution for a claim.
func (p *Pipeline) Resolve(ctx context.Context, claimID string, outcome model.ResolutionOutcome, evidenceURL, notes string) error {
	return p.engine.Resolve(ctx, claimID, outcome, evidenceURL, notes)
}

// Correct opens a correction claim superseding a resolved one.
func (p *Pipeline) Correct(ctx context.Context, claimID, correctedText string) (model.Claim, error) {
	return p.engine.Correct(ctx, claimID, correctedText)
}
