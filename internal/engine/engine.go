// ABOUTME: Request orchestrator: retrieval, context assembly, extraction, evaluation
// ABOUTME: Degrades gracefully at every stage and never auto-approves an extraction
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notewell/engine/internal/config"
	"github.com/notewell/engine/internal/evaluate"
	"github.com/notewell/engine/internal/index"
	"github.com/notewell/engine/internal/llm"
	"github.com/notewell/engine/internal/models"
	"github.com/notewell/engine/internal/rerank"
	"github.com/notewell/engine/internal/selector"
	"github.com/notewell/engine/internal/storage"
	"github.com/notewell/engine/internal/transcript"
)

// Embedder produces one embedding per text, typically through the cache
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Extractor turns a transcript plus assembled context into structured actions
type Extractor interface {
	ExtractActions(ctx context.Context, req *llm.ExtractRequest) (*models.Extraction, error)
}

// CaseStore persists cases saved through human review
type CaseStore interface {
	SaveCase(record models.CaseRecord) (models.CaseRecord, error)
	ListCases(scope string) ([]models.CaseRecord, error)
}

// Request is one transcript to process
type Request struct {
	Transcript       string
	Notes            string
	CustomCategories []llm.CustomCategory
	Policies         []string
}

// Deps wires the engine's collaborators
type Deps struct {
	Embedder   Embedder
	Extractor  Extractor
	Reranker   *rerank.Reranker
	Selector   *selector.Selector
	Aggregator *evaluate.Aggregator
	Confidence *evaluate.ConfidenceEngine
	Index      *index.Index
	Store      CaseStore
}

// Engine runs the full extraction pipeline for one transcript at a time.
// Concurrent requests share only the embedding cache and the index, both
// internally synchronized.
type Engine struct {
	deps   Deps
	cfg    *config.Config
	logger *zap.Logger
}

// New builds an engine. The store may be nil for ephemeral use; saving a
// reviewed extraction then only updates the in-memory index.
func New(deps Deps, cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if deps.Embedder == nil {
		return nil, fmt.Errorf("engine requires an embedder")
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("engine requires an extractor")
	}
	if deps.Index == nil {
		return nil, fmt.Errorf("engine requires an index")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Reranker == nil {
		deps.Reranker = rerank.New(nil, rerank.Weights{
			Similarity: cfg.RerankerBlendSimilarity,
			Reranker:   cfg.RerankerBlendReranker,
		}, logger)
	}
	if deps.Selector == nil {
		opts := selector.DefaultOptions()
		opts.Weights = selector.Weights{
			Similarity:   cfg.WeightSimilarity,
			Domain:       cfg.WeightDomain,
			Quality:      cfg.WeightQuality,
			Completeness: cfg.WeightCompleteness,
		}
		deps.Selector = selector.New(opts, logger)
	}
	if deps.Confidence == nil {
		deps.Confidence = evaluate.NewConfidenceEngine(logger)
	}
	return &Engine{deps: deps, cfg: cfg, logger: logger}, nil
}

// WarmStart loads both corpora from the store into the index
func (e *Engine) WarmStart() error {
	if e.deps.Store == nil {
		return nil
	}
	for _, scope := range []string{storage.ScopeCases, storage.ScopeGold} {
		cases, err := e.deps.Store.ListCases(scope)
		if err != nil {
			return fmt.Errorf("failed to load %s corpus: %w", scope, err)
		}
		e.deps.Index.Load(scope, cases)
		e.logger.Info("corpus loaded", zap.String("scope", scope), zap.Int("cases", len(cases)))
	}
	return nil
}

// Process runs one transcript through retrieval, extraction, and
// evaluation. Embedding and reranker faults degrade the context; the only
// hard failures are a fully unavailable extractor and, when gold standards
// exist, a fully failed evaluation. The returned result always has
// ReviewRequired set: finalization happens only through ReviewAndSave.
func (e *Engine) Process(ctx context.Context, req Request) (*models.ExtractionResult, error) {
	if req.Transcript == "" {
		return nil, fmt.Errorf("transcript is required")
	}
	if e.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RequestTimeout)
		defer cancel()
	}
	start := time.Now()

	candidates, goldHits, embedded := e.retrieve(ctx, req.Transcript)

	selected := &models.SelectedContext{}
	if len(candidates) > 0 {
		candidates = e.deps.Reranker.Rerank(ctx, req.Transcript, candidates)
		selected = e.deps.Selector.Select(req.Transcript, candidates, models.ContextBudget{
			MaxTokens:     e.cfg.ContextMaxTokens,
			MaxCandidates: e.cfg.ContextMaxCandidates,
		})
	}

	extraction, err := e.deps.Extractor.ExtractActions(ctx, &llm.ExtractRequest{
		Transcript:       req.Transcript,
		Notes:            req.Notes,
		Context:          selected.Blob,
		CustomCategories: req.CustomCategories,
		Policies:         req.Policies,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}

	quality := contextQuality(candidates, selected)

	var (
		aggregated *models.AggregatedResult
		strategy   *models.EvaluationStrategy
	)
	if embedded && len(goldHits) > 0 && e.deps.Aggregator != nil {
		standards := toGoldStandards(goldHits)
		plan := evaluate.SelectStrategy(standards[0].SimilarityScore, len(standards))
		strategy = &plan
		if len(standards) > plan.NumStandards {
			standards = standards[:plan.NumStandards]
		}

		aggregated, err = e.deps.Aggregator.Evaluate(ctx, extraction, standards, req.Transcript, plan.Aggregation)
		if err != nil {
			if errors.Is(err, evaluate.ErrEvaluationUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("evaluation failed: %w", err)
		}
		quality.JudgeFailures = len(standards) - aggregated.NumJudgments
	} else {
		e.logger.Info("no gold standards retrievable, skipping evaluation",
			zap.Bool("embedded", embedded))
	}

	details := e.deps.Confidence.Assess(extraction, aggregated)

	e.logger.Info("transcript processed",
		zap.Int("context_entries", len(selected.Entries)),
		zap.Int("context_tokens", selected.TokenCount),
		zap.Int("items", extraction.TotalItems()),
		zap.Int("flagged", details.FlaggedSections.Total()),
		zap.Duration("elapsed", time.Since(start)))

	return &models.ExtractionResult{
		Extraction:        extraction,
		ConfidenceDetails: details,
		ContextQuality:    quality,
		Evaluation:        aggregated,
		Strategy:          strategy,
		ReviewRequired:    true,
	}, nil
}

// embed produces one vector for a transcript of any length. Text within
// the model's budget goes through the embedder directly; longer text is
// segmented on paragraph and sentence boundaries, embedded per segment,
// and mean-pooled.
func (e *Engine) embed(ctx context.Context, text string) ([]float64, error) {
	segments := transcript.Segments(text, e.cfg.EmbedMaxTokens)
	if len(segments) <= 1 {
		return e.deps.Embedder.Embed(ctx, text)
	}

	var pooled []float64
	for _, seg := range segments {
		vector, err := e.deps.Embedder.Embed(ctx, seg)
		if err != nil {
			return nil, err
		}
		if pooled == nil {
			pooled = make([]float64, len(vector))
		}
		if len(vector) != len(pooled) {
			return nil, fmt.Errorf("segment embedding dimension mismatch: %d vs %d", len(vector), len(pooled))
		}
		for i, v := range vector {
			pooled[i] += v
		}
	}
	n := float64(len(segments))
	for i := range pooled {
		pooled[i] /= n
	}
	return pooled, nil
}

// retrieve embeds the transcript and searches both corpora concurrently.
// An embedding failure degrades to the zero-shot path: both result sets
// come back empty and embedded is false.
func (e *Engine) retrieve(ctx context.Context, transcript string) (candidates, goldHits []models.ScoredCandidate, embedded bool) {
	vector, err := e.embed(ctx, transcript)
	if err != nil {
		e.logger.Warn("embedding unavailable, degrading to zero-shot context", zap.Error(err))
		return nil, nil, false
	}

	var g errgroup.Group
	g.Go(func() error {
		found, err := e.deps.Index.Search(vector, storage.ScopeCases, e.cfg.SearchLimit, e.cfg.MinSimilarity)
		if err != nil {
			return fmt.Errorf("case search failed: %w", err)
		}
		candidates = found
		return nil
	})
	g.Go(func() error {
		found, err := e.deps.Index.Search(vector, storage.ScopeGold, e.cfg.SearchLimit, 0)
		if err != nil {
			return fmt.Errorf("gold search failed: %w", err)
		}
		goldHits = found
		return nil
	})
	if err := g.Wait(); err != nil {
		e.logger.Warn("corpus search failed", zap.Error(err))
	}
	return candidates, goldHits, true
}

// ReviewAndSave persists a human-approved extraction as a new prior case
// and makes it retrievable for future requests. This is the only path by
// which an extraction becomes final.
func (e *Engine) ReviewAndSave(ctx context.Context, transcript string, approved *models.Extraction) (models.CaseRecord, error) {
	if transcript == "" {
		return models.CaseRecord{}, fmt.Errorf("transcript is required")
	}
	if approved == nil {
		return models.CaseRecord{}, fmt.Errorf("approved extraction is required")
	}

	record := models.CaseRecord{
		Scope:      storage.ScopeCases,
		Text:       transcript,
		Extraction: approved,
		CreatedAt:  time.Now().UTC(),
	}

	if vector, err := e.embed(ctx, transcript); err != nil {
		// Saved without a vector the case is durable but not retrievable
		// until re-embedded; the save itself must not fail.
		e.logger.Warn("saving case without embedding", zap.Error(err))
	} else {
		record.Embedding = vector
	}

	if e.deps.Store != nil {
		saved, err := e.deps.Store.SaveCase(record)
		if err != nil {
			return models.CaseRecord{}, fmt.Errorf("failed to save reviewed case: %w", err)
		}
		record = saved
	} else {
		record.ID = uuid.New().String()
	}

	if len(record.Embedding) > 0 {
		e.deps.Index.Add(storage.ScopeCases, record)
	}

	e.logger.Info("reviewed extraction saved",
		zap.String("case_id", record.ID),
		zap.Int("items", approved.TotalItems()))
	return record, nil
}

// AddGoldStandard stores a verified reference extraction in the gold
// corpus used for evaluation. Unlike prior cases, a gold standard must be
// embeddable: an unreachable standard would silently weaken evaluation.
func (e *Engine) AddGoldStandard(ctx context.Context, transcript string, reference *models.Extraction) (models.CaseRecord, error) {
	if transcript == "" {
		return models.CaseRecord{}, fmt.Errorf("transcript is required")
	}
	if reference == nil || reference.IsEmpty() {
		return models.CaseRecord{}, fmt.Errorf("reference extraction is required")
	}

	vector, err := e.embed(ctx, transcript)
	if err != nil {
		return models.CaseRecord{}, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	record := models.CaseRecord{
		Scope:      storage.ScopeGold,
		Text:       transcript,
		Embedding:  vector,
		Extraction: reference,
		CreatedAt:  time.Now().UTC(),
	}
	if e.deps.Store != nil {
		saved, err := e.deps.Store.SaveCase(record)
		if err != nil {
			return models.CaseRecord{}, fmt.Errorf("failed to save gold standard: %w", err)
		}
		record = saved
	} else {
		record.ID = uuid.New().String()
	}
	e.deps.Index.Add(storage.ScopeGold, record)

	e.logger.Info("gold standard added", zap.String("case_id", record.ID))
	return record, nil
}

// SearchCases runs a similarity search over the prior-case corpus
func (e *Engine) SearchCases(ctx context.Context, query string, k int) ([]models.ScoredCandidate, error) {
	if k <= 0 {
		k = e.cfg.SearchLimit
	}
	vector, err := e.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	return e.deps.Index.Search(vector, storage.ScopeCases, k, e.cfg.MinSimilarity)
}

// Stats reports corpus sizes
type Stats struct {
	Cases         int `json:"cases"`
	GoldStandards int `json:"gold_standards"`
}

func (e *Engine) Stats() Stats {
	return Stats{
		Cases:         e.deps.Index.Size(storage.ScopeCases),
		GoldStandards: e.deps.Index.Size(storage.ScopeGold),
	}
}

// toGoldStandards converts gold-corpus search hits, which carry the
// reference extraction in their Extraction field, into judge inputs
func toGoldStandards(hits []models.ScoredCandidate) []*models.GoldStandardCase {
	out := make([]*models.GoldStandardCase, len(hits))
	for i, h := range hits {
		out[i] = &models.GoldStandardCase{
			CaseID:          h.CaseID,
			Transcript:      h.Text,
			Reference:       h.Extraction,
			SimilarityScore: h.SimilarityScore,
		}
	}
	return out
}

func contextQuality(candidates []models.ScoredCandidate, selected *models.SelectedContext) *models.ContextQuality {
	q := &models.ContextQuality{NumCandidates: len(selected.Entries)}
	if len(candidates) == 0 {
		return q
	}

	reranked := 0
	for _, c := range candidates {
		q.AvgSimilarity += c.SimilarityScore
		q.AvgCombinedScore += c.CombinedScore
		if c.RerankerScore != nil {
			q.AvgRerankerScore += *c.RerankerScore
			reranked++
		}
	}
	n := float64(len(candidates))
	q.AvgSimilarity /= n
	q.AvgCombinedScore /= n
	if reranked > 0 {
		q.AvgRerankerScore /= float64(reranked)
	}
	return q
}
