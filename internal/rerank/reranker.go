// ABOUTME: Reranking of retrieval shortlists with pairwise relevance scores
// ABOUTME: Degrades to similarity-only combined scores when the scorer is unavailable
package rerank

import (
	"context"
	"sort"

	"github.com/notewell/engine/internal/models"
	"go.uber.org/zap"
)

// Scorer produces one pairwise relevance score in [0,1] per candidate text.
// Implemented by the LLM client; nil or failing scorers trigger the
// documented similarity-only fallback, never a fatal error.
type Scorer interface {
	ScoreRelevance(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Weights controls how similarity and reranker scores blend
type Weights struct {
	Similarity float64
	Reranker   float64
}

// DefaultWeights favor the reranker over coarse embedding similarity
func DefaultWeights() Weights {
	return Weights{Similarity: 0.3, Reranker: 0.7}
}

// Reranker refines a candidate shortlist. Used only on shortlists from the
// vector index, never on a full corpus.
type Reranker struct {
	scorer  Scorer
	weights Weights
	logger  *zap.Logger
}

// New creates a reranker. A nil scorer disables reranking entirely.
func New(scorer Scorer, weights Weights, logger *zap.Logger) *Reranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reranker{scorer: scorer, weights: weights, logger: logger}
}

// Rerank scores each candidate against the query and re-sorts by the
// blended combined score. On scorer failure every candidate keeps
// combined == similarity and the original similarity ordering.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []models.ScoredCandidate) []models.ScoredCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	if r.scorer == nil {
		return r.fallback(candidates)
	}

	texts := make([]string, len(candidates))
	for i := range candidates {
		texts[i] = candidates[i].Text
	}

	scores, err := r.scorer.ScoreRelevance(ctx, query, texts)
	if err != nil {
		r.logger.Warn("reranker unavailable, degrading to similarity-only scoring", zap.Error(err))
		return r.fallback(candidates)
	}
	if len(scores) != len(candidates) {
		r.logger.Warn("reranker returned wrong score count, degrading to similarity-only scoring",
			zap.Int("got", len(scores)),
			zap.Int("want", len(candidates)))
		return r.fallback(candidates)
	}

	for i := range candidates {
		score := scores[i]
		candidates[i].RerankerScore = &score
		candidates[i].CombinedScore = candidates[i].SimilarityScore*r.weights.Similarity + score*r.weights.Reranker
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})

	return candidates
}

// fallback leaves similarity as the combined score for every candidate
func (r *Reranker) fallback(candidates []models.ScoredCandidate) []models.ScoredCandidate {
	for i := range candidates {
		candidates[i].RerankerScore = nil
		candidates[i].CombinedScore = candidates[i].SimilarityScore
	}
	return candidates
}
