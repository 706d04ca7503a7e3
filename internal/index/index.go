// ABOUTME: In-memory vector index with cosine similarity search, partitioned by scope
// ABOUTME: Serves both the prior-case corpus and the gold-standard corpus
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/notewell/engine/internal/models"
)

// Index holds embedded cases partitioned by scope. Scopes are tenant
// boundaries: a search never returns cases from another scope.
type Index struct {
	mu     sync.RWMutex
	scopes map[string][]models.CaseRecord
}

// New creates an empty index
func New() *Index {
	return &Index{scopes: make(map[string][]models.CaseRecord)}
}

// Load replaces the cases for a scope
func (ix *Index) Load(scope string, cases []models.CaseRecord) {
	ix.mu.Lock()
	ix.scopes[scope] = append([]models.CaseRecord(nil), cases...)
	ix.mu.Unlock()
}

// Add appends one case to a scope
func (ix *Index) Add(scope string, record models.CaseRecord) {
	ix.mu.Lock()
	ix.scopes[scope] = append(ix.scopes[scope], record)
	ix.mu.Unlock()
}

// Size returns the number of cases in a scope
func (ix *Index) Size(scope string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.scopes[scope])
}

// Search returns the top-k cases in scope whose cosine similarity to the
// query vector is at least minSimilarity, sorted by similarity descending
// with ties broken by most recent creation time.
func (ix *Index) Search(queryVector []float64, scope string, k int, minSimilarity float64) ([]models.ScoredCandidate, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	ix.mu.RLock()
	cases := ix.scopes[scope]
	results := make([]models.ScoredCandidate, 0, len(cases))
	for i := range cases {
		rec := &cases[i]
		if len(rec.Embedding) == 0 {
			continue
		}
		similarity := CosineSimilarity(queryVector, rec.Embedding)
		if similarity < minSimilarity {
			continue
		}
		results = append(results, models.ScoredCandidate{
			CaseID:          rec.ID,
			Text:            rec.Text,
			Extraction:      rec.Extraction,
			CreatedAt:       rec.CreatedAt,
			SimilarityScore: similarity,
			CombinedScore:   similarity,
		})
	}
	ix.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
