// ABOUTME: Tests for cosine similarity search over scoped corpora
// ABOUTME: Verifies sorting, thresholds, tiebreaks, and scope isolation
package index

import (
	"math"
	"testing"
	"time"

	"github.com/notewell/engine/internal/models"
)

func caseWith(id string, vec []float64, createdAt time.Time) models.CaseRecord {
	return models.CaseRecord{
		ID:        id,
		Text:      "transcript " + id,
		Embedding: vec,
		CreatedAt: createdAt,
	}
}

func TestSearch_SortedDescendingBySimilarity(t *testing.T) {
	ix := New()
	now := time.Now()
	ix.Load("user-1", []models.CaseRecord{
		caseWith("a", []float64{1, 0, 0}, now),
		caseWith("b", []float64{0.9, 0.1, 0}, now),
		caseWith("c", []float64{0, 1, 0}, now),
	})

	results, err := ix.Search([]float64{1, 0, 0}, "user-1", 10, 0.0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	for i := 1; i < len(results); i++ {
		if results[i].SimilarityScore > results[i-1].SimilarityScore {
			t.Errorf("results not sorted: %v before %v", results[i-1].SimilarityScore, results[i].SimilarityScore)
		}
	}

	if results[0].CaseID != "a" {
		t.Errorf("top result = %q, want a", results[0].CaseID)
	}
}

func TestSearch_MinSimilarityFilter(t *testing.T) {
	ix := New()
	now := time.Now()
	ix.Load("user-1", []models.CaseRecord{
		caseWith("close", []float64{1, 0.1, 0}, now),
		caseWith("orthogonal", []float64{0, 0, 1}, now),
	})

	results, err := ix.Search([]float64{1, 0, 0}, "user-1", 10, 0.5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1 after min-similarity filter", len(results))
	}
	if results[0].CaseID != "close" {
		t.Errorf("result = %q, want close", results[0].CaseID)
	}
}

func TestSearch_TieBrokenByMostRecent(t *testing.T) {
	ix := New()
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	ix.Load("user-1", []models.CaseRecord{
		caseWith("older", []float64{1, 0, 0}, older),
		caseWith("newer", []float64{1, 0, 0}, newer),
	})

	results, err := ix.Search([]float64{1, 0, 0}, "user-1", 2, 0.0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if results[0].CaseID != "newer" {
		t.Errorf("tie should favor most recent, got %q first", results[0].CaseID)
	}
}

func TestSearch_ScopeIsolation(t *testing.T) {
	ix := New()
	now := time.Now()
	ix.Load("user-1", []models.CaseRecord{caseWith("mine", []float64{1, 0, 0}, now)})
	ix.Load("user-2", []models.CaseRecord{caseWith("theirs", []float64{1, 0, 0}, now)})

	results, err := ix.Search([]float64{1, 0, 0}, "user-1", 10, 0.0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	for _, r := range results {
		if r.CaseID == "theirs" {
			t.Fatal("search leaked a case from another scope")
		}
	}
	if len(results) != 1 || results[0].CaseID != "mine" {
		t.Errorf("results = %v, want only the in-scope case", results)
	}
}

func TestSearch_TopKLimit(t *testing.T) {
	ix := New()
	now := time.Now()
	cases := make([]models.CaseRecord, 10)
	for i := range cases {
		cases[i] = caseWith(string(rune('a'+i)), []float64{1, float64(i) * 0.01, 0}, now)
	}
	ix.Load("user-1", cases)

	results, err := ix.Search([]float64{1, 0, 0}, "user-1", 3, 0.0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("results = %d, want 3", len(results))
	}
}

func TestSearch_EmptyScope(t *testing.T) {
	ix := New()

	results, err := ix.Search([]float64{1, 0, 0}, "nobody", 5, 0.0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0 for unknown scope", len(results))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"mismatched length", []float64{1, 0}, []float64{1, 0, 0}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
