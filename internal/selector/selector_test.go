// ABOUTME: Tests for context selection, relevance scoring, and the token budget
// ABOUTME: Verifies budget enforcement, ordering, early termination, and zero-shot fallback
package selector

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/notewell/engine/internal/models"
)

func richCandidate(id string, combined float64) models.ScoredCandidate {
	return models.ScoredCandidate{
		CaseID: id,
		Text: "Doctor: blood pressure elevated, prescribe lisinopril medication with dosage. " +
			"Schedule a follow-up appointment to monitor. Order blood work lab test.",
		SimilarityScore: combined,
		CombinedScore:   combined,
		CreatedAt:       time.Now(),
		Extraction: &models.Extraction{
			FollowUpTasks: []models.FollowUpTask{
				{Description: "Schedule follow-up appointment in two weeks", Priority: "high", DueDate: "in 2 weeks"},
			},
			MedicationInstructions: []models.MedicationInstruction{
				{MedicationName: "lisinopril", Dosage: "10mg", Frequency: "once daily"},
			},
		},
	}
}

const queryText = "Patient blood pressure check, prescribe medication dosage, schedule appointment, monitor, order test"

// permissiveOptions lowers the relevance threshold so selection behavior
// can be exercised without depending on the exact heuristic blend.
func permissiveOptions() Options {
	opts := DefaultOptions()
	opts.MinRelevance = 0.3
	return opts
}

func TestSelect_TokenBudgetNeverExceeded(t *testing.T) {
	sel := New(permissiveOptions(), nil)

	var candidates []models.ScoredCandidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, richCandidate(fmt.Sprintf("case-%d", i), 0.95))
	}

	for _, budget := range []int{10, 50, 100, 500, 2000} {
		ctx := sel.Select(queryText, candidates, models.ContextBudget{MaxTokens: budget, MaxCandidates: 10})
		if ctx.TokenCount > budget {
			t.Errorf("budget %d: token count %d exceeds budget", budget, ctx.TokenCount)
		}
		if got := EstimateTokens(ctx.Blob); got > budget {
			t.Errorf("budget %d: serialized blob is %d tokens", budget, got)
		}
	}
}

func TestSelect_MostRelevantFirst(t *testing.T) {
	sel := New(permissiveOptions(), nil)

	candidates := []models.ScoredCandidate{
		richCandidate("weak", 0.70),
		richCandidate("strong", 0.99),
	}

	ctx := sel.Select(queryText, candidates, models.ContextBudget{MaxTokens: 4000, MaxCandidates: 5})
	if len(ctx.Entries) < 2 {
		t.Fatalf("selected %d entries, want 2", len(ctx.Entries))
	}
	if ctx.Entries[0].CaseID != "strong" {
		t.Errorf("first entry = %q, want strong", ctx.Entries[0].CaseID)
	}
	if ctx.Entries[0].RelevanceScore < ctx.Entries[1].RelevanceScore {
		t.Error("entries should be in descending relevance order")
	}
}

func TestSelect_MaxCandidatesRespected(t *testing.T) {
	opts := permissiveOptions()
	opts.DiminishingFloor = 0.0
	sel := New(opts, nil)

	var candidates []models.ScoredCandidate
	for i := 0; i < 8; i++ {
		candidates = append(candidates, richCandidate(fmt.Sprintf("case-%d", i), 0.95))
	}

	ctx := sel.Select(queryText, candidates, models.ContextBudget{MaxTokens: 100000, MaxCandidates: 3})
	if len(ctx.Entries) != 3 {
		t.Errorf("selected %d entries, want 3", len(ctx.Entries))
	}
}

func TestSelect_BelowThresholdMeansZeroShot(t *testing.T) {
	sel := New(DefaultOptions(), nil)

	candidates := []models.ScoredCandidate{
		{CaseID: "far", Text: "unrelated text", SimilarityScore: 0.1, CombinedScore: 0.1},
	}

	ctx := sel.Select(queryText, candidates, models.ContextBudget{MaxTokens: 2000, MaxCandidates: 5})
	if !ctx.IsEmpty() {
		t.Errorf("context should be empty for irrelevant candidates, got %d entries", len(ctx.Entries))
	}
	if ctx.Blob != "" {
		t.Error("blob should be empty in the zero-shot state")
	}
}

func TestSelect_DiminishingReturnsStopsSelection(t *testing.T) {
	opts := DefaultOptions()
	opts.MinRelevance = 0.3
	sel := New(opts, nil)

	// Three strong candidates, then a run of mediocre ones
	candidates := []models.ScoredCandidate{
		richCandidate("s1", 0.99),
		richCandidate("s2", 0.98),
		richCandidate("s3", 0.97),
		richCandidate("m1", 0.45), // below the diminishing-returns floor
		richCandidate("m2", 0.45),
	}

	ctx := sel.Select(queryText, candidates, models.ContextBudget{MaxTokens: 100000, MaxCandidates: 10})
	if len(ctx.Entries) != 3 {
		t.Errorf("selected %d entries, want 3 (diminishing returns after sufficient context)", len(ctx.Entries))
	}
}

func TestSelect_BlobTagsSourceCases(t *testing.T) {
	sel := New(DefaultOptions(), nil)

	ctx := sel.Select(queryText, []models.ScoredCandidate{richCandidate("case-xyz", 0.99)},
		models.ContextBudget{MaxTokens: 2000, MaxCandidates: 5})

	if !strings.Contains(ctx.Blob, "Case ID: case-xyz") {
		t.Error("blob should tag each entry with its source case id")
	}
	if !strings.Contains(ctx.Blob, "lisinopril") {
		t.Error("blob should inline the prior extraction")
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("12345678"); got != 2 {
		t.Errorf("EstimateTokens = %d, want 2", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
}

func TestClinicalRelevance_SharedVocabulary(t *testing.T) {
	high := clinicalRelevance(
		"prescribe medication dosage and schedule follow-up appointment to monitor blood pressure",
		"prescribe medication dosage, schedule appointment, monitor blood pressure",
	)
	low := clinicalRelevance("prescribe medication", "weather was nice today")

	if high <= low {
		t.Errorf("shared clinical vocabulary should score higher: high=%v low=%v", high, low)
	}
	if high > 1.0 || low < 0.0 {
		t.Errorf("scores out of range: high=%v low=%v", high, low)
	}
}

func TestExtractionQuality_EmptyExtraction(t *testing.T) {
	if got := extractionQuality(nil); got != 0.0 {
		t.Errorf("extractionQuality(nil) = %v, want 0", got)
	}
	if got := extractionQuality(&models.Extraction{}); got != 0.0 {
		t.Errorf("extractionQuality(empty) = %v, want 0", got)
	}
}

func TestCompleteness_Range(t *testing.T) {
	texts := []string{
		"",
		"short",
		strings.Repeat("prescribe medication and schedule test: monitor. ", 20),
	}
	for _, txt := range texts {
		got := completeness(txt)
		if got < 0.0 || got > 1.0 {
			t.Errorf("completeness(%q...) = %v, out of range", txt[:min(20, len(txt))], got)
		}
	}
}

func TestSerializeEntry_TruncationKeepsValidUTF8(t *testing.T) {
	// A multi-byte rune straddles the truncation limit; the cut must land
	// on a rune boundary.
	text := strings.Repeat("a", entryTextLimit-1) + "日本語の診療記録" + strings.Repeat("b", 100)
	c := &models.ScoredCandidate{CaseID: "case-utf8", Text: text}

	out := serializeEntry(c, 1)

	if !utf8.ValidString(out) {
		t.Error("serialized entry contains invalid UTF-8 after truncation")
	}
	if !strings.Contains(out, "...") {
		t.Error("oversized transcript should be marked as truncated")
	}
	if strings.Contains(out, "�") {
		t.Error("serialized entry contains a replacement character")
	}
}
