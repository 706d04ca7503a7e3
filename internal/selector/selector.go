// ABOUTME: Context selection combining similarity, reranker, and clinical heuristics
// ABOUTME: Greedy token-bounded assembly with diminishing-returns early termination
package selector

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/notewell/engine/internal/models"
	"go.uber.org/zap"
)

// Weights are the relevance blend factors; they must sum to 1.0
type Weights struct {
	Similarity   float64
	Domain       float64
	Quality      float64
	Completeness float64
}

// DefaultWeights returns the default relevance blend
func DefaultWeights() Weights {
	return Weights{Similarity: 0.4, Domain: 0.3, Quality: 0.2, Completeness: 0.1}
}

// Options tunes selection thresholds
type Options struct {
	Weights Weights
	// MinRelevance is the floor below which candidates are never selected
	MinRelevance float64
	// DiminishingFloor applies once enough high-quality context exists:
	// further candidates below it stop the greedy loop
	DiminishingFloor float64
	// SufficientCount is how many selections it takes before the
	// diminishing-returns floor kicks in
	SufficientCount int
}

// DefaultOptions returns the default selection thresholds
func DefaultOptions() Options {
	return Options{
		Weights:          DefaultWeights(),
		MinRelevance:     0.6,
		DiminishingFloor: 0.8,
		SufficientCount:  3,
	}
}

// Selector assembles extraction context from scored candidates
type Selector struct {
	opts   Options
	logger *zap.Logger
}

// New creates a selector
func New(opts Options, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{opts: opts, logger: logger}
}

// Score fills in RelevanceScore for each candidate using the weighted
// blend of combined score, clinical relevance, extraction quality, and
// completeness.
func (s *Selector) Score(queryText string, candidates []models.ScoredCandidate) []models.ScoredCandidate {
	w := s.opts.Weights
	for i := range candidates {
		c := &candidates[i]
		c.RelevanceScore = c.CombinedScore*w.Similarity +
			clinicalRelevance(queryText, c.Text)*w.Domain +
			extractionQuality(c.Extraction)*w.Quality +
			completeness(c.Text)*w.Completeness
	}
	return candidates
}

// Select scores, sorts, and greedily assembles a context under the budget.
// An empty result is the valid zero-shot state, never an error. The
// serialized blob never exceeds budget.MaxTokens.
func (s *Selector) Select(queryText string, candidates []models.ScoredCandidate, budget models.ContextBudget) *models.SelectedContext {
	scored := s.Score(queryText, candidates)
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	ctx := &models.SelectedContext{}
	var blob strings.Builder

	for _, cand := range scored {
		if cand.RelevanceScore < s.opts.MinRelevance {
			break
		}
		if budget.MaxCandidates > 0 && len(ctx.Entries) >= budget.MaxCandidates {
			break
		}
		if len(ctx.Entries) >= s.opts.SufficientCount && cand.RelevanceScore < s.opts.DiminishingFloor {
			break
		}

		serialized := serializeEntry(&cand, len(ctx.Entries)+1)
		tokens := EstimateTokens(serialized)
		if budget.MaxTokens > 0 && ctx.TokenCount+tokens > budget.MaxTokens {
			break
		}

		blob.WriteString(serialized)
		ctx.TokenCount += tokens
		ctx.Entries = append(ctx.Entries, models.ContextEntry{
			CaseID:         cand.CaseID,
			Text:           cand.Text,
			RelevanceScore: cand.RelevanceScore,
			Tokens:         tokens,
		})
	}

	ctx.Blob = blob.String()

	s.logger.Debug("context assembled",
		zap.Int("candidates_in", len(candidates)),
		zap.Int("selected", len(ctx.Entries)),
		zap.Int("tokens", ctx.TokenCount))

	return ctx
}

// EstimateTokens approximates token count as one token per four characters
func EstimateTokens(text string) int {
	return len(text) / 4
}

const entryTextLimit = 500

// serializeEntry renders one selected case with its source id and prior
// extraction, most relevant entries appearing first in the final blob.
func serializeEntry(c *models.ScoredCandidate, position int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PRIOR CASE %d (Case ID: %s):\nTRANSCRIPT:\n", position, c.CaseID)

	text := c.Text
	if len(text) > entryTextLimit {
		cut := entryTextLimit
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	sb.WriteString(text)
	sb.WriteString("\n")

	if c.Extraction != nil && !c.Extraction.IsEmpty() {
		sb.WriteString("EXTRACTIONS:\n")
		writeExtraction(&sb, c.Extraction)
	}
	sb.WriteString("\n")
	return sb.String()
}

const itemsPerCategory = 2

func writeExtraction(sb *strings.Builder, e *models.Extraction) {
	if len(e.FollowUpTasks) > 0 {
		sb.WriteString("Follow-up Tasks:\n")
		for i, task := range e.FollowUpTasks {
			if i >= itemsPerCategory {
				break
			}
			fmt.Fprintf(sb, "  - %s (Priority: %s)\n", task.Description, task.Priority)
		}
	}
	if len(e.MedicationInstructions) > 0 {
		sb.WriteString("Medication Instructions:\n")
		for i, med := range e.MedicationInstructions {
			if i >= itemsPerCategory {
				break
			}
			fmt.Fprintf(sb, "  - %s %s %s\n", med.MedicationName, med.Dosage, med.Frequency)
		}
	}
	if len(e.ClientReminders) > 0 {
		sb.WriteString("Client Reminders:\n")
		for i, rem := range e.ClientReminders {
			if i >= itemsPerCategory {
				break
			}
			fmt.Fprintf(sb, "  - %s (%s)\n", rem.Description, rem.ReminderType)
		}
	}
	if len(e.ClinicianTodos) > 0 {
		sb.WriteString("Clinician To-Dos:\n")
		for i, todo := range e.ClinicianTodos {
			if i >= itemsPerCategory {
				break
			}
			fmt.Fprintf(sb, "  - %s (%s)\n", todo.Description, todo.TaskType)
		}
	}
}
