// ABOUTME: Per-item confidence assessment and human-review flagging
// ABOUTME: Judge-stated confidence is primary; numeric cross-checks only lower it
package evaluate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/notewell/engine/internal/models"
)

// F1 floors for the numeric cross-check. A category F1 below a floor caps
// item confidence in that category at the corresponding level.
const (
	mediumF1Floor = 0.7
	lowF1Floor    = 0.4
)

// ConfidenceEngine derives caller-facing confidence from the aggregated
// evaluation. It never upgrades the judge's stated confidence.
type ConfidenceEngine struct {
	logger *zap.Logger
}

func NewConfidenceEngine(logger *zap.Logger) *ConfidenceEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfidenceEngine{logger: logger}
}

// Assess produces one ItemConfidence per extracted item. The judge's own
// per-item confidence is primary; when the aggregated category F1 disagrees
// sharply, the lower of the two wins. Items at medium or low confidence,
// and high-confidence items carrying explicit issues, are flagged for
// human review.
func (e *ConfidenceEngine) Assess(extraction *models.Extraction, agg *models.AggregatedResult) *models.ConfidenceDetails {
	details := &models.ConfidenceDetails{
		ItemConfidence:  make(map[string][]models.ItemConfidence),
		FlaggedSections: make(models.FlaggedSections),
	}

	if extraction == nil || extraction.IsEmpty() {
		details.OverallConfidence = models.ConfidenceLow
		details.ConfidenceSummary = "no items extracted; nothing to assess"
		return details
	}

	overall := models.ConfidenceHigh
	if agg == nil {
		// No evaluation was possible. Every item is assessed low and
		// flagged so the reviewer sees the extraction was never judged.
		overall = models.ConfidenceLow
	}

	for _, category := range models.Categories() {
		count := extraction.ItemCount(category)
		if count == 0 {
			continue
		}

		items := make([]models.ItemConfidence, count)
		for i := 0; i < count; i++ {
			items[i] = e.assessItem(category, i, agg)
			if flagged(items[i]) {
				details.FlaggedSections[category] = append(details.FlaggedSections[category], i)
			}
			overall = models.MinConfidence(overall, items[i].Confidence)
		}
		details.ItemConfidence[category] = items
	}

	details.OverallConfidence = overall
	details.ConfidenceSummary = summarize(extraction.TotalItems(), details.FlaggedSections.Total(), overall)
	return details
}

// assessItem resolves one item's confidence from the judge assessment and
// the category-level numeric cross-check
func (e *ConfidenceEngine) assessItem(category string, index int, agg *models.AggregatedResult) models.ItemConfidence {
	if agg == nil {
		return models.ItemConfidence{
			Confidence: models.ConfidenceLow,
			Reasoning:  "extraction was not evaluated against any gold standard",
		}
	}

	item := judgeItemAssessment(category, index, agg)

	// Cross-check: a weak aggregated category F1 caps the confidence.
	// The cap only ever lowers, never raises.
	if cs, ok := agg.CategoryScores[category]; ok {
		ceiling := f1Cap(cs.F1)
		if ceiling.Rank() < item.Confidence.Rank() {
			item.Confidence = models.MinConfidence(item.Confidence, ceiling)
			item.Issues = append(item.Issues,
				fmt.Sprintf("category f1 %.2f below confidence floor", cs.F1))
		}
	}

	return item
}

// judgeItemAssessment pulls the judge's per-item verdict, scanning the
// aggregated judgments most conservative first. Items the judge did not
// assess individually inherit the aggregate confidence level.
func judgeItemAssessment(category string, index int, agg *models.AggregatedResult) models.ItemConfidence {
	best := models.ItemConfidence{Confidence: agg.ConfidenceLevel}
	found := false
	for _, j := range agg.Judgments {
		assessments, ok := j.ItemAssessments[category]
		if !ok || index >= len(assessments) {
			continue
		}
		a := assessments[index]
		if !found || a.Confidence.Rank() < best.Confidence.Rank() {
			best = a
			found = true
		}
	}
	return best
}

func f1Cap(f1 float64) models.ConfidenceLevel {
	switch {
	case f1 < lowF1Floor:
		return models.ConfidenceLow
	case f1 < mediumF1Floor:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceHigh
	}
}

func flagged(item models.ItemConfidence) bool {
	if item.Confidence != models.ConfidenceHigh {
		return true
	}
	return len(item.Issues) > 0
}

func summarize(total, flaggedCount int, overall models.ConfidenceLevel) string {
	if flaggedCount == 0 {
		return fmt.Sprintf("%d items extracted at %s confidence; all require human review before finalization", total, overall)
	}
	return fmt.Sprintf("%d items extracted at %s confidence; %d flagged for close review; all require human review before finalization", total, overall, flaggedCount)
}
