// ABOUTME: Strategy selection for multi-standard evaluation
// ABOUTME: Picks standard count and aggregation method from best-match relevance
package evaluate

import (
	"fmt"

	"github.com/notewell/engine/internal/models"
)

// Relevance bands for strategy selection. Boundaries are inclusive on the
// lower edge: a best-match score of exactly 0.8 selects the single strategy.
const (
	singleThreshold   = 0.8
	fewThreshold      = 0.6
	multipleThreshold = 0.4
)

// SelectStrategy maps the best-match relevance score to an evaluation plan.
// available is the number of gold standards actually retrievable; when it is
// lower than the strategy's target count the plan proceeds with what exists
// and is marked reduced-confidence.
func SelectStrategy(bestMatchScore float64, available int) models.EvaluationStrategy {
	var s models.EvaluationStrategy
	var minRequired int

	switch {
	case bestMatchScore >= singleThreshold:
		minRequired = 1
		s = models.EvaluationStrategy{
			Kind:         models.StrategySingle,
			NumStandards: 1,
			Aggregation:  models.AggregationDirect,
			Reasoning: fmt.Sprintf("best match %.2f is a strong single standard; its judgment is used directly",
				bestMatchScore),
		}
	case bestMatchScore >= fewThreshold:
		minRequired = 2
		s = models.EvaluationStrategy{
			Kind:         models.StrategyFew,
			NumStandards: 3,
			Aggregation:  models.AggregationWeighted,
			Reasoning: fmt.Sprintf("best match %.2f is good but not definitive; judging against a few standards weighted by similarity",
				bestMatchScore),
		}
	case bestMatchScore >= multipleThreshold:
		minRequired = 4
		s = models.EvaluationStrategy{
			Kind:         models.StrategyMultiple,
			NumStandards: 5,
			Aggregation:  models.AggregationAverage,
			Reasoning: fmt.Sprintf("best match %.2f is moderate; averaging across multiple standards with outlier flagging",
				bestMatchScore),
		}
	default:
		minRequired = 6
		s = models.EvaluationStrategy{
			Kind:         models.StrategyComprehensive,
			NumStandards: 6,
			Aggregation:  models.AggregationRobust,
			Reasoning: fmt.Sprintf("best match %.2f is weak; robust aggregation across a comprehensive standard set",
				bestMatchScore),
		}
	}

	// Every strategy degrades to the available count rather than failing;
	// confidence is reduced only when the band's minimum is not met.
	if available < s.NumStandards {
		s.NumStandards = available
	}
	if available < minRequired {
		s.ReducedConfidence = true
		s.Reasoning += fmt.Sprintf("; only %d standards available, confidence reduced", available)
	}

	return s
}
