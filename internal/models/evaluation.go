// ABOUTME: Evaluation strategy, judgment, and aggregation models
// ABOUTME: Strategy is a closed variant chosen once per request and never mutated
package models

// StrategyKind identifies one of the four evaluation strategies
type StrategyKind string

const (
	StrategySingle        StrategyKind = "single"
	StrategyFew           StrategyKind = "few"
	StrategyMultiple      StrategyKind = "multiple"
	StrategyComprehensive StrategyKind = "comprehensive"
)

// AggregationMethod identifies how multiple judgments are combined
type AggregationMethod string

const (
	AggregationDirect   AggregationMethod = "direct"
	AggregationWeighted AggregationMethod = "weighted"
	AggregationAverage  AggregationMethod = "average"
	AggregationRobust   AggregationMethod = "robust"
)

// EvaluationStrategy is the evaluation plan selected from the best-match
// relevance score. Immutable for the lifetime of one evaluation request.
type EvaluationStrategy struct {
	Kind              StrategyKind      `json:"strategy"`
	NumStandards      int               `json:"num_standards"`
	Aggregation       AggregationMethod `json:"aggregation_method"`
	ReducedConfidence bool              `json:"reduced_confidence"`
	Reasoning         string            `json:"reasoning"`
}

// CategoryScore holds the judge's per-category assessment
type CategoryScore struct {
	Score     float64 `json:"score"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// JudgmentResult is one judge verdict for a (predicted, standard) pair
type JudgmentResult struct {
	StandardID      string                      `json:"standard_id"`
	OverallScore    float64                     `json:"overall_score"`
	CategoryScores  map[string]CategoryScore    `json:"category_scores"`
	Precision       float64                     `json:"precision"`
	Recall          float64                     `json:"recall"`
	F1              float64                     `json:"f1_score"`
	ConfidenceLevel ConfidenceLevel             `json:"confidence_level"`
	ItemAssessments map[string][]ItemConfidence `json:"item_assessments,omitempty"`
	Reasoning       string                      `json:"overall_reasoning,omitempty"`
}

// AggregatedResult combines the judgments for one evaluation request.
// It is derived from the judgments and never persisted independently of them.
type AggregatedResult struct {
	OverallScore     float64                  `json:"overall_score"`
	CategoryScores   map[string]CategoryScore `json:"category_scores"`
	Precision        float64                  `json:"precision"`
	Recall           float64                  `json:"recall"`
	F1               float64                  `json:"f1_score"`
	ConfidenceLevel  ConfidenceLevel          `json:"confidence_level"`
	ConsistencyLevel ConfidenceLevel          `json:"consistency_level"`
	Outliers         []string                 `json:"outliers,omitempty"`
	RawMean          float64                  `json:"raw_mean"`
	FilteredMean     float64                  `json:"filtered_mean"`
	ScoreVariance    float64                  `json:"score_variance"`
	Method           AggregationMethod        `json:"method"`
	NumJudgments     int                      `json:"num_judgments"`
	Judgments        []JudgmentResult         `json:"judgments,omitempty"`
}
