// ABOUTME: Multi-standard evaluation aggregator with parallel judge fan-out
// ABOUTME: Weighted, average, and robust combination of per-standard judgments
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notewell/engine/internal/models"
)

// ErrEvaluationUnavailable is returned when every judge call failed and no
// judgment survives to aggregate.
var ErrEvaluationUnavailable = errors.New("evaluation unavailable: all judge calls failed")

// Judge scores a predicted extraction against one gold standard
type Judge interface {
	Judge(ctx context.Context, predicted *models.Extraction, standard *models.GoldStandardCase, transcript string) (*models.JudgmentResult, error)
}

// Options configures aggregation thresholds
type Options struct {
	// OutlierThreshold is the |score − mean| distance beyond which an
	// average-method judgment is flagged
	OutlierThreshold float64
	// RobustDeviation is the distance from the median beyond which a
	// robust-method judgment is removed from the filtered mean
	RobustDeviation float64
	// Workers bounds concurrent judge calls
	Workers int
}

func DefaultOptions() Options {
	return Options{
		OutlierThreshold: 0.4,
		RobustDeviation:  0.25,
		Workers:          4,
	}
}

// Aggregator fans a predicted extraction out to the judge once per gold
// standard and combines the verdicts with the strategy's method.
type Aggregator struct {
	judge  Judge
	opts   Options
	logger *zap.Logger
}

func NewAggregator(judge Judge, opts Options, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	return &Aggregator{judge: judge, opts: opts, logger: logger}
}

// Evaluate judges predicted against every standard concurrently, waits for
// all calls to settle, and aggregates the successes. A single standard's
// failure drops that sample and renormalizes the rest; it returns
// ErrEvaluationUnavailable only when zero judgments succeed. Judgments
// completed before a context cancellation are still aggregated.
func (a *Aggregator) Evaluate(ctx context.Context, predicted *models.Extraction, standards []*models.GoldStandardCase, transcript string, method models.AggregationMethod) (*models.AggregatedResult, error) {
	if len(standards) == 0 {
		return nil, fmt.Errorf("%w: no standards to judge against", ErrEvaluationUnavailable)
	}

	judgments := make([]*models.JudgmentResult, len(standards))
	var mu sync.Mutex
	failures := 0

	// Judge failures are recorded, not returned, so one failed call never
	// cancels its siblings. The request context still cancels outstanding
	// calls on timeout; judgments already completed are kept.
	var g errgroup.Group
	g.SetLimit(a.opts.Workers)
	for i, std := range standards {
		g.Go(func() error {
			result, err := a.judge.Judge(ctx, predicted, std, transcript)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				a.logger.Warn("judge call failed, dropping standard",
					zap.String("standard_id", std.CaseID),
					zap.Error(err))
				return nil
			}
			judgments[i] = result
			return nil
		})
	}
	_ = g.Wait()

	succeeded := make([]models.JudgmentResult, 0, len(standards))
	weights := make([]float64, 0, len(standards))
	for i, j := range judgments {
		if j == nil {
			continue
		}
		succeeded = append(succeeded, *j)
		weights = append(weights, standards[i].SimilarityScore)
	}

	if len(succeeded) == 0 {
		return nil, fmt.Errorf("%w: %d standards attempted", ErrEvaluationUnavailable, len(standards))
	}

	var result *models.AggregatedResult
	switch method {
	case models.AggregationDirect:
		result = a.direct(succeeded)
	case models.AggregationWeighted:
		result = a.weighted(succeeded, weights)
	case models.AggregationAverage:
		result = a.average(succeeded)
	case models.AggregationRobust:
		result = a.robust(succeeded)
	default:
		return nil, fmt.Errorf("unknown aggregation method %q", method)
	}

	result.Method = method
	result.NumJudgments = len(succeeded)
	result.Judgments = succeeded
	result.ConsistencyLevel = consistency(scores(succeeded))

	if failures > 0 {
		a.logger.Info("evaluation completed with dropped standards",
			zap.Int("succeeded", len(succeeded)),
			zap.Int("failed", failures))
	}

	return result, nil
}

// direct passes the single judgment through unchanged
func (a *Aggregator) direct(js []models.JudgmentResult) *models.AggregatedResult {
	j := js[0]
	return &models.AggregatedResult{
		OverallScore:    j.OverallScore,
		CategoryScores:  j.CategoryScores,
		Precision:       j.Precision,
		Recall:          j.Recall,
		F1:              j.F1,
		ConfidenceLevel: j.ConfidenceLevel,
		RawMean:         j.OverallScore,
		FilteredMean:    j.OverallScore,
	}
}

// weighted combines judgments with weights proportional to each standard's
// similarity to the query, normalized to sum to 1
func (a *Aggregator) weighted(js []models.JudgmentResult, weights []float64) *models.AggregatedResult {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	norm := make([]float64, len(weights))
	for i, w := range weights {
		if total > 0 {
			norm[i] = w / total
		} else {
			norm[i] = 1.0 / float64(len(weights))
		}
	}

	res := &models.AggregatedResult{CategoryScores: weightedCategories(js, norm)}
	for i, j := range js {
		res.OverallScore += norm[i] * j.OverallScore
		res.Precision += norm[i] * j.Precision
		res.Recall += norm[i] * j.Recall
		res.F1 += norm[i] * j.F1
	}
	res.ConfidenceLevel = minJudgmentConfidence(js)
	res.RawMean = mean(scores(js))
	res.FilteredMean = res.OverallScore
	res.ScoreVariance = variance(scores(js))
	return res
}

// average takes the arithmetic mean and flags outliers without removing
// them from the reported statistics
func (a *Aggregator) average(js []models.JudgmentResult) *models.AggregatedResult {
	ss := scores(js)
	m := mean(ss)

	res := &models.AggregatedResult{
		OverallScore:   m,
		CategoryScores: averageCategories(js),
		RawMean:        m,
		ScoreVariance:  variance(ss),
	}
	for _, j := range js {
		res.Precision += j.Precision / float64(len(js))
		res.Recall += j.Recall / float64(len(js))
		res.F1 += j.F1 / float64(len(js))
	}

	kept := make([]float64, 0, len(ss))
	for i, s := range ss {
		if math.Abs(s-m) > a.opts.OutlierThreshold {
			res.Outliers = append(res.Outliers, js[i].StandardID)
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) > 0 {
		res.FilteredMean = mean(kept)
	} else {
		res.FilteredMean = m
	}
	res.ConfidenceLevel = minJudgmentConfidence(js)
	return res
}

// robust removes judgments farther than the deviation threshold from the
// median and reports both raw and filtered statistics. The filtered mean is
// the headline score.
func (a *Aggregator) robust(js []models.JudgmentResult) *models.AggregatedResult {
	ss := scores(js)
	med := median(ss)

	keptJudgments := make([]models.JudgmentResult, 0, len(js))
	kept := make([]float64, 0, len(ss))
	var outliers []string
	for i, s := range ss {
		if math.Abs(s-med) > a.opts.RobustDeviation {
			outliers = append(outliers, js[i].StandardID)
			continue
		}
		keptJudgments = append(keptJudgments, js[i])
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		// Everything deviates; fall back to the full set
		keptJudgments = js
		kept = ss
		outliers = nil
	}

	res := &models.AggregatedResult{
		OverallScore:   mean(kept),
		CategoryScores: averageCategories(keptJudgments),
		Outliers:       outliers,
		RawMean:        mean(ss),
		FilteredMean:   mean(kept),
		ScoreVariance:  variance(ss),
	}
	for _, j := range keptJudgments {
		res.Precision += j.Precision / float64(len(keptJudgments))
		res.Recall += j.Recall / float64(len(keptJudgments))
		res.F1 += j.F1 / float64(len(keptJudgments))
	}
	res.ConfidenceLevel = minJudgmentConfidence(keptJudgments)
	return res
}

// consistency classifies the spread of scores: high when every pair is
// within 0.2, medium within 0.4, low otherwise
func consistency(ss []float64) models.ConfidenceLevel {
	if len(ss) <= 1 {
		return models.ConfidenceHigh
	}
	lo, hi := ss[0], ss[0]
	for _, s := range ss[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	spread := hi - lo
	switch {
	case spread <= 0.2:
		return models.ConfidenceHigh
	case spread <= 0.4:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func minJudgmentConfidence(js []models.JudgmentResult) models.ConfidenceLevel {
	level := models.ConfidenceHigh
	for _, j := range js {
		level = models.MinConfidence(level, j.ConfidenceLevel)
	}
	return level
}

func scores(js []models.JudgmentResult) []float64 {
	out := make([]float64, len(js))
	for i, j := range js {
		out[i] = j.OverallScore
	}
	return out
}

func mean(ss []float64) float64 {
	if len(ss) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range ss {
		total += s
	}
	return total / float64(len(ss))
}

func variance(ss []float64) float64 {
	if len(ss) <= 1 {
		return 0
	}
	m := mean(ss)
	total := 0.0
	for _, s := range ss {
		d := s - m
		total += d * d
	}
	return total / float64(len(ss))
}

func median(ss []float64) float64 {
	sorted := make([]float64, len(ss))
	copy(sorted, ss)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// weightedCategories blends per-category scores with the same normalized
// weights as the overall score; categories missing from a judgment simply
// contribute nothing from it.
func weightedCategories(js []models.JudgmentResult, norm []float64) map[string]models.CategoryScore {
	out := make(map[string]models.CategoryScore)
	for i, j := range js {
		for cat, cs := range j.CategoryScores {
			acc := out[cat]
			acc.Score += norm[i] * cs.Score
			acc.Precision += norm[i] * cs.Precision
			acc.Recall += norm[i] * cs.Recall
			acc.F1 += norm[i] * cs.F1
			out[cat] = acc
		}
	}
	return out
}

func averageCategories(js []models.JudgmentResult) map[string]models.CategoryScore {
	sums := make(map[string]models.CategoryScore)
	counts := make(map[string]int)
	for _, j := range js {
		for cat, cs := range j.CategoryScores {
			acc := sums[cat]
			acc.Score += cs.Score
			acc.Precision += cs.Precision
			acc.Recall += cs.Recall
			acc.F1 += cs.F1
			sums[cat] = acc
			counts[cat]++
		}
	}
	out := make(map[string]models.CategoryScore, len(sums))
	for cat, acc := range sums {
		n := float64(counts[cat])
		out[cat] = models.CategoryScore{
			Score:     acc.Score / n,
			Precision: acc.Precision / n,
			Recall:    acc.Recall / n,
			F1:        acc.F1 / n,
		}
	}
	return out
}
