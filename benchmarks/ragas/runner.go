// ABOUTME: Benchmark runner - executes retrieval scenarios and collects results
// ABOUTME: Wires the engine over deterministic stand-ins for embedding and judging

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/notewell/engine/internal/config"
	"github.com/notewell/engine/internal/engine"
	"github.com/notewell/engine/internal/evaluate"
	"github.com/notewell/engine/internal/index"
	"github.com/notewell/engine/internal/llm"
	"github.com/notewell/engine/internal/models"
	"github.com/notewell/engine/internal/storage"
)

// judgeScore is what the scripted judge awards every comparison; scenarios
// assert retrieval behavior, not judge quality
const judgeScore = 0.85

// Runner executes benchmark scenarios against a fully wired engine
type Runner struct {
	metrics *MetricsCalculator
	verbose bool
}

// NewRunner creates a benchmark runner
func NewRunner(verbose bool) *Runner {
	return &Runner{
		metrics: NewMetricsCalculator(),
		verbose: verbose,
	}
}

// scriptedEmbedder maps exact texts to fixed vectors
type scriptedEmbedder struct {
	vectors map[string][]float64
}

func (s *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no scripted vector for text %q", firstN(text, 40))
}

// capturingExtractor returns a fixed extraction and records the context it
// was handed, which is what the metrics inspect
type capturingExtractor struct {
	lastContext string
}

func (c *capturingExtractor) ExtractActions(ctx context.Context, req *llm.ExtractRequest) (*models.Extraction, error) {
	c.lastContext = req.Context
	return &models.Extraction{
		FollowUpTasks: []models.FollowUpTask{
			{Description: "Schedule follow-up appointment", Priority: "high"},
		},
	}, nil
}

// scriptedJudge awards a fixed score for every standard
type scriptedJudge struct{}

func (scriptedJudge) Judge(ctx context.Context, predicted *models.Extraction, standard *models.GoldStandardCase, transcript string) (*models.JudgmentResult, error) {
	return &models.JudgmentResult{
		StandardID:      standard.CaseID,
		OverallScore:    judgeScore,
		Precision:       judgeScore,
		Recall:          judgeScore,
		F1:              judgeScore,
		ConfidenceLevel: models.ConfidenceHigh,
	}, nil
}

// RunScenario executes a single benchmark scenario
func (r *Runner) RunScenario(ctx context.Context, scenario Scenario) (Result, error) {
	if r.verbose {
		fmt.Printf("\n========================================\n")
		fmt.Printf("RUNNING: %s\n", scenario.Name)
		fmt.Printf("========================================\n")
		fmt.Printf("Description: %s\n\n", scenario.Description)
	}

	vectors := map[string][]float64{scenario.Transcript: scenario.QueryVector}
	ix := index.New()
	var cases, gold []models.CaseRecord
	for _, seed := range scenario.SeedCases {
		vectors[seed.Text] = seed.Vector
		record := models.CaseRecord{
			ID:         seed.ID,
			Text:       seed.Text,
			Embedding:  seed.Vector,
			Extraction: seed.Extraction,
			CreatedAt:  time.Now().Add(-24 * time.Hour),
		}
		if seed.Gold {
			record.Scope = storage.ScopeGold
			gold = append(gold, record)
		} else {
			record.Scope = storage.ScopeCases
			cases = append(cases, record)
		}
	}
	ix.Load(storage.ScopeCases, cases)
	ix.Load(storage.ScopeGold, gold)

	extractor := &capturingExtractor{}
	eng, err := engine.New(engine.Deps{
		Embedder:   &scriptedEmbedder{vectors: vectors},
		Extractor:  extractor,
		Aggregator: evaluate.NewAggregator(scriptedJudge{}, evaluate.DefaultOptions(), nil),
		Index:      ix,
	}, config.Default(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("building engine: %w", err)
	}

	result, err := eng.Process(ctx, engine.Request{Transcript: scenario.Transcript})
	if err != nil {
		return Result{}, fmt.Errorf("processing transcript: %w", err)
	}

	selectedIDs := []string{}
	for _, seed := range scenario.SeedCases {
		if !seed.Gold && strings.Contains(extractor.lastContext, seed.ID) {
			selectedIDs = append(selectedIDs, seed.ID)
		}
	}

	evaluationScore := 0.0
	if result.Evaluation != nil {
		evaluationScore = result.Evaluation.OverallScore
	}

	outcome := r.metrics.EvaluateScenario(scenario, extractor.lastContext, selectedIDs, evaluationScore)

	if r.verbose {
		fmt.Printf("Context Recall: %.2f\n", outcome.ContextRecall)
		fmt.Printf("Context Precision: %.2f\n", outcome.ContextPrecision)
		fmt.Printf("Evaluation Score: %.2f\n", outcome.EvaluationScore)
		fmt.Printf("Status: %s\n\n", outcome.Status)
	}

	return outcome, nil
}

// RunAll executes every benchmark scenario
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	scenarios := GetAllScenarios()
	results := make([]Result, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunScenario(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("scenario %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ExportResults writes results to a JSON summary file
func (r *Runner) ExportResults(results []Result, outputPath string) error {
	summary := map[string]interface{}{
		"timestamp":       time.Now().Format(time.RFC3339),
		"total_scenarios": len(results),
		"passed":          0,
		"failed":          0,
		"results":         results,
	}

	for _, result := range results {
		if result.Status == "PASS" {
			summary["passed"] = summary["passed"].(int) + 1
		} else {
			summary["failed"] = summary["failed"].(int) + 1
		}
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return nil
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
