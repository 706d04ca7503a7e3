// ABOUTME: Command-line benchmark runner for retrieval quality scenarios
// ABOUTME: Executes benchmark scenarios and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/notewell/engine/benchmarks/ragas"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run a specific scenario by ID. If empty, runs all scenarios.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("Retrieval Quality Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner := ragas.NewRunner(*verbose)
	ctx := context.Background()

	var results []ragas.Result

	if *scenarioID == "" {
		fmt.Println("Running all benchmark scenarios...")
		fmt.Println()

		all, err := runner.RunAll(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
		results = all
	} else {
		var scenario ragas.Scenario
		found := false
		for _, s := range ragas.GetAllScenarios() {
			if s.ID == *scenarioID {
				scenario = s
				found = true
				break
			}
		}
		if !found {
			log.Fatalf("Unknown scenario ID: %s", *scenarioID)
		}

		fmt.Printf("Running scenario: %s\n\n", scenario.Name)

		result, err := runner.RunScenario(ctx, scenario)
		if err != nil {
			log.Fatalf("Scenario failed: %v", err)
		}
		results = []ragas.Result{result}
	}

	passed, failed := 0, 0
	for _, result := range results {
		marker := "PASS"
		if result.Status != "PASS" {
			marker = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %-30s recall=%.2f precision=%.2f evaluation=%.2f\n",
			marker, result.ScenarioName, result.ContextRecall,
			result.ContextPrecision, result.EvaluationScore)
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("Results exported to: %s\n", *outputPath)
}
