// ABOUTME: CLI command to extract actions from a transcript
// ABOUTME: Runs the full retrieval, extraction, and evaluation pipeline
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/notewell/engine/internal/engine"
	"github.com/notewell/engine/internal/models"
)

var (
	extractNotes    string
	extractPolicies []string
)

// NewExtractCmd creates the extract command
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <transcript-file>",
		Short: "Extract actions from a visit transcript",
		Long: `Extract actionable items from a visit transcript.

The transcript is embedded, similar prior cases are retrieved as context,
the extraction is evaluated against gold standards, and every item gets a
confidence assessment. The result is never final on its own: review it and
run "noteactions save" to persist it.

Examples:
  noteactions extract visit.txt
  noteactions extract - < visit.txt
  noteactions extract --notes "patient is hard of hearing" visit.txt
  noteactions extract --format json visit.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().StringVar(&extractNotes, "notes", "", "Clinician notes to pass alongside the transcript")
	cmd.Flags().StringArrayVar(&extractPolicies, "policy", nil, "Clinic policy the extraction must respect (repeatable)")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	transcript, err := readTranscript(args[0])
	if err != nil {
		return err
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.Process(cmd.Context(), engine.Request{
		Transcript: transcript,
		Notes:      extractNotes,
		Policies:   extractPolicies,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *models.ExtractionResult) {
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CATEGORY\tITEM\tCONFIDENCE\n")
	fmt.Fprintf(w, "--------\t----\t----------\n")
	for _, category := range models.Categories() {
		for i, desc := range categoryDescriptions(result.Extraction, category) {
			confidence := ""
			if result.ConfidenceDetails != nil {
				if items, ok := result.ConfidenceDetails.ItemConfidence[category]; ok && i < len(items) {
					confidence = string(items[i].Confidence)
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", category, truncate(desc, 60), confidence)
		}
	}
	w.Flush()

	fmt.Fprintln(out)
	if result.Evaluation != nil {
		fmt.Fprintf(out, "Evaluation: %.2f overall (%s, %d standards, consistency %s)\n",
			result.Evaluation.OverallScore, result.Evaluation.Method,
			result.Evaluation.NumJudgments, result.Evaluation.ConsistencyLevel)
	} else {
		fmt.Fprintln(out, "Evaluation: unavailable (no gold standards matched)")
	}
	if result.ConfidenceDetails != nil {
		if flagged := result.ConfidenceDetails.FlaggedSections.Total(); flagged > 0 {
			fmt.Fprintf(out, "Flagged for close review: %d items\n", flagged)
		}
	}
	fmt.Fprintln(out, "Review required: yes (run \"noteactions save\" after review)")
}

func categoryDescriptions(e *models.Extraction, category string) []string {
	var out []string
	switch category {
	case models.CategoryFollowUpTasks:
		for _, t := range e.FollowUpTasks {
			out = append(out, t.Description)
		}
	case models.CategoryMedicationInstructions:
		for _, m := range e.MedicationInstructions {
			out = append(out, strings.TrimSpace(fmt.Sprintf("%s %s %s", m.MedicationName, m.Dosage, m.Frequency)))
		}
	case models.CategoryClientReminders:
		for _, r := range e.ClientReminders {
			out = append(out, r.Description)
		}
	case models.CategoryClinicianTodos:
		for _, t := range e.ClinicianTodos {
			out = append(out, t.Description)
		}
	}
	return out
}
