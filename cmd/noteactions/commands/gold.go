// ABOUTME: CLI command to register gold standard cases
// ABOUTME: Gold standards anchor the multi-standard evaluation of new extractions
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewGoldCmd creates the gold command
func NewGoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gold <transcript-file> <extraction-file>",
		Short: "Register a gold standard case",
		Long: `Register a verified transcript/extraction pair as a gold standard.

Gold standards are the references new extractions are judged against.
Unlike regular saved cases, a gold standard must embed successfully;
registration fails if the embedding service is unavailable.

Examples:
  noteactions gold visit.txt verified.json`,
		Args: cobra.ExactArgs(2),
		RunE: runGold,
	}
	return cmd
}

func runGold(cmd *cobra.Command, args []string) error {
	transcript, err := readTranscript(args[0])
	if err != nil {
		return err
	}
	reference, err := readExtractionFile(args[1])
	if err != nil {
		return err
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	record, err := a.engine.AddGoldStandard(cmd.Context(), transcript, reference)
	if err != nil {
		return fmt.Errorf("registering gold standard: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered gold standard %s\n", record.ID)
	}
	return nil
}
