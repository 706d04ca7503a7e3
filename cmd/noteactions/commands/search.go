// ABOUTME: CLI command to search stored cases
// ABOUTME: Semantic search over saved prior cases using the embedding index
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search saved cases",
		Long: `Search saved cases by semantic similarity.

The query is embedded and compared against every stored case.

Examples:
  noteactions search "blood pressure follow-up"
  noteactions search --limit 10 "medication refill"
  noteactions search --format json "dental cleaning"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	query := args[0]

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.engine.SearchCases(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("searching cases: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No cases found for query: %s\n", query)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SCORE\tCASE ID\tSAVED\tPREVIEW\n")
		fmt.Fprintf(w, "-----\t-------\t-----\t-------\n")

		for _, result := range results {
			fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
				result.CombinedScore,
				truncate(result.CaseID, 25),
				formatTime(result.CreatedAt),
				truncate(result.Text, 60))
		}
		w.Flush()

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
		}
	}

	return nil
}
