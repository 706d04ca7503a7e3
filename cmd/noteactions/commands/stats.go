// ABOUTME: CLI command to show corpus statistics
// ABOUTME: Reports corpus counts and embedding cache figures
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Long: `Show counts of stored cases and gold standards, plus
embedding cache usage.

Examples:
  noteactions stats
  noteactions stats --format json`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.engine.Stats()
	cacheStats := a.cache.GetStats()

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"corpus": stats,
			"cache":  cacheStats,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cases:           %d\n", stats.Cases)
	fmt.Fprintf(cmd.OutOrStdout(), "Gold standards:  %d\n", stats.GoldStandards)
	fmt.Fprintf(cmd.OutOrStdout(), "Cached vectors:  %d\n", cacheStats.Entries)
	fmt.Fprintf(cmd.OutOrStdout(), "Cache hit rate:  %.0f%%\n", cacheStats.HitRate*100)
	return nil
}
