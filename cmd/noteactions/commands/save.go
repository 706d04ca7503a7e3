// ABOUTME: CLI command to persist a reviewed extraction as a prior case
// ABOUTME: This is the only path that finalizes an extraction
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notewell/engine/internal/charm"
)

// NewSaveCmd creates the save command
func NewSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <transcript-file> <extraction-file>",
		Short: "Save a human-reviewed extraction as a prior case",
		Long: `Save a reviewed extraction alongside its transcript.

The extraction file is the (possibly edited) JSON produced by
"noteactions extract --format json". Saved cases become retrieval
context for later extractions.

Examples:
  noteactions save visit.txt reviewed.json
  noteactions save - reviewed.json < visit.txt`,
		Args: cobra.ExactArgs(2),
		RunE: runSave,
	}
	return cmd
}

func runSave(cmd *cobra.Command, args []string) error {
	transcript, err := readTranscript(args[0])
	if err != nil {
		return err
	}
	extraction, err := readExtractionFile(args[1])
	if err != nil {
		return err
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	record, err := a.engine.ReviewAndSave(cmd.Context(), transcript, extraction)
	if err != nil {
		return fmt.Errorf("saving case: %w", err)
	}

	// Best-effort off-site archive; the local save already succeeded.
	if client, err := charm.GetClient(); err == nil {
		if err := client.SetJSON(charm.ReviewKey(record.ID), record); err != nil && verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not archive case to charm: %v\n", err)
		}
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
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved case %s\n", record.ID)
	}
	return nil
}
