// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Defines verbose/quiet/format persistent flags shared by all commands
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███╗   ██╗ ██████╗ ████████╗███████╗
████╗  ██║██╔═══██╗╚══██╔══╝██╔════╝
██╔██╗ ██║██║   ██║   ██║   █████╗
██║╚██╗██║██║   ██║   ██║   ██╔══╝
██║ ╚████║╚██████╔╝   ██║   ███████╗
╚═╝  ╚═══╝ ╚═════╝    ╚═╝   ╚══════╝ actions`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noteactions",
		Short: "Extract and evaluate actionable items from visit transcripts",
		Long: banner + `

noteactions extracts follow-up tasks, medication instructions, client
reminders, and clinician todos from medical visit transcripts. Each
extraction is grounded in similar prior cases and scored against gold
standards; every result requires explicit human review before it is saved.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")

	cmd.AddCommand(
		NewExtractCmd(),
		NewSaveCmd(),
		NewSearchCmd(),
		NewGoldCmd(),
		NewStatsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
