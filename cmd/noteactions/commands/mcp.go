// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to drive extraction and review via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/notewell/engine/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the extraction engine as an MCP (Model Context Protocol) server,
exposing extract, review-and-save, search, gold standard, and stats
tools over stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCPServer,
		Example: `  # Start MCP server (typically called by an agent host)
  noteactions mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "noteactions": {
  #       "command": "noteactions",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCPServer starts the MCP server
func runMCPServer(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}

	server := mcpserver.NewMCPServer(
		"Note Actions Engine",
		"0.1.0",
	)

	mcp.RegisterTools(server, a.engine)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("noteactions MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		// Flushes the embedding cache snapshot and closes the case store.
		a.Close()

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		a.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
