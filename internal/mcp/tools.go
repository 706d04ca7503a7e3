// ABOUTME: MCP tool definitions and registration for the extraction engine server
// ABOUTME: Defines JSON schemas for the extraction, review, search, and corpus tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/notewell/engine/internal/engine"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, eng *engine.Engine) *Handlers {
	handlers := &Handlers{engine: eng}

	// 1. extract_actions - Run a transcript through the full pipeline
	server.AddTool(mcp.Tool{
		Name:        "extract_actions",
		Description: "Extract actionable items from a medical visit transcript, grounded in similar prior cases and evaluated against gold standards. The result always requires human review before it can be saved.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"transcript": map[string]interface{}{
					"type":        "string",
					"description": "Visit transcript to extract actions from",
				},
				"notes": map[string]interface{}{
					"type":        "string",
					"description": "Optional clinician notes accompanying the transcript",
				},
				"policies": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Optional clinic policies the extraction must respect",
				},
			},
			Required: []string{"transcript"},
		},
	}, handlers.ExtractActions)

	// 2. review_and_save - Persist a human-approved extraction
	server.AddTool(mcp.Tool{
		Name:        "review_and_save",
		Description: "Save a human-reviewed extraction as a new prior case. This is the only way an extraction becomes final; it is then retrievable as context for future transcripts.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"transcript": map[string]interface{}{
					"type":        "string",
					"description": "The transcript the extraction was produced from",
				},
				"extraction": map[string]interface{}{
					"type":        "object",
					"description": "The approved extraction, with follow_up_tasks, medication_instructions, client_reminders, and clinician_todos arrays",
				},
			},
			Required: []string{"transcript", "extraction"},
		},
	}, handlers.ReviewAndSave)

	// 3. search_cases - Similarity search over the prior-case corpus
	server.AddTool(mcp.Tool{
		Name:        "search_cases",
		Description: "Search the prior-case corpus for transcripts similar to a query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query text",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchCases)

	// 4. add_gold_standard - Grow the evaluation corpus
	server.AddTool(mcp.Tool{
		Name:        "add_gold_standard",
		Description: "Add a reference transcript with its verified extraction to the gold-standard corpus used for evaluation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"transcript": map[string]interface{}{
					"type":        "string",
					"description": "Reference visit transcript",
				},
				"extraction": map[string]interface{}{
					"type":        "object",
					"description": "Verified reference extraction for the transcript",
				},
			},
			Required: []string{"transcript", "extraction"},
		},
	}, handlers.AddGoldStandard)

	// 5. get_stats - Corpus sizes
	server.AddTool(mcp.Tool{
		Name:        "get_stats",
		Description: "Get corpus statistics: prior cases and gold standards loaded.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetStats)

	return handlers
}
