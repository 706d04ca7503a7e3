// ABOUTME: MCP tool handler implementations for the extraction engine server
// ABOUTME: Thin request parsing and JSON responses over the engine API
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/notewell/engine/internal/engine"
	"github.com/notewell/engine/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	engine *engine.Engine
}

// ExtractActions handles the extract_actions tool
func (h *Handlers) ExtractActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := request.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError("transcript argument is required and must be a string"), nil
	}
	notes := request.GetString("notes", "")
	policies := request.GetStringSlice("policies", nil)

	result, err := h.engine.Process(ctx, engine.Request{
		Transcript: transcript,
		Notes:      notes,
		Policies:   policies,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ReviewAndSave handles the review_and_save tool
func (h *Handlers) ReviewAndSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := request.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError("transcript argument is required and must be a string"), nil
	}
	extraction, err := extractionArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := h.engine.ReviewAndSave(ctx, transcript, extraction)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"case_id":  record.ID,
		"items":    extraction.TotalItems(),
		"saved_at": record.CreatedAt,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SearchCases handles the search_cases tool
func (h *Handlers) SearchCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	maxResults := request.GetInt("max_results", 5)

	hits, err := h.engine.SearchCases(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	results := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		results = append(results, map[string]interface{}{
			"case_id":          hit.CaseID,
			"similarity_score": hit.SimilarityScore,
			"text":             hit.Text,
			"extraction":       hit.Extraction,
		})
	}
	responseJSON, err := json.Marshal(map[string]interface{}{"results": results})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// AddGoldStandard handles the add_gold_standard tool
func (h *Handlers) AddGoldStandard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := request.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError("transcript argument is required and must be a string"), nil
	}
	extraction, err := extractionArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := h.engine.AddGoldStandard(ctx, transcript, extraction)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add gold standard: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]interface{}{"case_id": record.ID})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetStats handles the get_stats tool
func (h *Handlers) GetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(h.engine.Stats())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// extractionArgument decodes the extraction object argument shared by the
// review_and_save and add_gold_standard tools
func extractionArgument(request mcp.CallToolRequest) (*models.Extraction, error) {
	args := request.GetArguments()
	raw, ok := args["extraction"]
	if !ok {
		return nil, fmt.Errorf("extraction argument is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("extraction argument is not a valid object: %v", err)
	}
	var extraction models.Extraction
	if err := json.Unmarshal(data, &extraction); err != nil {
		return nil, fmt.Errorf("extraction argument does not match the expected shape: %v", err)
	}
	return &extraction, nil
}
