// ABOUTME: Action extraction from visit transcripts via structured chat completion
// ABOUTME: Supplies retrieved context, clinic policies, and custom categories to the prompt
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/notewell/engine/internal/models"
)

// CustomCategory describes a caller-defined extraction category
type CustomCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExtractRequest carries everything the extractor needs for one transcript
type ExtractRequest struct {
	Transcript       string
	Notes            string
	Context          string
	CustomCategories []CustomCategory
	Policies         []string
}

const extractSystemPrompt = `You are a medical action extraction assistant. Given a visit transcript, extract ALL actionable items into four categories:

1. follow_up_tasks: appointments, check-ins, and tasks to schedule
2. medication_instructions: prescribed medications with dosage, frequency, duration
3. client_reminders: patient-facing reminders
4. clinician_todos: clinician-side tasks like test orders and referrals

Each item must include a description and priority (high, medium, or low).
Medication items must include medication_name, dosage, and frequency.

Return ONLY a JSON object with keys follow_up_tasks, medication_instructions, client_reminders, clinician_todos (arrays), and optionally custom_extractions. No additional text. Extract only what is explicitly stated; do not infer.`

// ExtractActions extracts structured actions from a transcript. The
// optional context holds prior similar cases for few-shot grounding;
// an empty context produces a zero-shot extraction.
func (c *Client) ExtractActions(ctx context.Context, req *ExtractRequest) (*models.Extraction, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, fmt.Errorf("transcript is empty")
	}

	var sb strings.Builder
	if req.Context != "" {
		sb.WriteString("CONTEXT FROM SIMILAR PRIOR CASES:\n")
		sb.WriteString(req.Context)
		sb.WriteString("\n\n")
	}
	if len(req.Policies) > 0 {
		sb.WriteString("CLINIC POLICIES TO APPLY:\n")
		for _, p := range req.Policies {
			sb.WriteString("- " + p + "\n")
		}
		sb.WriteString("\n")
	}
	if len(req.CustomCategories) > 0 {
		sb.WriteString("ADDITIONAL CUSTOM CATEGORIES TO EXTRACT:\n")
		for _, cat := range req.CustomCategories {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", cat.Name, cat.Description))
		}
		sb.WriteString("\n")
	}
	if req.Notes != "" {
		sb.WriteString("CLINICIAN NOTES:\n")
		sb.WriteString(req.Notes)
		sb.WriteString("\n\n")
	}
	sb.WriteString("TRANSCRIPT:\n")
	sb.WriteString(req.Transcript)

	content, err := c.chatJSON(ctx, extractSystemPrompt, sb.String(), 0.1)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	var extraction models.Extraction
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}

	return &extraction, nil
}

// stripCodeFence removes a markdown code fence if the model wrapped its JSON
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
