// ABOUTME: Judge client scoring a predicted extraction against one gold standard
// ABOUTME: Rejects out-of-contract confidence values and retries instead of accepting them
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/notewell/engine/internal/models"
)

const judgeSystemPrompt = `You are a medical extraction quality judge. Compare a predicted extraction against a gold-standard reference extraction for the same kind of visit.

Score each category (follow_up_tasks, medication_instructions, client_reminders, clinician_todos) with: score (0.0-1.0), precision, recall, f1_score, and a short reasoning.

Also assess each predicted item individually: confidence (high, medium, or low), reasoning, issues (array), suggestions (array).

Return ONLY a JSON object:
{
  "overall_score": 0.0-1.0,
  "category_scores": {"<category>": {"score":..., "precision":..., "recall":..., "f1_score":..., "reasoning":...}},
  "precision": ..., "recall": ..., "f1_score": ...,
  "confidence_level": "high" | "medium" | "low",
  "item_assessments": {"<category>": [{"confidence":..., "reasoning":..., "issues":[], "suggestions":[]}]},
  "overall_reasoning": "..."
}
confidence_level MUST be exactly one of: high, medium, low.`

// judgeResponse mirrors the judge's wire format before validation
type judgeResponse struct {
	OverallScore    float64                                `json:"overall_score"`
	CategoryScores  map[string]models.CategoryScore        `json:"category_scores"`
	Precision       float64                                `json:"precision"`
	Recall          float64                                `json:"recall"`
	F1              float64                                `json:"f1_score"`
	ConfidenceLevel string                                 `json:"confidence_level"`
	ItemAssessments map[string][]models.ItemConfidence     `json:"item_assessments"`
	Reasoning       string                                 `json:"overall_reasoning"`
}

// Judge scores predicted against one gold standard. A response whose
// confidence_level is outside {high, medium, low} is a contract violation
// and is retried rather than silently accepted.
func (c *Client) Judge(ctx context.Context, predicted *models.Extraction, standard *models.GoldStandardCase, transcript string) (*models.JudgmentResult, error) {
	predictedJSON, err := json.Marshal(predicted)
	if err != nil {
		return nil, fmt.Errorf("marshaling predicted extraction: %w", err)
	}
	referenceJSON, err := json.Marshal(standard.Reference)
	if err != nil {
		return nil, fmt.Errorf("marshaling reference extraction: %w", err)
	}

	userPrompt := fmt.Sprintf(
		"ORIGINAL TRANSCRIPT:\n%s\n\nPREDICTED EXTRACTION:\n%s\n\nGOLD STANDARD:\n%s",
		transcript, predictedJSON, referenceJSON,
	)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		content, err := c.chatJSON(ctx, judgeSystemPrompt, userPrompt, 0.1)
		if err != nil {
			return nil, fmt.Errorf("judge call failed: %w", err)
		}

		var resp judgeResponse
		if err := json.Unmarshal([]byte(stripCodeFence(content)), &resp); err != nil {
			lastErr = fmt.Errorf("attempt %d: failed to parse judge JSON: %w", attempt+1, err)
			continue
		}

		level, err := models.ParseConfidenceLevel(resp.ConfidenceLevel)
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: judge contract violation: %w", attempt+1, err)
			continue
		}

		return &models.JudgmentResult{
			StandardID:      standard.CaseID,
			OverallScore:    resp.OverallScore,
			CategoryScores:  resp.CategoryScores,
			Precision:       resp.Precision,
			Recall:          resp.Recall,
			F1:              resp.F1,
			ConfidenceLevel: level,
			ItemAssessments: resp.ItemAssessments,
			Reasoning:       resp.Reasoning,
		}, nil
	}

	return nil, fmt.Errorf("judge returned no valid result after %d attempts: %w", c.maxRetries+1, lastErr)
}
