// ABOUTME: Pairwise relevance scoring of candidate texts against a query
// ABOUTME: Chat-completion stand-in for a cross-encoder; scores are 0.0-1.0 per candidate
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const rerankSystemPrompt = `You are a relevance scorer for medical transcripts. Given a query transcript and a numbered list of candidate transcripts, score how relevant each candidate is to the query on a 0.0-1.0 scale, judging the (query, candidate) pair directly.

Return ONLY a JSON array of numbers, one per candidate, in the same order. Example: [0.91, 0.34, 0.72]`

// ScoreRelevance returns one pairwise relevance score per candidate.
// Used only on a retrieval shortlist, never on a full corpus.
func (c *Client) ScoreRelevance(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("QUERY:\n")
	sb.WriteString(query)
	sb.WriteString("\n\nCANDIDATES:\n")
	for i, cand := range candidates {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, cand))
	}

	content, err := c.chatJSON(ctx, rerankSystemPrompt, sb.String(), 0.0)
	if err != nil {
		return nil, fmt.Errorf("rerank call failed: %w", err)
	}

	var scores []float64
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &scores); err != nil {
		return nil, fmt.Errorf("failed to parse rerank scores: %w", err)
	}

	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("rerank returned %d scores for %d candidates", len(scores), len(candidates))
	}

	// Clamp out-of-range scores rather than failing the shortlist
	for i, s := range scores {
		if s < 0 {
			scores[i] = 0
		} else if s > 1 {
			scores[i] = 1
		}
	}

	return scores, nil
}
