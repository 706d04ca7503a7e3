// ABOUTME: Scored candidate and context-budget models for retrieval and selection
// ABOUTME: Carries similarity, reranker, combined, and relevance scores per candidate
package models

import "time"

// ScoredCandidate is a retrieved case with its retrieval-time scores.
// RerankerScore is nil when the reranker was unavailable, in which case
// CombinedScore equals SimilarityScore.
type ScoredCandidate struct {
	CaseID          string      `json:"case_id"`
	Text            string      `json:"text"`
	Extraction      *Extraction `json:"extraction,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	SimilarityScore float64     `json:"similarity_score"`
	RerankerScore   *float64    `json:"reranker_score,omitempty"`
	CombinedScore   float64     `json:"combined_score"`
	RelevanceScore  float64     `json:"relevance_score"`
}

// ContextBudget bounds context assembly by tokens and candidate count
type ContextBudget struct {
	MaxTokens     int `json:"max_tokens"`
	MaxCandidates int `json:"max_candidates"`
}

// ContextEntry is one selected candidate serialized into the context blob
type ContextEntry struct {
	CaseID         string  `json:"case_id"`
	Text           string  `json:"text"`
	RelevanceScore float64 `json:"relevance_score"`
	Tokens         int     `json:"tokens"`
}

// SelectedContext is the token-bounded context assembled for extraction.
// An empty context is the valid zero-shot state, not an error.
type SelectedContext struct {
	Entries    []ContextEntry `json:"entries"`
	Blob       string         `json:"blob"`
	TokenCount int            `json:"token_count"`
}

// IsEmpty reports whether no candidates cleared the selection threshold
func (c *SelectedContext) IsEmpty() bool {
	return len(c.Entries) == 0
}

// ContextQuality summarizes retrieval quality for the caller-facing result
type ContextQuality struct {
	NumCandidates    int     `json:"num_candidates"`
	AvgSimilarity    float64 `json:"avg_similarity"`
	AvgRerankerScore float64 `json:"avg_reranker_score"`
	AvgCombinedScore float64 `json:"avg_combined_score"`
	JudgeFailures    int     `json:"judge_failures"`
}
