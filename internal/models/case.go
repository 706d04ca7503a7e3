// ABOUTME: Case record models for the prior-transcript and gold-standard corpora
// ABOUTME: Cases are immutable once created; embeddings are owned by the cache layer
package models

import "time"

// CaseRecord is one stored transcript with its extraction and embedding.
// Records are immutable after creation. The embedding is computed lazily
// and may be empty until the cache layer fills it in.
type CaseRecord struct {
	ID        string     `json:"id"`
	Scope     string     `json:"scope"`
	Text      string     `json:"text"`
	Embedding []float64  `json:"embedding,omitempty"`
	Extraction *Extraction `json:"extraction,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// GoldStandardCase is a case explicitly designated as a quality reference.
// SimilarityScore is filled in at retrieval time relative to the query.
type GoldStandardCase struct {
	CaseID          string      `json:"case_id"`
	Transcript      string      `json:"transcript"`
	Reference       *Extraction `json:"reference_extraction"`
	SimilarityScore float64     `json:"similarity_score"`
}
