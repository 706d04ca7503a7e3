// ABOUTME: Confidence models for per-item assessment and human-review flagging
// ABOUTME: Flagged items require an explicit human save before finalization
package models

import "fmt"

// ConfidenceLevel is the closed set of confidence values the judge may return
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Valid reports whether the level is one of the three allowed values
func (c ConfidenceLevel) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Rank orders levels for conservative comparison (low < medium < high)
func (c ConfidenceLevel) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// MinConfidence returns the more conservative of two levels
func MinConfidence(a, b ConfidenceLevel) ConfidenceLevel {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// ParseConfidenceLevel validates a raw judge value against the contract
func ParseConfidenceLevel(raw string) (ConfidenceLevel, error) {
	level := ConfidenceLevel(raw)
	if !level.Valid() {
		return "", fmt.Errorf("invalid confidence level %q: must be high, medium, or low", raw)
	}
	return level, nil
}

// ItemConfidence is the assessment of one extracted item.
// Mutated only by explicit human review, never silently upgraded.
type ItemConfidence struct {
	Confidence  ConfidenceLevel `json:"confidence"`
	Reasoning   string          `json:"reasoning,omitempty"`
	Issues      []string        `json:"issues,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// FlaggedSections lists item indices requiring human review, per category
type FlaggedSections map[string][]int

// Total returns the number of flagged items across all categories
func (f FlaggedSections) Total() int {
	total := 0
	for _, idxs := range f {
		total += len(idxs)
	}
	return total
}

// ConfidenceDetails is the caller-facing confidence report for one extraction
type ConfidenceDetails struct {
	OverallConfidence ConfidenceLevel             `json:"overall_confidence"`
	ItemConfidence    map[string][]ItemConfidence `json:"item_confidence"`
	FlaggedSections   FlaggedSections             `json:"flagged_sections"`
	ConfidenceSummary string                      `json:"confidence_summary"`
}

// ExtractionResult is the full engine output for one transcript.
// ReviewRequired is always true: no extraction is ever auto-approved,
// regardless of confidence. Finalization happens only through an explicit
// human save action.
type ExtractionResult struct {
	Extraction        *Extraction        `json:"extraction"`
	ConfidenceDetails *ConfidenceDetails `json:"confidence_details"`
	ContextQuality    *ContextQuality    `json:"context_quality"`
	Evaluation        *AggregatedResult  `json:"evaluation,omitempty"`
	Strategy          *EvaluationStrategy `json:"strategy,omitempty"`
	ReviewRequired    bool               `json:"review_required"`
}
