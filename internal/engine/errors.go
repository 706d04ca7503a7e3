// ABOUTME: Error taxonomy for the extraction pipeline
// ABOUTME: Distinguishes degradable faults from the two user-visible failures
package engine

import (
	"errors"

	"github.com/notewell/engine/internal/evaluate"
)

var (
	// ErrEmbeddingUnavailable marks the embedding service as down. The
	// pipeline degrades to zero-shot context, never fails the request.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrExtractionUnavailable is the first of two user-visible failures:
	// the extractor produced nothing
	ErrExtractionUnavailable = errors.New("extraction unavailable: extractor service failed")

	// ErrEvaluationUnavailable is the second user-visible failure: every
	// judge call failed when an evaluation was required
	ErrEvaluationUnavailable = evaluate.ErrEvaluationUnavailable
)
