package ai

import "errors"

var (
	// ErrEmbeddingUnavailable indicates the embedding service is rate limited
	// or failing. Callers treat the affected record as indeterminate for the
	// run, never as unique or duplicate.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrAnalysisFailed indicates the analysis collaborator failed.
	// Ingestion results stay valid; the failure is only reported.
	ErrAnalysisFailed = errors.New("analysis failed")
)
