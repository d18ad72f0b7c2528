package ingest

import "errors"

var (
	// ErrRegistryRequired is returned when a source registry is not provided.
	ErrRegistryRequired = errors.New("source registry required")

	// ErrArticleRepositoryRequired is returned when an article repository is not provided.
	ErrArticleRepositoryRequired = errors.New("article repository required")

	// ErrDedupIndexRequired is returned when a dedup index is not provided.
	ErrDedupIndexRequired = errors.New("dedup index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidMaxAttempts is returned when a retry bound is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrInvalidThreshold is returned when a similarity threshold is outside (0, 1].
	ErrInvalidThreshold = errors.New("similarity threshold must be in (0, 1]")
)
