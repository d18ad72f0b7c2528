package ai

import (
	"context"

	"github.com/masterhudini/ainews/core"
)

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns ErrEmbeddingUnavailable (wrapped) when the backing service is
	// rate limited or failing; that failure is transient, never a verdict
	// on the content.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in a batch.
	// The returned slice matches the input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Analyzer derives topics and insights from freshly stored articles.
// It is the downstream analysis collaborator: the pipeline treats it as
// opaque and its failures never invalidate an ingestion run.
type Analyzer interface {
	// Analyze inspects the given articles and returns per-article insights
	// plus an overall digest. The input order is not significant.
	Analyze(ctx context.Context, articles []*core.Article) (*AnalysisResult, error)
}

// Provider aggregates the AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Analyzer returns the article analysis service.
	Analyzer() Analyzer

	// Close releases resources held by the provider and its services.
	Close() error
}
