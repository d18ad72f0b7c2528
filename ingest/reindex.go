// Copyright 2025 Masterhudini
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/core"
	"github.com/masterhudini/ainews/storage"
)

// ReindexConfig holds configuration for the reindexing operation.
type ReindexConfig struct {
	// BatchSize is the number of articles to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of articles)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultReindexConfig returns a ReindexConfig with sensible defaults.
func DefaultReindexConfig() *ReindexConfig {
	return &ReindexConfig{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rebuilds the embedding vector index from the stored articles,
// for example after switching embedding models.
type Reindexer struct {
	articles storage.ArticleRepository
	index    storage.DedupIndex
	embedder ai.Embedder
	config   *ReindexConfig
	progress io.Writer
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(articles storage.ArticleRepository, index storage.DedupIndex, embedder ai.Embedder, config *ReindexConfig, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultReindexConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Reindexer{
		articles: articles,
		index:    index,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run re-embeds every stored article and upserts its vector into the index.
// Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	var all []*core.Article
	err := r.articles.ForEachArticle(ctx, func(article *core.Article) error {
		all = append(all, article)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enumerate articles: %w", err)
	}

	total := len(all)
	if total == 0 {
		fmt.Fprintf(r.progress, "No articles found in database (0 articles)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d articles (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	for start := 0; start < total; start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > total {
			end = total
		}
		if err := r.processBatch(ctx, all[start:end]); err != nil {
			return err
		}
		tracker.Update(end)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d articles in %v (%.1f articles/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// processBatch embeds one batch of articles and upserts the vectors.
func (r *Reindexer) processBatch(ctx context.Context, batch []*core.Article) error {
	texts := make([]string, len(batch))
	for i, article := range batch {
		texts[i] = embeddingInput(article)
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	}, r.config.MaxRetries, r.config.RetryDelay, nil)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i, article := range batch {
		if err := r.index.UpsertVector(ctx, article.Id, embeddings[i]); err != nil {
			return fmt.Errorf("failed to upsert vector for %d: %w", article.Id, err)
		}
	}
	return nil
}
