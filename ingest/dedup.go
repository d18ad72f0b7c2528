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
	"log/slog"
	"sync"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/core"
	"github.com/masterhudini/ainews/storage"
)

const (
	// DefaultSimilarityThreshold is the inclusive cosine similarity at or
	// above which an article is a semantic duplicate of a stored one.
	DefaultSimilarityThreshold = 0.85

	// defaultSearchLimit bounds how many nearest neighbors are considered.
	defaultSearchLimit = 5

	// embeddingInputLimit bounds the rune length of text sent to the embedder.
	embeddingInputLimit = 8000

	// lockStripes is the size of the per-fingerprint lock table.
	lockStripes = 64
)

// Deduper decides whether an article is unique or a duplicate using two
// tiers: an exact fingerprint check, then nearest-neighbor similarity over
// the embedding vector index.
type Deduper struct {
	index     storage.DedupIndex
	embedder  ai.Embedder
	threshold float32
	locks     [lockStripes]sync.Mutex
	logger    *slog.Logger
}

// NewDeduper creates a deduplication engine over the given index and embedder.
func NewDeduper(index storage.DedupIndex, embedder ai.Embedder, threshold float32, logger *slog.Logger) (*Deduper, error) {
	if index == nil {
		return nil, ErrDedupIndexRequired
	}
	if embedder == nil {
		return nil, ErrAIProviderRequired
	}
	if threshold <= 0 || threshold > 1 {
		return nil, ErrInvalidThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduper{
		index:     index,
		embedder:  embedder,
		threshold: threshold,
		logger:    logger.With("component", "deduper"),
	}, nil
}

// Evaluate runs the two-tier duplicate check for one article.
//
// Unique articles are registered in both dedup indices atomically before
// the decision is returned; the caller persists the article afterwards.
// An embedder failure is returned wrapped in ai.ErrEmbeddingUnavailable so
// the caller can count the article as failed rather than duplicate.
func (d *Deduper) Evaluate(ctx context.Context, article *core.Article) (core.Decision, error) {
	// Tier 1: cheap exact check before paying for an embedding
	if owner, found, err := d.index.HasFingerprint(ctx, article.Fingerprint); err != nil {
		return core.Decision{}, err
	} else if found {
		return core.Decision{Kind: core.DecisionExactDuplicate, DuplicateOf: owner}, nil
	}

	vector, err := d.embedder.EmbedText(ctx, embeddingInput(article))
	if err != nil {
		return core.Decision{}, fmt.Errorf("%w: %w", ai.ErrEmbeddingUnavailable, err)
	}

	// Same-fingerprint arrivals serialize here so only one passes the
	// recheck below as a miss.
	lock := d.lockFor(article.Fingerprint)
	lock.Lock()
	defer lock.Unlock()

	if owner, found, err := d.index.HasFingerprint(ctx, article.Fingerprint); err != nil {
		return core.Decision{}, err
	} else if found {
		return core.Decision{Kind: core.DecisionExactDuplicate, DuplicateOf: owner}, nil
	}

	// Tier 2: nearest-neighbor similarity
	neighbors, err := d.index.SearchVectors(ctx, vector, defaultSearchLimit)
	if err != nil {
		return core.Decision{}, err
	}
	if len(neighbors) > 0 && neighbors[0].Score >= d.threshold {
		d.logger.Debug("semantic duplicate",
			"url", article.URL,
			"score", neighbors[0].Score,
			"duplicateOf", neighbors[0].ArticleId)
		return core.Decision{
			Kind:        core.DecisionSemanticDuplicate,
			Score:       neighbors[0].Score,
			DuplicateOf: neighbors[0].ArticleId,
		}, nil
	}

	err = d.index.RegisterUnique(ctx, article.Id, article.Fingerprint, vector)
	if err == storage.ErrDuplicateFingerprint {
		// Lost a cross-process race after the recheck
		owner, _, hasErr := d.index.HasFingerprint(ctx, article.Fingerprint)
		if hasErr != nil {
			return core.Decision{}, hasErr
		}
		return core.Decision{Kind: core.DecisionExactDuplicate, DuplicateOf: owner}, nil
	}
	if err != nil {
		return core.Decision{}, err
	}

	return core.Decision{Kind: core.DecisionUnique}, nil
}

// lockFor returns the stripe lock covering a fingerprint.
func (d *Deduper) lockFor(fp core.Fingerprint) *sync.Mutex {
	return &d.locks[int(fp[0])%lockStripes]
}

// embeddingInput builds the bounded text the embedder sees for an article.
func embeddingInput(article *core.Article) string {
	text := article.Title + "\n" + article.Body
	runes := []rune(text)
	if len(runes) > embeddingInputLimit {
		return string(runes[:embeddingInputLimit])
	}
	return text
}
