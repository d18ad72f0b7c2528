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

package ainews

import (
	"log/slog"

	"github.com/masterhudini/ainews/ai"
	"github.com/masterhudini/ainews/ai/openai"
	"github.com/masterhudini/ainews/ingest"
	"github.com/masterhudini/ainews/search"
	"github.com/masterhudini/ainews/sources"
	"github.com/masterhudini/ainews/storage"
	"github.com/masterhudini/ainews/storage/badger"
)

type Database struct {
	backend    *badger.Backend
	articles   storage.ArticleRepository
	dedupIndex storage.DedupIndex
	provider   ai.Provider
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig overrides the default AI service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built provider, bypassing the OpenAI one.
func WithAIProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create article repository
	articles, err := badger.NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create dedup index
	dedupIndex, err := badger.NewDedupIndex(backend)
	if err != nil {
		articles.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings unless one was injected
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			dedupIndex.Close()
			articles.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:    backend,
		articles:   articles,
		dedupIndex: dedupIndex,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.dedupIndex.Close(); err != nil {
		db.logger.Error("error closing dedup index", "err", err)
		return err
	}
	if err := db.articles.Close(); err != nil {
		db.logger.Error("error closing article repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ArticleRepository() storage.ArticleRepository {
	return db.articles
}

func (db *Database) DedupIndex() storage.DedupIndex {
	return db.dedupIndex
}

func (db *Database) NewOrchestrator(registry *sources.Registry, opts ...ingest.Option) (*ingest.Orchestrator, error) {
	return ingest.NewOrchestrator(registry, db.articles, db.dedupIndex, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.articles, db.dedupIndex, db.provider, opts...)
}
