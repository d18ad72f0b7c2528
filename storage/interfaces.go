package storage

import (
	"context"
	"time"

	"github.com/masterhudini/ainews/core"
)

// ArticleRepository provides operations for managing stored articles.
// Implementations must be thread-safe and support concurrent access.
type ArticleRepository interface {
	// AddArticle stores a new article.
	// Sets FetchedAt to now if not already set.
	// Returns ErrDuplicateURL if an article with the same URL already exists.
	AddArticle(ctx context.Context, article *core.Article) (*core.Article, error)

	// UpdateArticles overwrites existing articles in place.
	// Returns ErrNotFound if any article doesn't exist.
	UpdateArticles(ctx context.Context, articles ...*core.Article) error

	// GetArticle retrieves a single article by ID.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, id core.ID) (*core.Article, error)

	// GetArticles retrieves multiple articles by their IDs.
	// Returns only the articles that exist (no error for missing articles).
	GetArticles(ctx context.Context, ids ...core.ID) ([]*core.Article, error)

	// GetArticleByURL retrieves an article by its canonical URL.
	// Returns ErrNotFound if no article with that URL exists.
	GetArticleByURL(ctx context.Context, url string) (*core.Article, error)

	// GetRecentArticles retrieves the N most recent articles ordered by
	// publication time descending. Returns up to limit articles.
	GetRecentArticles(ctx context.Context, limit int) ([]*core.Article, error)

	// GetArticlesByDateRange retrieves articles published within a time range.
	// Returns articles where start <= published < end, ordered by time.
	GetArticlesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Article, error)

	// ForEachArticle calls fn for every stored article.
	// Iteration stops early if fn returns an error, which is propagated.
	ForEachArticle(ctx context.Context, fn func(*core.Article) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// DedupIndex maintains the fingerprint and vector indices used by
// duplicate detection. Implementations must be thread-safe.
type DedupIndex interface {
	// HasFingerprint reports whether the fingerprint is registered.
	// When it is, the ID of the owning article is returned.
	HasFingerprint(ctx context.Context, fp core.Fingerprint) (core.ID, bool, error)

	// SearchVectors finds the stored vectors most similar to the given one.
	// Returns up to limit neighbors ordered by similarity score (highest first).
	SearchVectors(ctx context.Context, vector []float32, limit int) ([]core.Neighbor, error)

	// RegisterUnique atomically registers a fingerprint and its embedding
	// vector for an article. Returns ErrDuplicateFingerprint if the
	// fingerprint was registered concurrently.
	RegisterUnique(ctx context.Context, id core.ID, fp core.Fingerprint, vector []float32) error

	// UpsertVector replaces the stored embedding vector for an article.
	UpsertVector(ctx context.Context, id core.ID, vector []float32) error

	// Close closes the index and releases resources.
	Close() error
}
