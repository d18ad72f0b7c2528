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


package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/masterhudini/ainews/core"
	"github.com/masterhudini/ainews/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend *Backend
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	return &ArticleRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ArticleRepository has no resources to release.
func (r *ArticleRepository) Close() error {
	return nil
}

// AddArticle stores a new article.
func (r *ArticleRepository) AddArticle(ctx context.Context, article *core.Article) (*core.Article, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Enforce URL uniqueness
		urlKey := makeArticleURLKey(article.URL)
		_, err := tx.Get(urlKey)
		if err == nil {
			return storage.ErrDuplicateURL
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if article.FetchedAt.IsZero() {
			article.FetchedAt = time.Now().UTC()
		}

		// Store primary record
		key := makeArticleKey(article.Id)
		value := storage.MarshalArticle(article)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update URL index
		if err := tx.Set(urlKey, storage.MarshalID(article.Id)); err != nil {
			return err
		}

		// Update date index
		dateKey := makeArticleDateKey(indexTime(article), article.Id)
		if err := tx.Set(dateKey, storage.MarshalID(article.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return article, err
}

// UpdateArticles overwrites existing articles in place.
func (r *ArticleRepository) UpdateArticles(ctx context.Context, articles ...*core.Article) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			key := makeArticleKey(article.Id)

			// Read old record to detect index changes
			old, err := r.readArticle(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			value := storage.MarshalArticle(article)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update date index if the effective timestamp changed
			oldTime, newTime := indexTime(old), indexTime(article)
			if !oldTime.Equal(newTime) {
				if err := tx.Delete(makeArticleDateKey(oldTime, old.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeArticleDateKey(newTime, article.Id), storage.MarshalID(article.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a single article by ID.
func (r *ArticleRepository) GetArticle(ctx context.Context, id core.ID) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeArticleKey(id)
		var err error
		result, err = r.readArticle(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetArticles retrieves multiple articles by their IDs.
func (r *ArticleRepository) GetArticles(ctx context.Context, ids ...core.ID) ([]*core.Article, error) {
	var result []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeArticleKey(id)
			article, err := r.readArticle(tx, key)
			if err != nil {
				return err
			}
			if article != nil {
				result = append(result, article)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetArticleByURL retrieves an article by its canonical URL.
func (r *ArticleRepository) GetArticleByURL(ctx context.Context, url string) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleURLKey(url))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readArticle(tx, makeArticleKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecentArticles retrieves the N most recent articles ordered by time descending.
func (r *ArticleRepository) GetRecentArticles(ctx context.Context, limit int) ([]*core.Article, error) {
	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent articles first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key in the date index
		startKey := makePartialArticleDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))

		prefix := []byte(articleDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()

			// Check if we're still in the date index
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Read the ID from the index
			var articleID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				articleID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full article
			article, err := r.readArticle(tx, makeArticleKey(articleID))
			if err != nil {
				return err
			}
			if article != nil {
				results = append(results, article)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// GetArticlesByDateRange retrieves articles published within a time range.
func (r *ArticleRepository) GetArticlesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Article, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialArticleDateKey(start)
		endKey := makePartialArticleDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var articleID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				articleID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			article, err := r.readArticle(tx, makeArticleKey(articleID))
			if err != nil {
				return err
			}
			if article != nil {
				results = append(results, article)
			}
		}
		return nil
	}, false)

	return results, err
}

// ForEachArticle calls fn for every stored article.
func (r *ArticleRepository) ForEachArticle(ctx context.Context, fn func(*core.Article) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(articleRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()

			// Stop if we've moved past primary article keys
			if !hasPrefix(key, prefix) {
				break
			}

			if err := ctx.Err(); err != nil {
				return err
			}

			var article *core.Article
			if err := item.Value(func(val []byte) error {
				var err error
				article, err = storage.UnmarshalArticle(val)
				return err
			}); err != nil {
				return err
			}
			if article == nil {
				continue
			}
			if err := fn(article); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Helper methods

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}

// indexTime returns the timestamp used for the date index, falling back to
// the fetch time when the source did not report a publication time.
func indexTime(article *core.Article) time.Time {
	if !article.Published.IsZero() {
		return article.Published
	}
	return article.FetchedAt
}

// readArticle reads an article from the transaction.
func (r *ArticleRepository) readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		article, unmarshalErr = storage.UnmarshalArticle(val)
		return unmarshalErr
	})
	return article, err
}
