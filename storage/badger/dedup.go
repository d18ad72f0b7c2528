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
	"math"
	"slices"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/masterhudini/ainews/core"
	"github.com/masterhudini/ainews/storage"
)

// DedupIndex implements storage.DedupIndex for BadgerDB.
// It maintains two keyspaces: fingerprint digest to article ID, and
// article ID to embedding vector.
type DedupIndex struct {
	backend *Backend
}

var _ storage.DedupIndex = (*DedupIndex)(nil)

// NewDedupIndex creates a new DedupIndex.
func NewDedupIndex(backend *Backend) (*DedupIndex, error) {
	return &DedupIndex{
		backend: backend,
	}, nil
}

// Close releases resources. DedupIndex has no resources to release.
func (d *DedupIndex) Close() error {
	return nil
}

// HasFingerprint reports whether the fingerprint is registered.
func (d *DedupIndex) HasFingerprint(ctx context.Context, fp core.Fingerprint) (core.ID, bool, error) {
	var id core.ID
	var found bool
	err := d.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFingerprintKey(fp))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
	}, false)
	if err != nil {
		return 0, false, err
	}
	return id, found, nil
}

// RegisterUnique atomically registers a fingerprint and its embedding vector.
func (d *DedupIndex) RegisterUnique(ctx context.Context, id core.ID, fp core.Fingerprint, vector []float32) error {
	err := d.backend.WithTx(func(tx *badger.Txn) error {
		fpKey := makeFingerprintKey(fp)

		// A concurrent registration of the same fingerprint loses here
		_, err := tx.Get(fpKey)
		if err == nil {
			return storage.ErrDuplicateFingerprint
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if err := tx.Set(fpKey, storage.MarshalID(id)); err != nil {
			return err
		}
		if err := tx.Set(makeVectorKey(id), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	// Losers of a same-fingerprint commit race surface as transaction
	// conflicts. Report them as duplicates once the winner is visible.
	if err == badger.ErrConflict {
		if _, found, hasErr := d.HasFingerprint(ctx, fp); hasErr == nil && found {
			return storage.ErrDuplicateFingerprint
		}
	}
	return err
}

// UpsertVector replaces the stored embedding vector for an article.
func (d *DedupIndex) UpsertVector(ctx context.Context, id core.ID, vector []float32) error {
	return d.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(id), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// SearchVectors finds the stored vectors most similar to the given one.
// Similarity is cosine similarity computed over the full vector set.
func (d *DedupIndex) SearchVectors(ctx context.Context, vector []float32, limit int) ([]core.Neighbor, error) {
	var results []core.Neighbor

	err := d.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		queryNorm := vectorNorm(vector)
		if queryNorm == 0 {
			return nil
		}

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			id, err := parseVectorKey(item.Key())
			if err != nil {
				return err
			}

			var stored []float32
			if err := item.Value(func(val []byte) error {
				var err error
				stored, err = storage.UnmarshalVector(val)
				return err
			}); err != nil {
				return err
			}
			if len(stored) == 0 {
				continue
			}

			storedNorm := vectorNorm(stored)
			if storedNorm == 0 {
				continue
			}

			score := dotProduct(vector, stored) / (queryNorm * storedNorm)
			results = append(results, core.Neighbor{
				ArticleId: id,
				Score:     score,
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b core.Neighbor) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// parseVectorKey extracts the article ID from a vector index key.
func parseVectorKey(key []byte) (core.ID, error) {
	prefix := vectorPrefix + ":"
	if len(key) <= len(prefix) {
		return 0, storage.ErrSerializationFailed
	}
	raw, err := strconv.ParseUint(string(key[len(prefix):]), 10, 64)
	if err != nil {
		return 0, err
	}
	return core.ID(raw), nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// vectorNorm calculates the Euclidean norm of a vector.
func vectorNorm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
