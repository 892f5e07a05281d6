// Copyright 2025 Poiesic Systems
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
	"encoding/binary"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

// VectorIndex implements storage.VectorIndex for BadgerDB.
//
// The index is flat: search scans every entry and scores it by dot product.
// Vector IDs come from a BadgerDB sequence, so an ID is never reassigned
// within the lifetime of the database, removed or not.
type VectorIndex struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex on the given backend.
func NewVectorIndex(backend *Backend) (*VectorIndex, error) {
	seq, err := backend.GetSequence(vectorIDSeq)
	if err != nil {
		return nil, err
	}
	return &VectorIndex{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the ID sequence.
func (v *VectorIndex) Close() error {
	return v.seq.Release()
}

// WithTransaction delegates to the backend.
func (v *VectorIndex) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return v.backend.WithTransaction(ctx, fn)
}

// Add inserts an embedding for a document and returns the assigned vector ID.
func (v *VectorIndex) Add(ctx context.Context, docID string, embedding []float32) (int64, error) {
	next, err := v.seq.Next()
	if err != nil {
		return core.NoVector, err
	}
	vectorID := int64(next)

	err = v.backend.WithTx(func(tx *badger.Txn) error {
		docKey := makeVectorDocKey(docID)
		if _, err := tx.Get(docKey); err == nil {
			return storage.ErrDuplicateKey
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		entry := &core.VectorEntry{
			VectorID:  vectorID,
			DocID:     docID,
			Embedding: embedding,
		}
		if err := tx.Set(makeVectorKey(vectorID), storage.MarshalVectorEntry(entry)); err != nil {
			return err
		}

		var vidBytes [8]byte
		binary.BigEndian.PutUint64(vidBytes[:], uint64(vectorID))
		if err := tx.Set(docKey, vidBytes[:]); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return core.NoVector, err
	}
	return vectorID, nil
}

// Search returns up to topK entries closest to the query embedding.
func (v *VectorIndex) Search(ctx context.Context, query []float32, topK int) ([]*core.VectorMatch, error) {
	if topK <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.VectorMatch
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.VectorEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Embedding) == 0 {
				continue
			}

			results = append(results, &core.VectorMatch{
				VectorID: entry.VectorID,
				DocID:    entry.DocID,
				Score:    dotProduct(query, entry.Embedding),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// UpdateDocument replaces the embedding stored under an existing vector ID.
func (v *VectorIndex) UpdateDocument(ctx context.Context, vectorID int64, embedding []float32) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorKey(vectorID)
		entry, err := readVectorEntry(tx, key)
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrNotFound
		}

		entry.Embedding = embedding
		if err := tx.Set(key, storage.MarshalVectorEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RemoveDocument deletes the entry for a vector ID and its document mapping.
func (v *VectorIndex) RemoveDocument(ctx context.Context, vectorID int64) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorKey(vectorID)
		entry, err := readVectorEntry(tx, key)
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		if err := tx.Delete(makeVectorDocKey(entry.DocID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DocID resolves a vector ID to its document ID.
func (v *VectorIndex) DocID(ctx context.Context, vectorID int64) (string, error) {
	var docID string
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := readVectorEntry(tx, makeVectorKey(vectorID))
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrNotFound
		}
		docID = entry.DocID
		return nil
	}, false)
	return docID, err
}

// VectorID resolves a document ID to its vector ID.
func (v *VectorIndex) VectorID(ctx context.Context, docID string) (int64, error) {
	vectorID := core.NoVector
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorDocKey(docID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return storage.ErrTruncatedData
			}
			vectorID = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	}, false)
	return vectorID, err
}

// Count returns the number of live entries in the index.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	count := 0
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readVectorEntry reads a vector entry from the transaction.
func readVectorEntry(tx *badger.Txn, key []byte) (*core.VectorEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.VectorEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalVectorEntry(val)
		return err
	})
	return entry, err
}
