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


package reembed

import (
	"context"
	"errors"

	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

const (
	// DefaultBatchSize is the default number of chunks to fetch in each batch
	DefaultBatchSize = 100
)

// ChunkIterator iterates over all chunk nodes in the graph in batches.
type ChunkIterator struct {
	graph     storage.GraphStore
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks to load in each batch (must be > 0)
func NewChunkIterator(graph storage.GraphStore, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		graph:     graph,
		batchSize: batchSize,
	}
}

// Count returns the number of chunk nodes in the graph.
func (it *ChunkIterator) Count(ctx context.Context) (int, error) {
	ids, err := it.graph.ChunkIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// ForEach iterates over all chunks, calling fn for each batch.
// Iteration stops on first error from fn or when all chunks are processed.
// Context cancellation is checked between batches. Chunks deleted between
// listing and loading are skipped.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	ids, err := it.graph.ChunkIDs(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		return nil
	}

	for i := 0; i < len(ids); i += it.batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := i + it.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch := make([]*core.Chunk, 0, end-i)
		for _, id := range ids[i:end] {
			chunk, err := it.graph.GetChunkNode(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			batch = append(batch, chunk)
		}

		if len(batch) == 0 {
			continue
		}
		if err := fn(batch); err != nil {
			return err
		}
	}

	return nil
}
