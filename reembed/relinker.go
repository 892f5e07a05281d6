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
	"fmt"
	"io"

	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

const (
	// DefaultRelinkNeighbors is how many nearest neighbors are considered
	// per chunk when rebuilding semantic edges.
	DefaultRelinkNeighbors = 5

	// DefaultRelinkThreshold is the minimum similarity for a rebuilt
	// RELATED_TO edge.
	DefaultRelinkThreshold = 0.85
)

// Relinker rebuilds the semantic RELATED_TO edges of every chunk from the
// current embeddings. Run it after a Reembedder pass: new embeddings shift
// the similarity landscape, so old semantic edges may point at neighbors
// that are no longer close.
type Relinker struct {
	graph     storage.GraphStore
	vectors   storage.VectorIndex
	embedder  ai.Embedder
	neighbors int
	threshold float64
	progress  io.Writer
	iterator  *ChunkIterator
}

// NewRelinker creates a new relinker with the default neighbor count and
// similarity threshold.
func NewRelinker(graph storage.GraphStore, vectors storage.VectorIndex, embedder ai.Embedder, batchSize int, progress io.Writer) (*Relinker, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	return &Relinker{
		graph:     graph,
		vectors:   vectors,
		embedder:  embedder,
		neighbors: DefaultRelinkNeighbors,
		threshold: DefaultRelinkThreshold,
		progress:  progress,
		iterator:  NewChunkIterator(graph, batchSize),
	}, nil
}

// Run drops the existing semantic edges of every chunk and recreates them
// from the current vector index contents.
func (r *Relinker) Run(ctx context.Context) error {
	totalChunks, err := r.iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	if totalChunks == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Relinking %d chunks (threshold: %.2f)\n", totalChunks, r.threshold)

	relinked := 0
	err = r.iterator.ForEach(ctx, func(chunks []*core.Chunk) error {
		for _, chunk := range chunks {
			if err := r.relinkChunk(ctx, chunk); err != nil {
				return fmt.Errorf("failed to relink chunk %s: %w", chunk.Id, err)
			}
			relinked++
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(r.progress, "Relinking complete. Rebuilt semantic edges for %d chunks\n", relinked)
	return nil
}

func (r *Relinker) relinkChunk(ctx context.Context, chunk *core.Chunk) error {
	// Drop the chunk's current semantic edges in both directions
	edges, err := r.graph.IncidentEdges(ctx, chunk.Id)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		if edge.Type != core.EdgeTypeRelated {
			continue
		}
		if err := r.graph.DeleteEdge(ctx, edge.SourceID, edge.TargetID, edge.Type); err != nil {
			return err
		}
	}

	if chunk.VectorID == core.NoVector {
		return nil
	}

	embedding, err := r.embedder.EmbedText(ctx, chunk.Text)
	if err != nil {
		return fmt.Errorf("%w: embedding failed: %w", core.ErrDependency, err)
	}

	matches, err := r.vectors.Search(ctx, embedding, r.neighbors)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if match.VectorID == chunk.VectorID {
			continue
		}
		if float64(match.Score) <= r.threshold {
			continue
		}

		edge := &core.EdgeInput{
			SourceID: chunk.Id,
			TargetID: match.DocID,
			Type:     core.EdgeTypeRelated,
			Weight:   float64(match.Score),
		}
		if err := r.graph.UpsertEdge(ctx, edge); err != nil {
			return err
		}
	}

	return nil
}
