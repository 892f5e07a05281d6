package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

// BatchProcessor regenerates embeddings for batches of chunks and writes
// them back into the vector index under the chunks' existing vector ids.
type BatchProcessor struct {
	graph          storage.GraphStore
	vectors        storage.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(graph storage.GraphStore, vectors storage.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		graph:          graph,
		vectors:        vectors,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of chunks and updates the vector
// index. Vectors are normalized after embedding to ensure compatibility with
// cosine similarity. Chunks that never got a vector id are assigned one.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	for i, chunk := range chunks {
		embedding := NormalizeVector(embeddings[i])

		if chunk.VectorID == core.NoVector {
			vid, err := bp.vectors.Add(ctx, chunk.Id, embedding)
			if err != nil {
				return fmt.Errorf("failed to index chunk %s: %w", chunk.Id, err)
			}
			chunk.VectorID = vid
			if err := bp.graph.UpsertChunkNode(ctx, chunk); err != nil {
				return fmt.Errorf("failed to update chunk %s: %w", chunk.Id, err)
			}
			continue
		}

		if err := bp.vectors.UpdateDocument(ctx, chunk.VectorID, embedding); err != nil {
			return fmt.Errorf("failed to update vector %d: %w", chunk.VectorID, err)
		}
	}

	return nil
}
