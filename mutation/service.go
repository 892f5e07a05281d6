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


package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

// Service provides direct node and edge CRUD on the chunk graph. It owns the
// two invariants that keep the stores aligned: editing a chunk's text
// re-embeds it and updates its vector entry, and deleting a chunk removes its
// vector entry along with its incident edges.
type Service struct {
	graph    storage.GraphStore
	vectors  storage.VectorIndex
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a new mutation service.
func NewService(
	graph storage.GraphStore,
	vectors storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Service, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Service{
		graph:    graph,
		vectors:  vectors,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ChunkPatch describes a partial chunk update. Nil fields are left unchanged.
type ChunkPatch struct {
	Text     *string
	Title    *string
	Metadata map[string]string
}

// GetNode returns the chunk or entity node with the given id.
func (s *Service) GetNode(ctx context.Context, id string) (*core.Node, error) {
	node, err := s.graph.GetNode(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: node %q", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

// GetChunk returns the chunk with the given id.
func (s *Service) GetChunk(ctx context.Context, id string) (*core.Chunk, error) {
	chunk, err := s.graph.GetChunkNode(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: chunk %q", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// CreateEntity upserts an entity node deduplicated by (name, type).
func (s *Service) CreateEntity(ctx context.Context, name, entityType string) (*core.Entity, error) {
	return s.graph.GetOrCreateEntity(ctx, name, entityType)
}

// UpdateChunk applies a partial update to a chunk. When the patch changes the
// chunk's text, the chunk is re-embedded and its vector entry replaced before
// the graph node is written, so the index never serves the stale embedding
// under the chunk's id.
func (s *Service) UpdateChunk(ctx context.Context, id string, patch *ChunkPatch) (*core.Chunk, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: patch is nil", core.ErrValidation)
	}

	chunk, err := s.GetChunk(ctx, id)
	if err != nil {
		return nil, err
	}

	textChanged := patch.Text != nil && *patch.Text != chunk.Text
	if patch.Text != nil {
		if *patch.Text == "" {
			return nil, fmt.Errorf("%w: %w", core.ErrValidation, core.ErrEmptyText)
		}
		chunk.Text = *patch.Text
	}
	if patch.Title != nil {
		chunk.Title = *patch.Title
	}
	if patch.Metadata != nil {
		chunk.Metadata = patch.Metadata
	}
	chunk.UpdatedAt = time.Now().UTC()

	if textChanged && chunk.VectorID != core.NoVector {
		embedding, err := s.embedder.EmbedText(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding failed: %w", core.ErrDependency, err)
		}
		if err := s.vectors.UpdateDocument(ctx, chunk.VectorID, embedding); err != nil {
			return nil, err
		}
	}

	if err := s.graph.UpsertChunkNode(ctx, chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

// DeleteNode deletes a chunk or entity node and all its incident edges.
// Deleting a chunk also removes its vector entry; the chunk and the entry
// never exist without each other.
func (s *Service) DeleteNode(ctx context.Context, id string) error {
	node, err := s.graph.GetNode(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: node %q", core.ErrNotFound, id)
	}
	if err != nil {
		return err
	}

	if node.Kind == core.NodeKindChunk && node.Chunk.VectorID != core.NoVector {
		if err := s.vectors.RemoveDocument(ctx, node.Chunk.VectorID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}

	return s.graph.DeleteNode(ctx, id)
}

// CreateEdge creates or updates a typed, weighted edge. A missing endpoint
// yields a not-found result rather than a created edge; the check runs before
// the write so no half-dangling edge is ever stored.
func (s *Service) CreateEdge(ctx context.Context, input *core.EdgeInput) (*core.Edge, error) {
	if err := core.ValidateEdgeInput(input); err != nil {
		return nil, err
	}

	for _, endpoint := range []string{input.SourceID, input.TargetID} {
		if _, err := s.graph.GetNode(ctx, endpoint); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: endpoint %q", core.ErrNotFound, endpoint)
			}
			return nil, err
		}
	}

	if input.Weight == 0 {
		input.Weight = core.DefaultEdgeWeight
	}

	if err := s.graph.UpsertEdge(ctx, input); err != nil {
		return nil, err
	}
	return s.GetEdge(ctx, input.SourceID, input.TargetID, input.Type)
}

// GetEdge returns the edge identified by (sourceID, targetID, edgeType).
func (s *Service) GetEdge(ctx context.Context, sourceID, targetID, edgeType string) (*core.Edge, error) {
	edge, err := s.graph.GetEdge(ctx, sourceID, targetID, edgeType)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: edge %s-[%s]->%s", core.ErrNotFound, sourceID, edgeType, targetID)
	}
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// DeleteEdge removes the edge identified by (sourceID, targetID, edgeType).
func (s *Service) DeleteEdge(ctx context.Context, sourceID, targetID, edgeType string) error {
	err := s.graph.DeleteEdge(ctx, sourceID, targetID, edgeType)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: edge %s-[%s]->%s", core.ErrNotFound, sourceID, edgeType, targetID)
	}
	return err
}
