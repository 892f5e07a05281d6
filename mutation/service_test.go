package mutation

import (
	"context"
	"testing"

	"github.com/poiesic/weave/ai/mock"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
	"github.com/poiesic/weave/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mutationEnv struct {
	service  *Service
	graph    storage.GraphStore
	vectors  storage.VectorIndex
	embedder *mock.MockEmbedder
}

func newMutationEnv(t *testing.T) (*mutationEnv, func()) {
	t.Helper()

	vectors, graph, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)

	provider := mock.NewMockProvider()
	service, err := NewService(graph, vectors, provider)
	require.NoError(t, err)

	env := &mutationEnv{
		service:  service,
		graph:    graph,
		vectors:  vectors,
		embedder: provider.(*mock.MockProvider).GetMockEmbedder(),
	}
	cleanup := func() {
		graph.Close()
		vectors.Close()
		backend.Close()
	}
	return env, cleanup
}

func (env *mutationEnv) addChunk(t *testing.T, id, text string, vec []float32) *core.Chunk {
	t.Helper()

	ctx := context.Background()
	vid, err := env.vectors.Add(ctx, id, vec)
	require.NoError(t, err)

	chunk := &core.Chunk{Id: id, Text: text, VectorID: vid}
	require.NoError(t, env.graph.UpsertChunkNode(ctx, chunk))
	return chunk
}

func strPtr(s string) *string { return &s }

func TestNewServiceValidation(t *testing.T) {
	vectors, graph, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { graph.Close(); vectors.Close(); backend.Close() }()

	provider := mock.NewMockProvider()

	_, err = NewService(nil, vectors, provider)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)

	_, err = NewService(graph, nil, provider)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)

	_, err = NewService(graph, vectors, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestGetNodeAndChunk(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "some text", []float32{1, 0})

	node, err := env.service.GetNode(ctx, "chunk-1")
	require.NoError(t, err)
	assert.Equal(t, core.NodeKindChunk, node.Kind)

	chunk, err := env.service.GetChunk(ctx, "chunk-1")
	require.NoError(t, err)
	assert.Equal(t, "some text", chunk.Text)

	_, err = env.service.GetNode(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = env.service.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateChunkTextReembeds(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	chunk := env.addChunk(t, "chunk-1", "old text", []float32{1, 0})

	env.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 1}, nil
	}

	updated, err := env.service.UpdateChunk(ctx, "chunk-1", &ChunkPatch{Text: strPtr("new text")})
	require.NoError(t, err)
	assert.Equal(t, "new text", updated.Text)
	assert.Equal(t, chunk.VectorID, updated.VectorID)
	assert.Equal(t, 1, env.embedder.CallCount())

	// The index now holds the new embedding under the same vector id
	matches, err := env.vectors.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, len(matches))
	assert.Equal(t, chunk.VectorID, matches[0].VectorID)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-6)

	// The graph node carries the new text
	stored, err := env.service.GetChunk(ctx, "chunk-1")
	require.NoError(t, err)
	assert.Equal(t, "new text", stored.Text)
}

func TestUpdateChunkWithoutTextChangeSkipsReembed(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "same text", []float32{1, 0})

	_, err := env.service.UpdateChunk(ctx, "chunk-1", &ChunkPatch{Title: strPtr("new title")})
	require.NoError(t, err)
	assert.Equal(t, 0, env.embedder.CallCount())

	stored, err := env.service.GetChunk(ctx, "chunk-1")
	require.NoError(t, err)
	assert.Equal(t, "new title", stored.Title)
	assert.Equal(t, "same text", stored.Text)
}

func TestUpdateChunkValidation(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "text", []float32{1, 0})

	_, err := env.service.UpdateChunk(ctx, "chunk-1", nil)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = env.service.UpdateChunk(ctx, "chunk-1", &ChunkPatch{Text: strPtr("")})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = env.service.UpdateChunk(ctx, "missing", &ChunkPatch{Text: strPtr("x")})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteChunkRemovesVectorEntry(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	chunk := env.addChunk(t, "chunk-1", "text", []float32{1, 0})

	// The mapping exists before deletion
	docID, err := env.vectors.DocID(ctx, chunk.VectorID)
	require.NoError(t, err)
	assert.Equal(t, "chunk-1", docID)

	require.NoError(t, env.service.DeleteNode(ctx, "chunk-1"))

	// Node, vector entry, and mapping are all gone
	_, err = env.service.GetChunk(ctx, "chunk-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = env.vectors.DocID(ctx, chunk.VectorID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = env.vectors.VectorID(ctx, "chunk-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteChunkCascadesEdges(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "one", []float32{1, 0})
	env.addChunk(t, "chunk-2", "two", []float32{0, 1})
	require.NoError(t, env.graph.UpsertEdge(ctx, &core.EdgeInput{
		SourceID: "chunk-1", TargetID: "chunk-2", Type: core.EdgeTypeRelated, Weight: 0.9,
	}))

	require.NoError(t, env.service.DeleteNode(ctx, "chunk-1"))

	edges, err := env.graph.IncidentEdges(ctx, "chunk-2")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestDeleteMissingNode(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	err := env.service.DeleteNode(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateEdge(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "one", []float32{1, 0})
	entity, err := env.service.CreateEntity(ctx, "Acme", "ORG")
	require.NoError(t, err)

	edge, err := env.service.CreateEdge(ctx, &core.EdgeInput{
		SourceID: "chunk-1",
		TargetID: entity.Id,
		Type:     core.EdgeTypeMentions,
	})
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, core.DefaultEdgeWeight, edge.Weight)

	fetched, err := env.service.GetEdge(ctx, "chunk-1", entity.Id, core.EdgeTypeMentions)
	require.NoError(t, err)
	assert.Equal(t, edge.Weight, fetched.Weight)
}

func TestCreateEdgeMissingEndpoint(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "one", []float32{1, 0})

	edge, err := env.service.CreateEdge(ctx, &core.EdgeInput{
		SourceID: "chunk-1",
		TargetID: "missing",
		Type:     core.EdgeTypeRelated,
		Weight:   0.9,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Nil(t, edge)

	// Nothing was written
	_, err = env.graph.GetEdge(ctx, "chunk-1", "missing", core.EdgeTypeRelated)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateEdgeInvalidType(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "one", []float32{1, 0})
	env.addChunk(t, "chunk-2", "two", []float32{0, 1})

	_, err := env.service.CreateEdge(ctx, &core.EdgeInput{
		SourceID: "chunk-1",
		TargetID: "chunk-2",
		Type:     "RELATED TO",
	})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestDeleteEdge(t *testing.T) {
	env, cleanup := newMutationEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "one", []float32{1, 0})
	env.addChunk(t, "chunk-2", "two", []float32{0, 1})

	_, err := env.service.CreateEdge(ctx, &core.EdgeInput{
		SourceID: "chunk-1", TargetID: "chunk-2", Type: core.EdgeTypeRelated, Weight: 0.9,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteEdge(ctx, "chunk-1", "chunk-2", core.EdgeTypeRelated))

	err = env.service.DeleteEdge(ctx, "chunk-1", "chunk-2", core.EdgeTypeRelated)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
