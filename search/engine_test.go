package search

import (
	"context"
	"testing"

	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/ai/mock"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
	"github.com/poiesic/weave/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchEnv struct {
	engine    *Engine
	graph     storage.GraphStore
	vectors   storage.VectorIndex
	embedder  *mock.MockEmbedder
	extractor *mock.MockEntityExtractor
}

func newSearchEnv(t *testing.T) (*searchEnv, func()) {
	t.Helper()

	vectors, graph, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	extractor := mock.NewMockEntityExtractor()
	// Queries carry no entities unless a test injects them
	extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return nil, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, extractor)

	engine, err := NewEngine(graph, vectors, provider)
	require.NoError(t, err)

	env := &searchEnv{
		engine:    engine,
		graph:     graph,
		vectors:   vectors,
		embedder:  embedder,
		extractor: extractor,
	}
	cleanup := func() {
		graph.Close()
		vectors.Close()
		backend.Close()
	}
	return env, cleanup
}

// addChunk registers a chunk in both stores, the way ingestion would.
func (env *searchEnv) addChunk(t *testing.T, id, text string, vec []float32) *core.Chunk {
	t.Helper()

	ctx := context.Background()
	vid, err := env.vectors.Add(ctx, id, vec)
	require.NoError(t, err)

	chunk := &core.Chunk{Id: id, Text: text, VectorID: vid}
	require.NoError(t, env.graph.UpsertChunkNode(ctx, chunk))
	return chunk
}

// queryVec pins the embedding the engine computes for query texts.
func (env *searchEnv) queryVec(vec []float32) {
	env.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vec, nil
	}
}

// queryEntities pins the entities extracted from query texts.
func (env *searchEnv) queryEntities(names ...string) {
	env.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		entities := make([]ai.ExtractedEntity, len(names))
		for i, name := range names {
			entities[i] = ai.ExtractedEntity{Name: name, Type: "ORG"}
		}
		return entities, nil
	}
}

func subgraphNodeIDs(subgraph *core.Subgraph) []string {
	ids := make([]string, 0, len(subgraph.Nodes))
	for _, node := range subgraph.Nodes {
		ids = append(ids, node.ID())
	}
	return ids
}

func TestNewEngineValidation(t *testing.T) {
	vectors, graph, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() { graph.Close(); vectors.Close(); backend.Close() }()

	provider := mock.NewMockProvider()

	_, err = NewEngine(nil, vectors, provider)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)

	_, err = NewEngine(graph, nil, provider)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)

	_, err = NewEngine(graph, vectors, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestVectorSearchExactMatch(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	env.addChunk(t, "chunk-a", "the target text", []float32{1, 0, 0})
	env.addChunk(t, "chunk-b", "something else", []float32{0, 1, 0})
	env.queryVec([]float32{1, 0, 0})

	results, err := env.engine.VectorSearch(context.Background(), "the target text", 1)
	require.NoError(t, err)
	require.Equal(t, 1, len(results))
	assert.Equal(t, "chunk-a", results[0].Id)
	assert.Equal(t, "the target text", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestVectorSearchRanksBySimilarity(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	env.addChunk(t, "chunk-near", "near", []float32{0.9, 0.1})
	env.addChunk(t, "chunk-far", "far", []float32{0.1, 0.9})
	env.queryVec([]float32{1, 0})

	results, err := env.engine.VectorSearch(context.Background(), "near things", 2)
	require.NoError(t, err)
	require.Equal(t, 2, len(results))
	assert.Equal(t, "chunk-near", results[0].Id)
	assert.Equal(t, "chunk-far", results[1].Id)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestVectorSearchDropsUnmappedHits(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	// A vector entry with no chunk node behind it
	_, err := env.vectors.Add(context.Background(), "ghost", []float32{1, 0})
	require.NoError(t, err)
	env.addChunk(t, "chunk-real", "real", []float32{0.9, 0})
	env.queryVec([]float32{1, 0})

	results, err := env.engine.VectorSearch(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Equal(t, 1, len(results))
	assert.Equal(t, "chunk-real", results[0].Id)
}

func TestVectorSearchZeroTopK(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	results, err := env.engine.VectorSearch(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGraphSearchRelationshipFiltering(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "a", "a", []float32{1, 0})
	env.addChunk(t, "b", "b", []float32{0, 1})
	env.addChunk(t, "c", "c", []float32{1, 1})

	require.NoError(t, env.graph.UpsertEdge(ctx, &core.EdgeInput{
		SourceID: "a", TargetID: "b", Type: "FRIEND", Weight: 1.0,
	}))
	require.NoError(t, env.graph.UpsertEdge(ctx, &core.EdgeInput{
		SourceID: "b", TargetID: "c", Type: "COLLEAGUE", Weight: 1.0,
	}))

	// Unfiltered traversal reaches c
	subgraph, err := env.engine.GraphSearch(ctx, "a", 2, nil)
	require.NoError(t, err)
	assert.Contains(t, subgraphNodeIDs(subgraph), "c")

	// FRIEND-only traversal stops at b
	subgraph, err = env.engine.GraphSearch(ctx, "a", 2, []string{"FRIEND"})
	require.NoError(t, err)
	assert.NotContains(t, subgraphNodeIDs(subgraph), "c")
	assert.Contains(t, subgraphNodeIDs(subgraph), "b")

	// Widening the filter reaches c again
	subgraph, err = env.engine.GraphSearch(ctx, "a", 2, []string{"FRIEND", "COLLEAGUE"})
	require.NoError(t, err)
	assert.Contains(t, subgraphNodeIDs(subgraph), "c")
}

func TestGraphSearchDepthZero(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "a", "a", []float32{1, 0})
	env.addChunk(t, "b", "b", []float32{0, 1})
	require.NoError(t, env.graph.UpsertEdge(ctx, &core.EdgeInput{
		SourceID: "a", TargetID: "b", Type: core.EdgeTypeRelated, Weight: 0.9,
	}))

	subgraph, err := env.engine.GraphSearch(ctx, "a", 0, nil)
	require.NoError(t, err)
	require.Equal(t, 1, len(subgraph.Nodes))
	assert.Equal(t, "a", subgraph.Nodes[0].ID())
	assert.Empty(t, subgraph.Edges)
}

func TestGraphSearchCycleTermination(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "a", "a", []float32{1, 0})
	env.addChunk(t, "b", "b", []float32{0, 1})
	env.addChunk(t, "c", "c", []float32{1, 1})
	for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		require.NoError(t, env.graph.UpsertEdge(ctx, &core.EdgeInput{
			SourceID: pair[0], TargetID: pair[1], Type: "CYCLE_LINK", Weight: 1.0,
		}))
	}

	subgraph, err := env.engine.GraphSearch(ctx, "a", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, len(subgraph.Nodes))
	assert.Equal(t, 3, len(subgraph.Edges))
}

func TestGraphSearchMissingStart(t *testing.T) {
	env, cleanup := newSearchEnv(t)
	defer cleanup()

	_, err := env.engine.GraphSearch(context.Background(), "nope", 2, nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
