package reembed

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/poiesic/weave/ai/mock"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
	"github.com/poiesic/weave/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reembedEnv struct {
	graph    storage.GraphStore
	vectors  storage.VectorIndex
	embedder *mock.MockEmbedder
}

func newReembedEnv(t *testing.T) (*reembedEnv, func()) {
	t.Helper()

	vectors, graph, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)

	env := &reembedEnv{
		graph:    graph,
		vectors:  vectors,
		embedder: mock.NewMockEmbedder(),
	}
	cleanup := func() {
		graph.Close()
		vectors.Close()
		backend.Close()
	}
	return env, cleanup
}

func (env *reembedEnv) addChunk(t *testing.T, id, text string, vec []float32) *core.Chunk {
	t.Helper()

	ctx := context.Background()
	chunk := &core.Chunk{Id: id, Text: text, VectorID: core.NoVector}
	if vec != nil {
		vid, err := env.vectors.Add(ctx, id, vec)
		require.NoError(t, err)
		chunk.VectorID = vid
	}
	require.NoError(t, env.graph.UpsertChunkNode(ctx, chunk))
	return chunk
}

func TestReembedderValidation(t *testing.T) {
	env, cleanup := newReembedEnv(t)
	defer cleanup()

	_, err := NewReembedder(nil, env.vectors, env.embedder, nil, io.Discard)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)

	_, err = NewReembedder(env.graph, nil, env.embedder, nil, io.Discard)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)

	_, err = NewReembedder(env.graph, env.vectors, nil, nil, io.Discard)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestReembedderEmptyDatabase(t *testing.T) {
	env, cleanup := newReembedEnv(t)
	defer cleanup()

	reembedder, err := NewReembedder(env.graph, env.vectors, env.embedder, nil, io.Discard)
	require.NoError(t, err)
	require.NoError(t, reembedder.Run(context.Background()))
}

func TestReembedderReplacesEmbeddings(t *testing.T) {
	env, cleanup := newReembedEnv(t)
	defer cleanup()

	ctx := context.Background()
	chunk := env.addChunk(t, "chunk-1", "some text", []float32{1, 0})

	// The new model embeds everything along the second axis
	env.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embeddings := make([][]float32, len(texts))
		for i := range texts {
			embeddings[i] = []float32{0, 1}
		}
		return embeddings, nil
	}

	reembedder, err := NewReembedder(env.graph, env.vectors, env.embedder, nil, io.Discard)
	require.NoError(t, err)
	require.NoError(t, reembedder.Run(ctx))

	// The index serves the new embedding under the old vector id
	matches, err := env.vectors.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, len(matches))
	assert.Equal(t, chunk.VectorID, matches[0].VectorID)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-6)
}

func TestReembedderIndexesUnembeddedChunks(t *testing.T) {
	env, cleanup := newReembedEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.addChunk(t, "chunk-1", "never embedded", nil)

	env.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embeddings := make([][]float32, len(texts))
		for i := range texts {
			embeddings[i] = []float32{1, 0}
		}
		return embeddings, nil
	}

	reembedder, err := NewReembedder(env.graph, env.vectors, env.embedder, nil, io.Discard)
	require.NoError(t, err)
	require.NoError(t, reembedder.Run(ctx))

	// The chunk now has a vector id and the mapping resolves
	chunk, err := env.graph.GetChunkNode(ctx, "chunk-1")
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.NotEqual(t, core.NoVector, chunk.VectorID)

	docID, err := env.vectors.DocID(ctx, chunk.VectorID)
	require.NoError(t, err)
	assert.Equal(t, "chunk-1", docID)
}

func TestReembedderPropagatesEmbedderFailure(t *testing.T) {
	env, cleanup := newReembedEnv(t)
	defer cleanup()

	env.addChunk(t, "chunk-1", "text", []float32{1, 0})
	env.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 0

	reembedder, err := NewReembedder(env.graph, env.vectors, env.embedder, config, io.Discard)
	require.NoError(t, err)
	assert.Error(t, reembedder.Run(context.Background()))
}
