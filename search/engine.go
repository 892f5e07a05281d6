package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/weave/ai"
	"github.com/poiesic/weave/core"
	"github.com/poiesic/weave/storage"
)

// Engine provides vector, graph, and hybrid search over the chunk graph.
type Engine struct {
	graph     storage.GraphStore
	vectors   storage.VectorIndex
	embedder  ai.Embedder
	extractor ai.EntityExtractor
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(
	graph storage.GraphStore,
	vectors storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Engine, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		graph:     graph,
		vectors:   vectors,
		embedder:  provider.Embedder(),
		extractor: provider.EntityExtractor(),
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// VectorSearch encodes the query, finds the nearest chunks in the vector
// index, and hydrates each hit from the graph. Hits whose chunk node is
// missing are dropped silently; the index similarity is kept as the score.
func (e *Engine) VectorSearch(ctx context.Context, query string, topK int) ([]*core.SearchResult, error) {
	if topK < 1 {
		return []*core.SearchResult{}, nil
	}

	embedding, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrDependency, err)
	}

	matches, err := e.vectors.Search(ctx, embedding, topK)
	if err != nil {
		e.logger.Error("error querying vector index", "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		if match.VectorID < 0 {
			continue
		}
		chunk, err := e.graph.GetChunkNode(ctx, match.DocID)
		if errors.Is(err, storage.ErrNotFound) {
			// Stale index entry without a graph node
			e.logger.Debug("dropping unmapped vector hit", "docID", match.DocID)
			continue
		}
		if err != nil {
			return nil, err
		}

		results = append(results, &core.SearchResult{
			Id:       chunk.Id,
			Text:     chunk.Text,
			Score:    float64(match.Score),
			Metadata: chunk.Metadata,
		})
	}

	return results, nil
}

// GraphSearch returns the subgraph reachable from startID within depth hops,
// optionally restricted to the given relationship types. A depth of zero
// returns only the start node. Traversal is cycle-safe and nodes and edges
// are returned exactly once.
func (e *Engine) GraphSearch(ctx context.Context, startID string, depth int, edgeTypes []string) (*core.Subgraph, error) {
	subgraph, err := e.graph.Traverse(ctx, startID, depth, edgeTypes)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: start node %q", core.ErrNotFound, startID)
		}
		return nil, err
	}
	return subgraph, nil
}
