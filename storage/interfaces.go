package storage

import (
	"context"

	"github.com/poiesic/weave/core"
)

// Store provides common operations shared by all storage components.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorIndex provides nearest-neighbor retrieval over document embeddings.
// It maintains a bijection between vector IDs and document IDs: every live
// entry has exactly one of each, vector IDs are assigned by the index and
// never reused while the entry exists.
type VectorIndex interface {
	Store

	// Add inserts an embedding for a document and returns the assigned
	// vector ID. The same document must not be added twice; use
	// UpdateDocument to replace an existing embedding.
	Add(ctx context.Context, docID string, embedding []float32) (int64, error)

	// Search returns up to topK entries closest to the query embedding,
	// ordered by similarity score descending. A topK larger than the
	// index returns every entry.
	Search(ctx context.Context, query []float32, topK int) ([]*core.VectorMatch, error)

	// UpdateDocument replaces the embedding stored under an existing
	// vector ID. The vector ID and document ID mapping is unchanged.
	// Returns ErrNotFound if the vector ID has no entry.
	UpdateDocument(ctx context.Context, vectorID int64, embedding []float32) error

	// RemoveDocument deletes the entry for a vector ID along with its
	// document mapping. Returns ErrNotFound if the vector ID has no entry.
	RemoveDocument(ctx context.Context, vectorID int64) error

	// DocID resolves a vector ID to its document ID.
	// Returns ErrNotFound if the vector ID has no entry.
	DocID(ctx context.Context, vectorID int64) (string, error)

	// VectorID resolves a document ID to its vector ID.
	// Returns ErrNotFound if the document has no entry.
	VectorID(ctx context.Context, docID string) (int64, error)

	// Count returns the number of live entries in the index.
	Count(ctx context.Context) (int, error)
}

// GraphStore provides persistence for the knowledge graph: chunk nodes,
// entity nodes, and the typed weighted edges between them.
type GraphStore interface {
	Store

	// UpsertChunkNode inserts or replaces a chunk node. The store stamps
	// the persisted record: InsertedAt on first insert, UpdatedAt on every
	// write. The caller's chunk is left untouched.
	UpsertChunkNode(ctx context.Context, chunk *core.Chunk) error

	// GetChunkNode retrieves a chunk node by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunkNode(ctx context.Context, id string) (*core.Chunk, error)

	// ChunkIDs returns the IDs of all chunk nodes in the graph.
	ChunkIDs(ctx context.Context) ([]string, error)

	// GetOrCreateEntity finds or creates an entity node by (name, type)
	// tuple. Entity IDs are content-derived, so concurrent creation
	// attempts converge on the same node.
	GetOrCreateEntity(ctx context.Context, name, entityType string) (*core.Entity, error)

	// FindEntitiesByName returns all entity nodes whose name matches
	// case-insensitively, across every entity type.
	FindEntitiesByName(ctx context.Context, name string) ([]*core.Entity, error)

	// GetNode retrieves a node of either kind by ID.
	// Returns ErrNotFound if no chunk or entity has the ID.
	GetNode(ctx context.Context, id string) (*core.Node, error)

	// DeleteNode removes a node and cascades to all its incident edges,
	// in both directions. Returns ErrNotFound if the node doesn't exist.
	DeleteNode(ctx context.Context, id string) error

	// UpsertEdge inserts or updates the edge keyed by
	// (SourceID, TargetID, Type). Re-upserting an existing edge replaces
	// its weight and metadata; no duplicate edge is ever created.
	// Endpoint existence is not checked here.
	UpsertEdge(ctx context.Context, edge *core.EdgeInput) error

	// GetEdge retrieves an edge by its (source, target, type) key.
	// Returns ErrNotFound if the edge doesn't exist.
	GetEdge(ctx context.Context, sourceID, targetID, edgeType string) (*core.Edge, error)

	// DeleteEdge removes an edge by its (source, target, type) key.
	// Returns ErrNotFound if the edge doesn't exist.
	DeleteEdge(ctx context.Context, sourceID, targetID, edgeType string) error

	// IncidentEdges returns all edges touching a node, outgoing and
	// incoming. An empty slice is returned for isolated or absent nodes.
	IncidentEdges(ctx context.Context, id string) ([]*core.Edge, error)

	// IncidentWeight returns the sum of the weights of all edges
	// touching a node. Zero for isolated or absent nodes.
	IncidentWeight(ctx context.Context, id string) (float64, error)

	// Traverse walks the graph breadth-first from a start node up to
	// depth hops, following edges in both directions. If edgeTypes is
	// non-empty, only edges of the listed types are followed and
	// reported. Depth 0 returns the start node alone. Cycles are safe:
	// each node is visited at most once. The returned subgraph contains
	// the visited nodes and the qualifying edges among them.
	// Returns ErrNotFound if the start node doesn't exist.
	Traverse(ctx context.Context, startID string, depth int, edgeTypes []string) (*core.Subgraph, error)
}
