package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Edge types created by the core itself. Callers may create additional
// types as long as they pass ValidateEdgeType.
const (
	// EdgeTypeRelated links two chunks whose embedding similarity exceeds
	// the semantic-linking threshold. Weight carries the similarity score.
	EdgeTypeRelated = "RELATED_TO"

	// EdgeTypeMentions links a chunk to an entity it references.
	EdgeTypeMentions = "MENTIONS"
)

// NoVector is the VectorID of a chunk that has no vector index entry.
const NoVector int64 = -1

// DefaultEdgeWeight is used when an edge is created without an explicit weight.
const DefaultEdgeWeight = 1.0

// NewChunkID generates a fresh opaque chunk identifier.
func NewChunkID() string {
	return uuid.NewString()
}

// EntityID generates a deterministic ID from an entity (type,name) tuple
// using BLAKE2b hashing. Identical tuples always produce identical IDs,
// which is what makes entity upserts dedupe naturally.
func EntityID(name, entityType string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte("(" + entityType + "," + name + ")"))
	return "ent-" + hex.EncodeToString(h.Sum(nil))
}

// DocumentInput is a document submitted for ingestion.
type DocumentInput struct {
	Text     string
	Title    string
	Metadata map[string]string
}

// Chunk is a bounded-size segment of a document, the atomic retrievable unit.
// The ID is immutable; VectorID is assigned once by the vector index and is
// never reused while the chunk exists.
type Chunk struct {
	Id         string
	Text       string
	Title      string
	VectorID   int64 // NoVector until the index assigns one
	Lang       string
	ChunkIndex int
	Metadata   map[string]string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Entity represents a named entity extracted from chunk text.
// Entities are deduplicated by their (name, type) tuple.
type Entity struct {
	Id         string
	Name       string
	Type       string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Tuple returns a string representation of the entity as "(Type,Name)".
func (e *Entity) Tuple() string {
	return "(" + e.Type + "," + e.Name + ")"
}

// Edge is a typed, weighted, directed relationship between two graph nodes.
// Edges are keyed by (SourceID, TargetID, Type); re-creating an existing edge
// updates its weight and metadata instead of duplicating it.
type Edge struct {
	SourceID   string
	TargetID   string
	Type       string
	Weight     float64
	Metadata   map[string]string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// EdgeInput is a caller-supplied edge creation request.
type EdgeInput struct {
	SourceID string
	TargetID string
	Type     string
	Weight   float64
	Metadata map[string]string
}

// NodeKind discriminates the two node families stored in the graph.
type NodeKind int

const (
	// NodeKindChunk is a document chunk node.
	NodeKindChunk NodeKind = iota + 1
	// NodeKindEntity is a named entity node.
	NodeKindEntity
)

// Node is a tagged union over the two node families. Exactly one of
// Chunk/Entity is non-nil, matching Kind.
type Node struct {
	Kind   NodeKind
	Chunk  *Chunk
	Entity *Entity
}

// ID returns the node's identifier regardless of kind.
func (n *Node) ID() string {
	switch n.Kind {
	case NodeKindChunk:
		return n.Chunk.Id
	case NodeKindEntity:
		return n.Entity.Id
	}
	return ""
}

// ChunkNode wraps a chunk as a graph node.
func ChunkNode(c *Chunk) *Node {
	return &Node{Kind: NodeKindChunk, Chunk: c}
}

// EntityNode wraps an entity as a graph node.
func EntityNode(e *Entity) *Node {
	return &Node{Kind: NodeKindEntity, Entity: e}
}

// Subgraph is the result of a bounded traversal: the reachable nodes and the
// edges among them, deduplicated by node ID and (source, target, type).
type Subgraph struct {
	Nodes []*Node
	Edges []*Edge
}

// VectorEntry is a single vector index entry. VectorID to DocID is a
// bijection over live entries; removing a chunk removes its entry.
type VectorEntry struct {
	VectorID  int64
	DocID     string
	Embedding []float32
}

// VectorMatch is a single nearest-neighbor hit from the vector index.
// Score is a similarity (higher = closer).
type VectorMatch struct {
	VectorID int64
	DocID    string
	Score    float32
}

// GraphInfo carries the fusion diagnostics attached to a hybrid search
// result. It is a closed set of known fields rather than a free-form map so
// callers can rely on its shape.
type GraphInfo struct {
	VectorScoreNorm       float64
	ConnectivityScoreNorm float64
	Hops                  int
	ExpansionBonus        float64
	ExpansionWeight       float64
	Expanded              bool
}

// SearchResult is a transient, per-query result value. It is never persisted.
type SearchResult struct {
	Id        string
	Text      string
	Score     float64
	Metadata  map[string]string
	GraphInfo *GraphInfo
}
