// Package mutation provides direct CRUD over chunk and entity nodes and
// their edges, for callers that bypass the ingestion pipeline.
//
// The Service enforces the coupling between the graph and the vector index:
// a chunk text update re-embeds the chunk and replaces its vector entry, and
// a chunk delete removes both the node (with its incident edges) and the
// vector entry. Edge creation against a missing endpoint reports not-found
// instead of writing a dangling edge.
package mutation
