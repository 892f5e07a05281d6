// Package reembed provides functionality for reembedding existing chunks
// with new or updated embedding models.
//
// This package supports batch processing of chunks, progress tracking, retry
// logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search. The Relinker complements the
// Reembedder by rebuilding semantic RELATED_TO edges after embeddings change.
package reembed
