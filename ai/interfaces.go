package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EntityExtractor extracts named entities from text.
// Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// ExtractEntities analyzes text and extracts the named entities it
	// mentions, each with a type label. The extractor may return entity
	// types outside the EntityTypes allow-list; filtering is the caller's
	// responsibility.
	// Returns an empty slice if no entities are found.
	// Returns an error if entity extraction fails.
	ExtractEntities(ctx context.Context, text string) ([]ExtractedEntity, error)
}

// ExtractedEntity represents a named entity identified in text.
type ExtractedEntity struct {
	// Name is the entity's surface form as it appears in the text,
	// whitespace-trimmed. Example: "Acme Corp", "Marie Curie", "Paris"
	Name string

	// Type is the entity category label (e.g. "ORG", "PERSON", "GPE").
	Type string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and EntityExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// EntityExtractor returns the entity extraction service.
	// The returned EntityExtractor is safe for concurrent use.
	EntityExtractor() EntityExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
