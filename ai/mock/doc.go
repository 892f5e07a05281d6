// Package mock provides deterministic in-process doubles for the ai
// interfaces, so tests never reach an external model.
//
// Behavior is injected through public func fields and observed through call
// counters:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{1, 0}, nil
//	}
//	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockEntityExtractor())
//	...
//	assert.Equal(t, 1, embedder.CallCount())
//
// Without injection, the embedder maps each text to a hash-seeded unit
// vector and the extractor tags capitalized word runs and four-digit years,
// which is enough to drive the linking paths end to end.
package mock
