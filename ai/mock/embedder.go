package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// mockEmbeddingDim is the dimensionality of the default mock embeddings.
const mockEmbeddingDim = 32

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, a deterministic hash-seeded unit vector is returned.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses the same per-text default as EmbedText.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns a deterministic embedding for the text. The same text
// always maps to the same unit vector, and distinct texts almost always map
// to distinct directions.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return hashVector(text), nil
}

// EmbedTexts returns deterministic embeddings for each text.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashVector(text)
	}
	return out, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// hashVector derives a unit vector from the FNV-64 hash of the text. Each
// component comes from a splitmix64 step over the seed, mapped into [-1, 1]
// before normalization.
func hashVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	v := make([]float64, mockEmbeddingDim)
	var sumSq float64
	for i := range v {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31

		v[i] = float64(z)/float64(math.MaxUint64)*2 - 1
		sumSq += v[i] * v[i]
	}

	out := make([]float32, mockEmbeddingDim)
	if sumSq == 0 {
		out[0] = 1
		return out
	}
	inv := 1 / math.Sqrt(sumSq)
	for i, x := range v {
		out[i] = float32(x * inv)
	}
	return out
}
