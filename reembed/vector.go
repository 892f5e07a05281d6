package reembed

import "math"

// NormalizeVector scales v to unit length and returns the result as a new
// slice. Embeddings are normalized before storage so that the index's dot
// product scoring behaves as cosine similarity. A zero or empty vector has
// no direction and comes back as all zeros.
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))

	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return out
	}

	inv := 1 / math.Sqrt(sumSq)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
