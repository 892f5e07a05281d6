package reembed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(v []float32) float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	return math.Sqrt(sumSq)
}

func TestNormalizeVectorUnitLength(t *testing.T) {
	inputs := [][]float32{
		{1, 0, 0},
		{3, 4},
		{-1, 1},
		{0.001, 0.002, -0.003, 0.004},
	}

	for _, input := range inputs {
		got := NormalizeVector(input)
		require.Equal(t, len(input), len(got))
		assert.InDelta(t, 1.0, magnitude(got), 1e-6)
	}
}

func TestNormalizeVectorDirectionPreserved(t *testing.T) {
	got := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(got[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(got[1]), 1e-6)
}

func TestNormalizeVectorDoesNotMutateInput(t *testing.T) {
	input := []float32{3, 4}
	_ = NormalizeVector(input)
	assert.Equal(t, []float32{3, 4}, input)
}

func TestNormalizeVectorZeroVector(t *testing.T) {
	got := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, got)
}

func TestNormalizeVectorEmpty(t *testing.T) {
	assert.Empty(t, NormalizeVector(nil))
	assert.Empty(t, NormalizeVector([]float32{}))
}
