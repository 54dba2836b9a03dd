package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatSearchOrdersByDescendingScore(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Add([]float32{1, 0}))  // pos 0, score 1.0
	require.NoError(t, f.Add([]float32{0, 1}))  // pos 1, score 0.0
	require.NoError(t, f.Add([]float32{-1, 0})) // pos 2, score -1.0

	matches := f.Search([]float32{1, 0}, 3)
	require.Len(t, matches, 3)
	assert.Equal(t, 0, matches[0].Pos)
	assert.Equal(t, 1, matches[1].Pos)
	assert.Equal(t, 2, matches[2].Pos)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestFlatSearchTiesKeepInsertionOrder(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Add([]float32{0, 1}))
	require.NoError(t, f.Add([]float32{0, 1}))
	require.NoError(t, f.Add([]float32{1, 0}))

	matches := f.Search([]float32{0, 1}, 3)
	require.Len(t, matches, 3)
	assert.Equal(t, 0, matches[0].Pos)
	assert.Equal(t, 1, matches[1].Pos)
}

func TestFlatSearchClampsK(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Add([]float32{1, 0}))

	assert.Len(t, f.Search([]float32{1, 0}, 10), 1)
	assert.Nil(t, f.Search([]float32{1, 0}, 0))
}

func TestFlatSearchIsDeterministic(t *testing.T) {
	f := NewFlat(3)
	require.NoError(t, f.Add([]float32{0.5, 0.5, 0}))
	require.NoError(t, f.Add([]float32{0, 0.5, 0.5}))
	require.NoError(t, f.Add([]float32{0.5, 0, 0.5}))

	query := Normalize([]float32{1, 1, 1})
	first := f.Search(query, 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.Search(query, 3))
	}
}

func TestFlatAddRejectsWrongDimension(t *testing.T) {
	f := NewFlat(3)
	assert.Error(t, f.Add([]float32{1, 0}))
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)
}

func TestNormalizeZeroVectorStaysZero(t *testing.T) {
	out := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, out)
}
