package index

import (
	"fmt"
	"math"
	"sort"
)

// Flat is a brute-force inner-product similarity index. With L2-normalized
// vectors on both sides the inner product equals cosine similarity.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Match is one search result: the position of the vector inside the index
// and its similarity score.
type Match struct {
	Pos   int
	Score float32
}

func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

func (f *Flat) Add(vec []float32) error {
	if len(vec) != f.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), f.dim)
	}
	f.vectors = append(f.vectors, vec)
	return nil
}

func (f *Flat) Len() int { return len(f.vectors) }

func (f *Flat) Dim() int { return f.dim }

// Search returns the top-k matches ordered by descending score. Ties keep
// insertion order. k greater than the vector count is clamped.
func (f *Flat) Search(query []float32, k int) []Match {
	if k <= 0 || len(f.vectors) == 0 || len(query) != f.dim {
		return nil
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	matches := make([]Match, len(f.vectors))
	for i, vec := range f.vectors {
		matches[i] = Match{Pos: i, Score: dot(query, vec)}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches[:k]
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize returns the L2-normalized copy of vec. A zero vector stays zero
// (the degrade placeholder for rows that could not be embedded).
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
