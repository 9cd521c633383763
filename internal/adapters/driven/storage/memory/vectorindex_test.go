package memory

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

func chunk(id string, vec ...float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Content:   "content of " + id,
		Embedding: vec,
		Metadata:  domain.Metadata{"id": id},
	}
}

func TestNewVectorIndex(t *testing.T) {
	idx := NewVectorIndex()
	require.NotNil(t, idx)
	assert.Equal(t, 0, idx.Len())
}

func TestVectorIndex_Append(t *testing.T) {
	t.Run("first chunk fixes dimensions", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("a", 1, 0, 0)))
		assert.Equal(t, 1, idx.Len())
		assert.ErrorIs(t, idx.Append(chunk("b", 1, 0)), domain.ErrDimensionMismatch)
	})

	t.Run("dimension mismatch rejected", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("a", 1, 0, 0)))

		err := idx.Append(chunk("b", 1, 0))
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("blank content rejected", func(t *testing.T) {
		idx := NewVectorIndex()
		c := chunk("a", 1)
		c.Content = "  \n\t"
		assert.ErrorIs(t, idx.Append(c), domain.ErrInvalidInput)
		assert.Equal(t, 0, idx.Len())
	})

	t.Run("missing embedding rejected", func(t *testing.T) {
		idx := NewVectorIndex()
		assert.ErrorIs(t, idx.Append(chunk("a")), domain.ErrInvalidInput)
	})

	t.Run("stored record is a copy", func(t *testing.T) {
		idx := NewVectorIndex()
		c := chunk("a", 1, 0)
		require.NoError(t, idx.Append(c))

		c.Embedding[0] = -1
		c.Metadata["id"] = "changed"

		results, err := idx.Search([]float32{1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, float32(1), results[0].Chunk.Embedding[0])
		assert.Equal(t, "a", results[0].Chunk.Metadata["id"])
	})
}

func TestVectorIndex_Search(t *testing.T) {
	t.Run("empty index returns empty results", func(t *testing.T) {
		idx := NewVectorIndex()
		results, err := idx.Search([]float32{1, 2, 3}, 3)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("non-positive k rejected", func(t *testing.T) {
		idx := NewVectorIndex()
		_, err := idx.Search([]float32{1}, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("a", 1, 0)))
		_, err := idx.Search([]float32{1, 0, 0}, 1)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("ranks by descending similarity", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("dog", 0, 1)))
		require.NoError(t, idx.Append(chunk("fox", 1, 0)))
		require.NoError(t, idx.Append(chunk("both", 1, 1)))

		results, err := idx.Search([]float32{1, 0.1}, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "fox", results[0].Chunk.ID)
		assert.Equal(t, "both", results[1].Chunk.ID)
		assert.Equal(t, "dog", results[2].Chunk.ID)
		assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
		assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
	})

	t.Run("truncates to k", func(t *testing.T) {
		idx := NewVectorIndex()
		for i := 0; i < 10; i++ {
			require.NoError(t, idx.Append(chunk(fmt.Sprint(i), float32(i+1), 1)))
		}
		results, err := idx.Search([]float32{1, 1}, 3)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("k larger than index", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("a", 1)))
		results, err := idx.Search([]float32{1}, 5)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("low", 0, 1)))
		require.NoError(t, idx.Append(chunk("first", 2, 0)))
		require.NoError(t, idx.Append(chunk("second", 1, 0)))
		require.NoError(t, idx.Append(chunk("third", 3, 0)))

		results, err := idx.Search([]float32{1, 0}, 4)
		require.NoError(t, err)
		ids := []string{results[0].Chunk.ID, results[1].Chunk.ID, results[2].Chunk.ID, results[3].Chunk.ID}
		assert.Equal(t, []string{"first", "second", "third", "low"}, ids)
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("zero", 0, 0)))
		require.NoError(t, idx.Append(chunk("neg", -1, 0)))

		results, err := idx.Search([]float32{1, 0}, 2)
		require.NoError(t, err)
		assert.Equal(t, "zero", results[0].Chunk.ID)
		assert.Equal(t, 0.0, results[0].Score)
		assert.Equal(t, -1.0, results[1].Score)
	})

	t.Run("zero query scores every chunk zero", func(t *testing.T) {
		idx := NewVectorIndex()
		require.NoError(t, idx.Append(chunk("a", 1, 2)))
		results, err := idx.Search([]float32{0, 0}, 1)
		require.NoError(t, err)
		assert.Equal(t, 0.0, results[0].Score)
		assert.False(t, math.IsNaN(results[0].Score))
	})
}

func TestVectorIndex_Concurrent(t *testing.T) {
	idx := NewVectorIndex()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.NoError(t, idx.Append(chunk(fmt.Sprintf("%d-%d", w, i), float32(w+1), float32(i))))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				results, err := idx.Search([]float32{1, 1}, 5)
				assert.NoError(t, err)
				for _, r := range results {
					assert.Equal(t, r.Chunk.ID, r.Chunk.Metadata["id"])
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, idx.Len())
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"zero a", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero b", []float32{1, 1}, []float32{0, 0}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_SymmetricAndBounded(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3}, {-3, 0.5, 2}, {0, 0, 0}, {1e-20, 1e-20, 0}, {3e38, 3e38, 3e38}, {-1, -1, -1},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			ab := CosineSimilarity(a, b)
			ba := CosineSimilarity(b, a)
			assert.Equal(t, ab, ba)
			assert.False(t, math.IsNaN(ab))
			assert.GreaterOrEqual(t, ab, -1.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}
