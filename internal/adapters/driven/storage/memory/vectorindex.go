package memory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an append-only in-memory vector index searched by exact
// linear scan. Appends are serialised; searches run concurrently against the
// records present when they acquire the read lock.
type VectorIndex struct {
	mu         sync.RWMutex
	chunks     []domain.Chunk
	dimensions int
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Append stores a copy of chunk.
func (idx *VectorIndex) Append(chunk domain.Chunk) error {
	if strings.TrimSpace(chunk.Content) == "" {
		return fmt.Errorf("%w: chunk content is blank", domain.ErrInvalidInput)
	}
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("%w: chunk has no embedding", domain.ErrInvalidInput)
	}

	// Copy outside the lock so callers cannot mutate stored records.
	stored := domain.Chunk{
		ID:        chunk.ID,
		Content:   chunk.Content,
		Embedding: append([]float32(nil), chunk.Embedding...),
		Metadata:  chunk.Metadata.Clone(),
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dimensions == 0 {
		idx.dimensions = len(stored.Embedding)
	} else if len(stored.Embedding) != idx.dimensions {
		return fmt.Errorf("%w: got %d, index has %d", domain.ErrDimensionMismatch, len(stored.Embedding), idx.dimensions)
	}
	idx.chunks = append(idx.chunks, stored)
	return nil
}

// Search ranks every stored chunk by cosine similarity to query and returns
// the top k.
func (idx *VectorIndex) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.chunks) == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has %d, index has %d", domain.ErrDimensionMismatch, len(query), idx.dimensions)
	}

	scored := make([]domain.ScoredChunk, len(idx.chunks))
	for i := range idx.chunks {
		scored[i] = domain.ScoredChunk{
			Chunk: idx.chunks[i],
			Score: CosineSimilarity(query, idx.chunks[i].Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

// Len returns the number of stored chunks.
func (idx *VectorIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|) in [-1, 1].
// Vectors of different length or with zero magnitude score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(sim):
		return 0
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}
