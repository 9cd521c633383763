package driven

import "github.com/custodia-labs/docassist/internal/core/domain"

// VectorIndex stores embedded chunks and ranks them against a query vector.
// Implementations must be safe for concurrent Append and Search.
type VectorIndex interface {
	// Append stores chunk. The first chunk fixes the index dimensionality;
	// later chunks with a different embedding length are rejected with
	// domain.ErrDimensionMismatch.
	Append(chunk domain.Chunk) error

	// Search returns at most k chunks ordered by descending cosine similarity
	// to query. Ties keep insertion order. An empty index yields no results.
	Search(query []float32, k int) ([]domain.ScoredChunk, error)

	// Len returns the number of stored chunks.
	Len() int
}
