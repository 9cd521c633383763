package driving

import (
	"context"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// RetrievalService ingests text into the vector index and answers similarity queries.
type RetrievalService interface {
	// AddDocument chunks, embeds and indexes content. Chunks that fail to
	// embed are skipped; the result reports how many were indexed.
	AddDocument(ctx context.Context, content string, metadata domain.Metadata) (domain.IngestResult, error)

	// Search returns the k chunks most similar to query.
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}
