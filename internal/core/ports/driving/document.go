package driving

import (
	"context"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// DocumentService persists documents and keeps the index in step with them.
type DocumentService interface {
	// Ingest stores doc and indexes its content.
	Ingest(ctx context.Context, doc domain.Document) (*domain.Document, domain.IngestResult, error)

	// Get returns a stored document.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns stored documents without content.
	List(ctx context.Context) ([]domain.Document, error)

	// Rebuild re-indexes every stored document and returns how many were indexed.
	Rebuild(ctx context.Context) (int, error)

	// Delete removes a stored document. Its chunks leave the index on the
	// next rebuild.
	Delete(ctx context.Context, id string) error
}
