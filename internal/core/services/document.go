package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService persists documents and indexes their content.
type DocumentService struct {
	store     driven.DocumentStore
	retrieval driving.RetrievalService
	now       func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.DocumentStore, retrieval driving.RetrievalService) *DocumentService {
	return &DocumentService{
		store:     store,
		retrieval: retrieval,
		now:       time.Now,
	}
}

// Ingest indexes doc and then stores it. A document is only stored once
// indexing has run, so a provisioning failure leaves no trace.
func (s *DocumentService) Ingest(
	ctx context.Context, doc domain.Document,
) (*domain.Document, domain.IngestResult, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, domain.IngestResult{}, fmt.Errorf("ingest: %w: document content is empty", domain.ErrInvalidInput)
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Kind == "" {
		doc.Kind = domain.KindText
	}
	if doc.Title == "" {
		doc.Title = doc.Source
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now()
	}

	res, err := s.retrieval.AddDocument(ctx, doc.Content, doc.Metadata())
	if err != nil {
		return nil, res, fmt.Errorf("ingest %s: %w", doc.Title, err)
	}

	if s.store != nil {
		if err := s.store.Save(ctx, doc); err != nil {
			return nil, res, fmt.Errorf("ingest %s: save document: %w", doc.Title, err)
		}
	}

	logger.Info("Ingested %q: %d chunks indexed, %d skipped", doc.Title, res.Indexed, res.Skipped)
	return &doc, res, nil
}

// Get returns a stored document.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// List returns stored documents without content.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if s.store == nil {
		return []domain.Document{}, nil
	}
	return s.store.List(ctx)
}

// Delete removes a stored document. Its chunks stay searchable until the
// next rebuild.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted document %s", id)
	return nil
}

// Rebuild re-indexes every stored document into the index. Documents that
// fail are logged and skipped, except for provisioning failures which
// abort the rebuild.
func (s *DocumentService) Rebuild(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	logger.Section("Rebuild")
	docs, err := s.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuild: %w", err)
	}

	indexed := 0
	for i := range docs {
		_, err := s.retrieval.AddDocument(ctx, docs[i].Content, docs[i].Metadata())
		if err != nil {
			if errors.Is(err, domain.ErrProvisioning) || ctx.Err() != nil {
				return indexed, fmt.Errorf("rebuild: %w", err)
			}
			logger.Warn("rebuild: skipping %q: %v", docs[i].Title, err)
			continue
		}
		indexed++
	}

	logger.Info("Rebuilt index from %d/%d documents", indexed, len(docs))
	return indexed, nil
}
