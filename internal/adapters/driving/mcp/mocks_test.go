package mcp

import (
	"context"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
)

var (
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.DocumentService  = (*mockDocumentService)(nil)
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.SearchResult
	ingest  domain.IngestResult
	err     error

	lastQuery    string
	lastK        int
	lastContent  string
	lastMetadata domain.Metadata
}

func (m *mockRetrievalService) AddDocument(
	_ context.Context, content string, metadata domain.Metadata,
) (domain.IngestResult, error) {
	m.lastContent = content
	m.lastMetadata = metadata
	return m.ingest, m.err
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastK = k
	return m.results, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs   []domain.Document
	doc    *domain.Document
	ingest domain.IngestResult
	err    error

	ingested []domain.Document
}

func (m *mockDocumentService) Ingest(
	_ context.Context, doc domain.Document,
) (*domain.Document, domain.IngestResult, error) {
	if m.err != nil {
		return nil, domain.IngestResult{}, m.err
	}
	if doc.ID == "" {
		doc.ID = "generated-id"
	}
	m.ingested = append(m.ingested, doc)
	return &doc, m.ingest, nil
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Rebuild(_ context.Context) (int, error) {
	return len(m.docs), m.err
}
