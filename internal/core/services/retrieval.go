package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docassist/internal/chunker"
	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultTopK is the number of results returned when none is requested.
const DefaultTopK = 3

// RetrievalService turns documents into embedded chunks and answers
// similarity queries against them.
type RetrievalService struct {
	provider    driven.EmbeddingProvider
	index       driven.VectorIndex
	provisioner *Provisioner
	chunker     *chunker.Chunker
	newID       func() string
}

// NewRetrievalService creates a retrieval service. A nil chunker uses the
// default chunk size.
func NewRetrievalService(
	provider driven.EmbeddingProvider,
	index driven.VectorIndex,
	provisioner *Provisioner,
	ch *chunker.Chunker,
) *RetrievalService {
	if ch == nil {
		// The default options are always valid.
		ch, _ = chunker.New()
	}
	return &RetrievalService{
		provider:    provider,
		index:       index,
		provisioner: provisioner,
		chunker:     ch,
		newID:       func() string { return uuid.New().String() },
	}
}

// AddDocument chunks content, embeds every chunk and appends the embedded
// chunks to the index. A chunk that fails to embed is logged and skipped;
// provisioning failures abort before anything is indexed.
func (s *RetrievalService) AddDocument(
	ctx context.Context, content string, metadata domain.Metadata,
) (domain.IngestResult, error) {
	logger.Section("Ingest")

	var res domain.IngestResult
	if strings.TrimSpace(content) == "" {
		logger.Debug("Empty content, nothing to index")
		return res, nil
	}

	if err := s.provisioner.EnsureModel(ctx); err != nil {
		return res, fmt.Errorf("add document: %w", err)
	}

	model := s.provisioner.Model()
	for text := range s.chunker.Split(content) {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("add document: %w", err)
		}
		res.Chunks++

		vec, err := s.embed(ctx, model, text)
		if err != nil {
			res.Skipped++
			logger.Warn("skipping chunk %d: %v", res.Chunks, err)
			continue
		}

		err = s.index.Append(domain.Chunk{
			ID:        s.newID(),
			Content:   text,
			Embedding: vec,
			Metadata:  metadata,
		})
		if err != nil {
			res.Skipped++
			logger.Warn("skipping chunk %d: %v", res.Chunks, err)
			continue
		}
		res.Indexed++
	}

	logger.Info("Indexed %d/%d chunks (%d skipped)", res.Indexed, res.Chunks, res.Skipped)
	return res, nil
}

// Search embeds query and returns the k most similar chunks.
func (s *RetrievalService) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	logger.Section("Search")
	logger.Debug("Query: %q, k: %d", query, k)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: %w: query is empty", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("search: %w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	if err := s.provisioner.EnsureModel(ctx); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	vec, err := s.embed(ctx, s.provisioner.Model(), query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits, err := s.index.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		logger.Debug("  [%d] score=%.4f id=%s", i+1, hit.Score, hit.Chunk.ID)
		results[i] = domain.SearchResult{
			Content:  hit.Chunk.Content,
			Metadata: hit.Chunk.Metadata.Clone(),
		}
	}
	return results, nil
}

// Len returns the number of indexed chunks.
func (s *RetrievalService) Len() int {
	return s.index.Len()
}

// embed wraps provider failures in an EmbeddingError. A missing model
// invalidates the provisioner so the next operation pulls it again.
func (s *RetrievalService) embed(ctx context.Context, model, text string) ([]float32, error) {
	vec, err := s.provider.Embed(ctx, model, text)
	if err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			s.provisioner.Invalidate()
		}
		return nil, &domain.EmbeddingError{Model: model, Err: err}
	}
	return vec, nil
}
