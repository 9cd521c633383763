package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/logger"
)

// Ensure PromptService implements the interface.
var _ driving.PromptService = (*PromptService)(nil)

// PromptService stores saved prompts and indexes their text next to
// documents. A prompt is stored first; indexing is best effort and the
// next rebuild picks up anything that failed.
type PromptService struct {
	store     driven.PromptStore
	retrieval driving.RetrievalService
	now       func() time.Time
}

// NewPromptService creates a prompt service. retrieval may be nil.
func NewPromptService(store driven.PromptStore, retrieval driving.RetrievalService) *PromptService {
	return &PromptService{
		store:     store,
		retrieval: retrieval,
		now:       time.Now,
	}
}

// Create validates p, stores it and indexes its text.
func (s *PromptService) Create(ctx context.Context, p domain.Prompt) (*domain.Prompt, error) {
	if err := normalisePrompt(&p); err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	id, err := s.store.CreatePrompt(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}
	p.ID = id

	s.index(ctx, &p)
	logger.Info("Saved prompt %d: %q", p.ID, p.Title())
	return &p, nil
}

// Update replaces the stored prompt with the same ID. CreatedAt is kept.
func (s *PromptService) Update(ctx context.Context, p domain.Prompt) (*domain.Prompt, error) {
	existing, err := s.store.GetPrompt(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := normalisePrompt(&p); err != nil {
		return nil, fmt.Errorf("update prompt %d: %w", p.ID, err)
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()

	if err := s.store.UpdatePrompt(ctx, p); err != nil {
		return nil, fmt.Errorf("update prompt %d: %w", p.ID, err)
	}

	s.index(ctx, &p)
	logger.Info("Updated prompt %d", p.ID)
	return &p, nil
}

// Get returns a stored prompt.
func (s *PromptService) Get(ctx context.Context, id int64) (*domain.Prompt, error) {
	return s.store.GetPrompt(ctx, id)
}

// List returns stored prompts, newest first.
func (s *PromptService) List(ctx context.Context) ([]domain.Prompt, error) {
	return s.store.ListPrompts(ctx)
}

// Delete removes a stored prompt.
func (s *PromptService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePrompt(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted prompt %d", id)
	return nil
}

// Rebuild indexes every stored prompt. Provisioning failures abort; other
// failures skip the prompt.
func (s *PromptService) Rebuild(ctx context.Context) (int, error) {
	if s.retrieval == nil {
		return 0, nil
	}
	prompts, err := s.store.ListPrompts(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuild prompts: %w", err)
	}

	indexed := 0
	for i := range prompts {
		_, err := s.retrieval.AddDocument(ctx, prompts[i].Text, prompts[i].Metadata())
		if err != nil {
			if errors.Is(err, domain.ErrProvisioning) || ctx.Err() != nil {
				return indexed, fmt.Errorf("rebuild prompts: %w", err)
			}
			logger.Warn("rebuild: skipping prompt %d: %v", prompts[i].ID, err)
			continue
		}
		indexed++
	}

	if len(prompts) > 0 {
		logger.Info("Rebuilt index from %d/%d prompts", indexed, len(prompts))
	}
	return indexed, nil
}

func (s *PromptService) index(ctx context.Context, p *domain.Prompt) {
	if s.retrieval == nil {
		return
	}
	if _, err := s.retrieval.AddDocument(ctx, p.Text, p.Metadata()); err != nil {
		logger.Warn("prompt %d saved but not indexed: %v", p.ID, err)
	}
}

// normalisePrompt validates p and cleans up its tags and models.
func normalisePrompt(p *domain.Prompt) error {
	p.Text = strings.TrimSpace(p.Text)
	if p.Text == "" {
		return fmt.Errorf("%w: prompt text is empty", domain.ErrInvalidInput)
	}
	if p.Rating < 0 || p.Rating > domain.MaxRating {
		return fmt.Errorf("%w: rating must be between 0 and %d", domain.ErrInvalidInput, domain.MaxRating)
	}
	p.Comment = strings.TrimSpace(p.Comment)
	p.Tags = splitTags(p.Tags)

	models := make([]string, 0, len(p.Models))
	for _, m := range p.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	slices.Sort(models)
	p.Models = slices.Compact(models)
	return nil
}

// splitTags trims tags, splits comma-joined entries and drops duplicates,
// keeping first-seen order.
func splitTags(raw []string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, entry := range raw {
		for _, tag := range strings.Split(entry, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
