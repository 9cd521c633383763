package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/logger"
)

// Ensure Provisioner implements the interface.
var _ driving.ModelService = (*Provisioner)(nil)

// DefaultEmbeddingModel is used when no embedding model is configured.
const DefaultEmbeddingModel = "nomic-embed-text"

// errPullIncomplete is returned when a pull stream ends without success.
var errPullIncomplete = errors.New("pull ended before completion")

// Provisioner makes sure the embedding model is present at the provider
// before it is used. The check runs once per process; concurrent callers
// wait for the attempt in flight. Failed attempts are not remembered.
type Provisioner struct {
	provider driven.EmbeddingProvider
	model    string

	mu    sync.Mutex
	ready bool
}

// NewProvisioner creates a provisioner for model.
func NewProvisioner(provider driven.EmbeddingProvider, model string) *Provisioner {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Provisioner{
		provider: provider,
		model:    model,
	}
}

// Model returns the embedding model name.
func (p *Provisioner) Model() string {
	return p.model
}

// Ping checks that the provider is reachable.
func (p *Provisioner) Ping(ctx context.Context) error {
	if err := p.provider.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	return nil
}

// EnsureModel lists the provider's models and pulls the embedding model if
// it is missing.
func (p *Provisioner) EnsureModel(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}

	models, err := p.provider.ListModels(ctx)
	if err != nil {
		return &domain.ProvisioningError{Model: p.model, Op: "list", Err: err}
	}
	if hasModel(models, p.model) {
		logger.Debug("embedding model %q present", p.model)
		p.ready = true
		return nil
	}

	logger.Info("embedding model %q not found, pulling", p.model)
	if err := drainPull(p.provider.PullModel(ctx, p.model)); err != nil {
		return &domain.ProvisioningError{Model: p.model, Op: "pull", Err: err}
	}
	logger.Info("embedding model %q pulled", p.model)
	p.ready = true
	return nil
}

// Invalidate forgets that the model is present, so the next EnsureModel
// checks the provider again.
func (p *Provisioner) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = false
}

// List returns the models available at the provider.
func (p *Provisioner) List(ctx context.Context) ([]domain.ModelInfo, error) {
	models, err := p.provider.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// Pull downloads model, yielding progress. A completed pull of the
// embedding model marks it as provisioned.
func (p *Provisioner) Pull(ctx context.Context, model string) iter.Seq2[domain.PullProgress, error] {
	return func(yield func(domain.PullProgress, error) bool) {
		if strings.TrimSpace(model) == "" {
			yield(domain.PullProgress{}, fmt.Errorf("%w: model name is required", domain.ErrInvalidInput))
			return
		}
		for progress, err := range p.provider.PullModel(ctx, model) {
			if err == nil && progress.Done() && model == p.model {
				p.mu.Lock()
				p.ready = true
				p.mu.Unlock()
			}
			if !yield(progress, err) || err != nil {
				return
			}
		}
	}
}

// hasModel reports whether any listed name contains model, so "nomic-embed-text"
// matches "nomic-embed-text:latest".
func hasModel(models []domain.ModelInfo, model string) bool {
	for _, m := range models {
		if strings.Contains(m.Name, model) {
			return true
		}
	}
	return false
}

// drainPull consumes a pull stream until it reports completion.
func drainPull(events iter.Seq2[domain.PullProgress, error]) error {
	for progress, err := range events {
		if err != nil {
			return err
		}
		if progress.Total > 0 {
			logger.Debug("pull: %s %d/%d", progress.Status, progress.Completed, progress.Total)
		} else {
			logger.Debug("pull: %s", progress.Status)
		}
		if progress.Done() {
			return nil
		}
	}
	return errPullIncomplete
}
