package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// ModelService manages models at the provider.
type ModelService interface {
	// EnsureModel makes the configured embedding model available.
	EnsureModel(ctx context.Context) error

	// List returns the models available at the provider.
	List(ctx context.Context) ([]domain.ModelInfo, error)

	// Pull downloads a model, yielding progress.
	Pull(ctx context.Context, model string) iter.Seq2[domain.PullProgress, error]

	// Ping reports an error matching domain.ErrProviderUnavailable when the
	// provider cannot be reached.
	Ping(ctx context.Context) error
}
