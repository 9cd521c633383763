package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// EmbeddingProvider is the external model host that turns text into vectors.
// Every method is a blocking network call.
type EmbeddingProvider interface {
	// Embed returns the embedding of text computed by model.
	// A provider that does not have model returns an error matching domain.ErrModelNotFound.
	Embed(ctx context.Context, model, text string) ([]float32, error)

	// ListModels returns the models currently available at the provider.
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)

	// PullModel downloads model, yielding progress events until completion.
	// The sequence ends after the event for which Done reports true, or
	// after yielding a non-nil error.
	PullModel(ctx context.Context, model string) iter.Seq2[domain.PullProgress, error]

	// Ping checks that the provider is reachable with a lightweight request.
	Ping(ctx context.Context) error
}
