package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// ChatProvider streams chat completions from a language model.
type ChatProvider interface {
	// Chat streams the reply of model to messages. The last chunk has Done set.
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) iter.Seq2[domain.ChatChunk, error]
}
