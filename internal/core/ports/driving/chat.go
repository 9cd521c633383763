package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// ChatService streams chat replies, optionally grounded on retrieved context.
type ChatService interface {
	Chat(ctx context.Context, req domain.ChatRequest) iter.Seq2[domain.ChatChunk, error]
}
