package driving

import (
	"context"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// PromptService manages saved prompts and keeps them searchable.
type PromptService interface {
	// Create validates and stores a prompt, then indexes its text.
	Create(ctx context.Context, p domain.Prompt) (*domain.Prompt, error)

	// Update replaces a stored prompt and indexes the new text.
	Update(ctx context.Context, p domain.Prompt) (*domain.Prompt, error)

	// Get returns a stored prompt.
	Get(ctx context.Context, id int64) (*domain.Prompt, error)

	// List returns stored prompts, newest first.
	List(ctx context.Context) ([]domain.Prompt, error)

	// Delete removes a stored prompt.
	Delete(ctx context.Context, id int64) error

	// Rebuild indexes every stored prompt and returns how many were indexed.
	Rebuild(ctx context.Context) (int, error)
}

// ChatHistoryService saves and retrieves conversations.
type ChatHistoryService interface {
	// Save stores a conversation.
	Save(ctx context.Context, chat domain.ChatRecord) (*domain.ChatRecord, error)

	// Get returns a conversation with its messages.
	Get(ctx context.Context, id int64) (*domain.ChatRecord, error)

	// List returns conversations without messages, newest first.
	List(ctx context.Context) ([]domain.ChatRecord, error)

	// Delete removes a conversation.
	Delete(ctx context.Context, id int64) error
}
