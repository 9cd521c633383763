package driven

import (
	"context"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// DocumentStore persists ingested documents.
type DocumentStore interface {
	// Save stores or replaces a document.
	Save(ctx context.Context, doc domain.Document) error

	// Get returns a document by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents ordered by creation time, without content.
	List(ctx context.Context) ([]domain.Document, error)

	// All returns all documents ordered by creation time, with content.
	All(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document, or returns domain.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// PromptStore persists saved prompts.
type PromptStore interface {
	// CreatePrompt stores a new prompt and returns its ID.
	CreatePrompt(ctx context.Context, p domain.Prompt) (int64, error)

	// UpdatePrompt replaces every field of an existing prompt except
	// CreatedAt, or returns domain.ErrNotFound.
	UpdatePrompt(ctx context.Context, p domain.Prompt) error

	// GetPrompt returns a prompt by ID, or domain.ErrNotFound.
	GetPrompt(ctx context.Context, id int64) (*domain.Prompt, error)

	// ListPrompts returns all prompts, newest first.
	ListPrompts(ctx context.Context) ([]domain.Prompt, error)

	// DeletePrompt removes a prompt, or returns domain.ErrNotFound.
	DeletePrompt(ctx context.Context, id int64) error
}

// ChatStore persists saved conversations.
type ChatStore interface {
	// SaveChat stores a conversation with its messages and returns its ID.
	SaveChat(ctx context.Context, chat domain.ChatRecord) (int64, error)

	// GetChat returns a conversation with its messages, or domain.ErrNotFound.
	GetChat(ctx context.Context, id int64) (*domain.ChatRecord, error)

	// ListChats returns all conversations without messages, newest first.
	ListChats(ctx context.Context) ([]domain.ChatRecord, error)

	// DeleteChat removes a conversation, or returns domain.ErrNotFound.
	DeleteChat(ctx context.Context, id int64) error
}

// UsageStore accumulates chat model usage.
type UsageStore interface {
	// RecordUsage adds one use of model with the given token counts.
	RecordUsage(ctx context.Context, model string, promptTokens, completionTokens int) error

	// Usage returns the usage record for model, or domain.ErrNotFound.
	Usage(ctx context.Context, model string) (*domain.ModelUsage, error)

	// ListUsage returns all usage records ordered by model name.
	ListUsage(ctx context.Context) ([]domain.ModelUsage, error)
}
