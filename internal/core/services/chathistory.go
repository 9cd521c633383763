package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/logger"
)

// Ensure ChatHistoryService implements the interface.
var _ driving.ChatHistoryService = (*ChatHistoryService)(nil)

// ChatHistoryService saves finished conversations.
type ChatHistoryService struct {
	store driven.ChatStore
	now   func() time.Time
}

// NewChatHistoryService creates a chat history service.
func NewChatHistoryService(store driven.ChatStore) *ChatHistoryService {
	return &ChatHistoryService{store: store, now: time.Now}
}

// Save stores chat. The title defaults to the first user message.
func (s *ChatHistoryService) Save(ctx context.Context, chat domain.ChatRecord) (*domain.ChatRecord, error) {
	if len(chat.Messages) == 0 {
		return nil, fmt.Errorf("save chat: %w: no messages", domain.ErrInvalidInput)
	}
	if chat.Title == "" {
		if first, ok := firstUserMessage(chat.Messages); ok {
			chat.Title = domain.ShortTitle(first)
		}
	}
	chat.SavedAt = s.now()
	if chat.StartedAt.IsZero() {
		chat.StartedAt = chat.SavedAt
	}
	if chat.Models == nil {
		chat.Models = []string{}
	}

	id, err := s.store.SaveChat(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}
	chat.ID = id
	logger.Info("Saved chat %d (%d messages)", id, len(chat.Messages))
	return &chat, nil
}

// Get returns a saved conversation with its messages.
func (s *ChatHistoryService) Get(ctx context.Context, id int64) (*domain.ChatRecord, error) {
	return s.store.GetChat(ctx, id)
}

// List returns saved conversations without messages, newest first.
func (s *ChatHistoryService) List(ctx context.Context) ([]domain.ChatRecord, error) {
	return s.store.ListChats(ctx)
}

// Delete removes a saved conversation.
func (s *ChatHistoryService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteChat(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted chat %d", id)
	return nil
}

func firstUserMessage(messages []domain.ChatMessage) (string, bool) {
	for _, m := range messages {
		if m.Role == domain.RoleUser {
			return m.Content, true
		}
	}
	return "", false
}
