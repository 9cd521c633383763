package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.PromptStore = (*PromptStore)(nil)
	_ driven.ChatStore   = (*ChatStore)(nil)
)

// PromptStore is an in-memory implementation of driven.PromptStore.
type PromptStore struct {
	mu      sync.RWMutex
	nextID  int64
	prompts map[int64]domain.Prompt
}

// NewPromptStore creates a new in-memory prompt store.
func NewPromptStore() *PromptStore {
	return &PromptStore{prompts: make(map[int64]domain.Prompt)}
}

// CreatePrompt stores p under a new ID.
func (s *PromptStore) CreatePrompt(_ context.Context, p domain.Prompt) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.prompts[p.ID] = clonePrompt(p)
	return p.ID, nil
}

// UpdatePrompt replaces a stored prompt, keeping its creation time.
func (s *PromptStore) UpdatePrompt(_ context.Context, p domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.prompts[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	s.prompts[p.ID] = clonePrompt(p)
	return nil
}

// GetPrompt returns a prompt by ID.
func (s *PromptStore) GetPrompt(_ context.Context, id int64) (*domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = clonePrompt(p)
	return &p, nil
}

// ListPrompts returns all prompts, newest first.
func (s *PromptStore) ListPrompts(_ context.Context) ([]domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Prompt, 0, len(s.prompts))
	for _, p := range s.prompts {
		out = append(out, clonePrompt(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// DeletePrompt removes a prompt.
func (s *PromptStore) DeletePrompt(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.prompts, id)
	return nil
}

func clonePrompt(p domain.Prompt) domain.Prompt {
	p.Tags = slices.Clone(p.Tags)
	p.Models = slices.Clone(p.Models)
	return p
}

// ChatStore is an in-memory implementation of driven.ChatStore.
type ChatStore struct {
	mu     sync.RWMutex
	nextID int64
	chats  map[int64]domain.ChatRecord
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{chats: make(map[int64]domain.ChatRecord)}
}

// SaveChat stores chat under a new ID.
func (s *ChatStore) SaveChat(_ context.Context, chat domain.ChatRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	chat.ID = s.nextID
	chat.Models = slices.Clone(chat.Models)
	chat.Messages = slices.Clone(chat.Messages)
	s.chats[chat.ID] = chat
	return chat.ID, nil
}

// GetChat returns a conversation with its messages.
func (s *ChatStore) GetChat(_ context.Context, id int64) (*domain.ChatRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	chat.Models = slices.Clone(chat.Models)
	chat.Messages = slices.Clone(chat.Messages)
	return &chat, nil
}

// ListChats returns conversations without messages, newest first.
func (s *ChatStore) ListChats(_ context.Context) ([]domain.ChatRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatRecord, 0, len(s.chats))
	for _, chat := range s.chats {
		chat.Models = slices.Clone(chat.Models)
		chat.Messages = nil
		out = append(out, chat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// DeleteChat removes a conversation.
func (s *ChatStore) DeleteChat(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.chats, id)
	return nil
}
