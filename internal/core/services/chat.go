package services

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ContextPrompt introduces retrieved context in the system message.
const ContextPrompt = "You are a helpful assistant. Use the following context to answer the user's question:\n\n"

// ChatService streams chat replies and, when asked, grounds them on chunks
// retrieved for the latest user message.
type ChatService struct {
	chat      driven.ChatProvider
	retrieval driving.RetrievalService
	usage     driven.UsageStore
}

// NewChatService creates a chat service. retrieval and usage may be nil.
func NewChatService(chat driven.ChatProvider, retrieval driving.RetrievalService, usage driven.UsageStore) *ChatService {
	return &ChatService{
		chat:      chat,
		retrieval: retrieval,
		usage:     usage,
	}
}

// Chat streams the reply to req. Usage is recorded when the final chunk arrives.
func (s *ChatService) Chat(ctx context.Context, req domain.ChatRequest) iter.Seq2[domain.ChatChunk, error] {
	return func(yield func(domain.ChatChunk, error) bool) {
		if s.chat == nil {
			yield(domain.ChatChunk{}, fmt.Errorf("chat: %w", domain.ErrProviderUnavailable))
			return
		}
		if req.Model == "" || len(req.Messages) == 0 {
			yield(domain.ChatChunk{}, fmt.Errorf("chat: %w: model and messages are required", domain.ErrInvalidInput))
			return
		}

		messages := s.BuildMessages(ctx, req)
		for chunk, err := range s.chat.Chat(ctx, req.Model, messages) {
			if err != nil {
				yield(domain.ChatChunk{}, err)
				return
			}
			if chunk.Done {
				s.recordUsage(ctx, req.Model, chunk)
			}
			if !yield(chunk, nil) || chunk.Done {
				return
			}
		}
	}
}

// BuildMessages returns the messages sent to the model: req.Messages, preceded
// by a context system message when req.UseContext is set and retrieval found
// something. Retrieval failures degrade to no context.
func (s *ChatService) BuildMessages(ctx context.Context, req domain.ChatRequest) []domain.ChatMessage {
	if !req.UseContext || s.retrieval == nil {
		return req.Messages
	}
	query, ok := req.LastUserMessage()
	if !ok || strings.TrimSpace(query) == "" {
		return req.Messages
	}

	k := req.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	results, err := s.retrieval.Search(ctx, query, k)
	if err != nil {
		logger.Warn("context retrieval failed, continuing without context: %v", err)
		return req.Messages
	}
	if len(results) == 0 {
		return req.Messages
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	system := domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: ContextPrompt + strings.Join(parts, "\n\n"),
	}

	out := make([]domain.ChatMessage, 0, len(req.Messages)+1)
	out = append(out, system)
	return append(out, req.Messages...)
}

func (s *ChatService) recordUsage(ctx context.Context, model string, final domain.ChatChunk) {
	if s.usage == nil {
		return
	}
	if err := s.usage.RecordUsage(ctx, model, final.PromptTokens, final.CompletionTokens); err != nil {
		logger.Warn("failed to record usage for %s: %v", model, err)
	}
}
