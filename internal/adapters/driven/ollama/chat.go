package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatEvent struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

// Chat streams the reply of model to messages.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.ChatMessage) iter.Seq2[domain.ChatChunk, error] {
	return func(yield func(domain.ChatChunk, error) bool) {
		req := chatRequest{Model: model, Messages: messages, Stream: true}
		resp, err := c.do(ctx, http.MethodPost, "/api/chat", req, true)
		if err != nil {
			yield(domain.ChatChunk{}, fmt.Errorf("chat: %w", err))
			return
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		for {
			var ev chatEvent
			if err := dec.Decode(&ev); err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				yield(domain.ChatChunk{}, fmt.Errorf("chat: decode response: %w", err))
				return
			}
			if ev.Error != "" {
				yield(domain.ChatChunk{}, fmt.Errorf("chat: %s", ev.Error))
				return
			}

			chunk := domain.ChatChunk{
				Content:          ev.Message.Content,
				Done:             ev.Done,
				PromptTokens:     ev.PromptEvalCount,
				CompletionTokens: ev.EvalCount,
			}
			if !yield(chunk, nil) || chunk.Done {
				return
			}
		}
	}
}
