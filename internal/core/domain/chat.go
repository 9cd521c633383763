package domain

import "time"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one message of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChunk is one streamed piece of a chat completion.
// The final chunk has Done set and carries token counts.
type ChatChunk struct {
	Content          string
	Done             bool
	PromptTokens     int
	CompletionTokens int
}

// ChatRequest is a chat turn, optionally augmented with retrieved context.
type ChatRequest struct {
	// Model is the chat model name.
	Model string

	// Messages is the conversation so far; the last user message drives retrieval.
	Messages []ChatMessage

	// UseContext enables retrieval-augmented context.
	UseContext bool

	// TopK is the number of chunks to retrieve. Zero uses the default.
	TopK int
}

// LastUserMessage returns the content of the most recent user message.
func (r ChatRequest) LastUserMessage() (string, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content, true
		}
	}
	return "", false
}

// ChatRecord is a saved conversation.
type ChatRecord struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`

	// Models lists the chat models used in the conversation.
	Models []string `json:"models"`

	StartedAt time.Time `json:"started_at"`
	SavedAt   time.Time `json:"saved_at"`

	// Messages is empty in listings.
	Messages []ChatMessage `json:"messages,omitempty"`
}
