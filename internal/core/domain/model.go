package domain

import "time"

// ModelInfo describes a model available at the provider.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// PullProgress is one progress event emitted while a model is downloaded.
type PullProgress struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
}

// Done reports whether this event marks a completed pull.
func (p PullProgress) Done() bool {
	return p.Status == "success"
}

// Fraction returns download completion in [0, 1], or 0 when the total is unknown.
func (p PullProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Completed) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// ModelUsage accumulates token usage for one chat model.
type ModelUsage struct {
	Model            string    `json:"model"`
	UsageCount       int64     `json:"usage_count"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	LastUsedAt       time.Time `json:"last_used_at"`
}
