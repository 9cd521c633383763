package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// Ensure UsageStore implements the interface.
var _ driven.UsageStore = (*UsageStore)(nil)

// UsageStore is an in-memory implementation of driven.UsageStore.
type UsageStore struct {
	mu    sync.Mutex
	usage map[string]domain.ModelUsage
	now   func() time.Time
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		usage: make(map[string]domain.ModelUsage),
		now:   time.Now,
	}
}

// RecordUsage adds one use of model.
func (s *UsageStore) RecordUsage(_ context.Context, model string, promptTokens, completionTokens int) error {
	if model == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.usage[model]
	u.Model = model
	u.UsageCount++
	u.PromptTokens += int64(promptTokens)
	u.CompletionTokens += int64(completionTokens)
	u.LastUsedAt = s.now()
	s.usage[model] = u
	return nil
}

// Usage returns the usage record for model.
func (s *UsageStore) Usage(_ context.Context, model string) (*domain.ModelUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usage[model]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// ListUsage returns all usage records ordered by model name.
func (s *UsageStore) ListUsage(_ context.Context) ([]domain.ModelUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ModelUsage, 0, len(s.usage))
	for _, u := range s.usage {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out, nil
}
