package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// usageStore implements driven.UsageStore.
type usageStore struct {
	store *Store
}

var _ driven.UsageStore = (*usageStore)(nil)

// RecordUsage adds one use of model, creating its row on first use.
func (s *usageStore) RecordUsage(ctx context.Context, model string, promptTokens, completionTokens int) error {
	if model == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO model_usage (model, usage_count, prompt_tokens, completion_tokens, last_used_at)
		VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(model) DO UPDATE SET
			usage_count = usage_count + 1,
			prompt_tokens = prompt_tokens + excluded.prompt_tokens,
			completion_tokens = completion_tokens + excluded.completion_tokens,
			last_used_at = excluded.last_used_at
	`, model, promptTokens, completionTokens, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording usage: %w", err)
	}
	return nil
}

// Usage returns the usage record for model.
func (s *usageStore) Usage(ctx context.Context, model string) (*domain.ModelUsage, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT model, usage_count, prompt_tokens, completion_tokens, last_used_at
		FROM model_usage WHERE model = ?
	`, model)

	u, err := scanUsage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning usage: %w", err)
	}
	return u, nil
}

// ListUsage returns all usage records ordered by model name.
func (s *usageStore) ListUsage(ctx context.Context) ([]domain.ModelUsage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT model, usage_count, prompt_tokens, completion_tokens, last_used_at
		FROM model_usage ORDER BY model
	`)
	if err != nil {
		return nil, fmt.Errorf("querying usage: %w", err)
	}
	defer rows.Close()

	out := []domain.ModelUsage{}
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning usage: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUsage(row scanner) (*domain.ModelUsage, error) {
	var u domain.ModelUsage
	var last sql.NullTime
	if err := row.Scan(&u.Model, &u.UsageCount, &u.PromptTokens, &u.CompletionTokens, &last); err != nil {
		return nil, err
	}
	if last.Valid {
		u.LastUsedAt = last.Time
	}
	return &u, nil
}
