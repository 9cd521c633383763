package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// promptStore implements driven.PromptStore. Tags are kept as a
// comma-separated column; models live in prompt_models.
type promptStore struct {
	store *Store
}

var _ driven.PromptStore = (*promptStore)(nil)

// CreatePrompt inserts p and its models in one transaction.
func (s *promptStore) CreatePrompt(ctx context.Context, p domain.Prompt) (int64, error) {
	if strings.TrimSpace(p.Text) == "" {
		return 0, domain.ErrInvalidInput
	}

	var id int64
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO prompts (prompt, tags, rating, comment, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.Text, joinList(p.Tags), p.Rating, p.Comment, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return insertPromptModels(ctx, tx, id, p.Models)
	})
	if err != nil {
		return 0, fmt.Errorf("creating prompt: %w", err)
	}
	return id, nil
}

// UpdatePrompt replaces a prompt's fields and models.
func (s *promptStore) UpdatePrompt(ctx context.Context, p domain.Prompt) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE prompts SET prompt = ?, tags = ?, rating = ?, comment = ?, updated_at = ?
			WHERE id = ?
		`, p.Text, joinList(p.Tags), p.Rating, p.Comment, p.UpdatedAt.UTC(), p.ID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM prompt_models WHERE prompt_id = ?", p.ID); err != nil {
			return err
		}
		return insertPromptModels(ctx, tx, p.ID, p.Models)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("updating prompt: %w", err)
	}
	return nil
}

// GetPrompt returns a prompt with its models.
func (s *promptStore) GetPrompt(ctx context.Context, id int64) (*domain.Prompt, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, prompt, tags, rating, comment, created_at, updated_at
		FROM prompts WHERE id = ?
	`, id)

	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning prompt: %w", err)
	}

	models, err := s.models(ctx, "WHERE prompt_id = ?", id)
	if err != nil {
		return nil, err
	}
	p.Models = models[id]
	if p.Models == nil {
		p.Models = []string{}
	}
	return p, nil
}

// ListPrompts returns all prompts, newest first.
func (s *promptStore) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, prompt, tags, rating, comment, created_at, updated_at
		FROM prompts ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying prompts: %w", err)
	}
	defer rows.Close()

	prompts := []domain.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning prompt: %w", err)
		}
		prompts = append(prompts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	models, err := s.models(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range prompts {
		prompts[i].Models = models[prompts[i].ID]
		if prompts[i].Models == nil {
			prompts[i].Models = []string{}
		}
	}
	return prompts, nil
}

// DeletePrompt removes a prompt and its models.
func (s *promptStore) DeletePrompt(ctx context.Context, id int64) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM prompt_models WHERE prompt_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM prompts WHERE id = ?", id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("deleting prompt: %w", err)
	}
	return nil
}

// models returns model names keyed by prompt ID, ordered by name.
func (s *promptStore) models(ctx context.Context, where string, args ...any) (map[int64][]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT prompt_id, model FROM prompt_models "+where+" ORDER BY prompt_id, model", args...)
	if err != nil {
		return nil, fmt.Errorf("querying prompt models: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var model string
		if err := rows.Scan(&id, &model); err != nil {
			return nil, fmt.Errorf("scanning prompt model: %w", err)
		}
		out[id] = append(out[id], model)
	}
	return out, rows.Err()
}

func insertPromptModels(ctx context.Context, tx *sql.Tx, id int64, models []string) error {
	for _, m := range models {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO prompt_models (prompt_id, model) VALUES (?, ?)", id, m)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanPrompt(row scanner) (*domain.Prompt, error) {
	var p domain.Prompt
	var tags string
	if err := row.Scan(&p.ID, &p.Text, &tags, &p.Rating, &p.Comment, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Tags = splitList(tags)
	return &p, nil
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
