package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// SaveChat inserts a conversation and its messages in one transaction.
func (s *chatStore) SaveChat(ctx context.Context, chat domain.ChatRecord) (int64, error) {
	var id int64
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO chats (title, models, started_at, saved_at)
			VALUES (?, ?, ?, ?)
		`, chat.Title, joinList(chat.Models), chat.StartedAt.UTC(), chat.SavedAt.UTC())
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		for i, msg := range chat.Messages {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO chat_messages (chat_id, seq, role, content) VALUES (?, ?, ?, ?)
			`, id, i, msg.Role, msg.Content)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("saving chat: %w", err)
	}
	return id, nil
}

// GetChat returns a conversation with its messages in order.
func (s *chatStore) GetChat(ctx context.Context, id int64) (*domain.ChatRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, models, started_at, saved_at FROM chats WHERE id = ?
	`, id)
	chat, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chat: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT role, content FROM chat_messages WHERE chat_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	chat.Messages = []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		chat.Messages = append(chat.Messages, msg)
	}
	return chat, rows.Err()
}

// ListChats returns conversations without messages, newest first.
func (s *chatStore) ListChats(ctx context.Context) ([]domain.ChatRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, models, started_at, saved_at
		FROM chats ORDER BY saved_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	chats := []domain.ChatRecord{}
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chat: %w", err)
		}
		chats = append(chats, *chat)
	}
	return chats, rows.Err()
}

// DeleteChat removes a conversation and its messages.
func (s *chatStore) DeleteChat(ctx context.Context, id int64) error {
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chat_messages WHERE chat_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", id)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	return nil
}

func scanChat(row scanner) (*domain.ChatRecord, error) {
	var chat domain.ChatRecord
	var models string
	if err := row.Scan(&chat.ID, &chat.Title, &models, &chat.StartedAt, &chat.SavedAt); err != nil {
		return nil, err
	}
	chat.Models = splitList(models)
	return &chat, nil
}
