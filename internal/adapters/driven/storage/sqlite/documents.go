package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save stores or replaces a document.
func (s *documentStore) Save(ctx context.Context, doc domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, source, kind, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			kind = excluded.kind,
			content = excluded.content
	`, doc.ID, doc.Title, doc.Source, doc.Kind, doc.Content, doc.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, source, kind, content, created_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.Source, &doc.Kind, &doc.Content, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// List returns all documents without content.
func (s *documentStore) List(ctx context.Context) ([]domain.Document, error) {
	return s.query(ctx, `
		SELECT id, title, source, kind, '', created_at
		FROM documents ORDER BY created_at, id
	`)
}

// All returns all documents with content.
func (s *documentStore) All(ctx context.Context) ([]domain.Document, error) {
	return s.query(ctx, `
		SELECT id, title, source, kind, content, created_at
		FROM documents ORDER BY created_at, id
	`)
}

// Delete removes a document.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireAffected(res)
}

func (s *documentStore) query(ctx context.Context, q string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Source, &doc.Kind, &doc.Content, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// requireAffected maps a statement that touched no rows to domain.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
