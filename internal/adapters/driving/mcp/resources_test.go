package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		docs := &mockDocumentService{docs: []domain.Document{
			{ID: "doc-1", Title: "Notes", Source: "/tmp/notes.md", Kind: domain.KindFile},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Documents: docs})
		require.NoError(t, err)

		res, err := server.handleDocumentsResource(ctx, readRequest("docassist://documents"))
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)

		var infos []map[string]string
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &infos))
		require.Len(t, infos, 1)
		assert.Equal(t, "doc-1", infos[0]["id"])
		assert.Equal(t, "file", infos[0]["type"])
		assert.Equal(t, "docassist://documents/doc-1", infos[0]["uri"])
	})

	t.Run("empty without document service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		res, err := server.handleDocumentsResource(ctx, readRequest("docassist://documents"))
		require.NoError(t, err)
		assert.Equal(t, "[]", res.Contents[0].Text)
	})

	t.Run("list error", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("db locked")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Documents: docs})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, readRequest("docassist://documents"))
		assert.Error(t, err)
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns content", func(t *testing.T) {
		docs := &mockDocumentService{doc: &domain.Document{ID: "doc-1", Content: "full text"}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Documents: docs})
		require.NoError(t, err)

		res, err := server.handleDocumentContentResource(ctx, readRequest("docassist://documents/doc-1"))
		require.NoError(t, err)
		assert.Equal(t, "full text", res.Contents[0].Text)
		assert.Equal(t, "text/plain", res.Contents[0].MIMEType)
	})

	t.Run("not found without document service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, readRequest("docassist://documents/doc-1"))
		assert.Error(t, err)
	})

	t.Run("get error", func(t *testing.T) {
		docs := &mockDocumentService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Documents: docs})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, readRequest("docassist://documents/missing"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"docassist://documents/abc", "abc"},
		{"docassist://documents/", ""},
		{"docassist://documents/a/b", ""},
		{"other://documents/abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDocumentID(tt.uri))
		})
	}
}
