package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docassist/internal/core/services"
)

// connect starts server on an in-memory transport and returns a client session.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func toolNames(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestNewServer(t *testing.T) {
	t.Run("nil retrieval service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
		assert.Nil(t, server)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("default top k", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		_, err := NewServer(ports)
		require.NoError(t, err)
		assert.Equal(t, 3, ports.TopK)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("missing retrieval", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingRetrievalService)
	})

	t.Run("retrieval only is valid", func(t *testing.T) {
		assert.NoError(t, (&Ports{Retrieval: &mockRetrievalService{}}).Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Documents: &mockDocumentService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_Session(t *testing.T) {
	t.Run("advertises instructions and core tools", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)
		cs := connect(t, server)

		info := cs.InitializeResult()
		require.NotNil(t, info)
		assert.Equal(t, "docassist", info.ServerInfo.Name)
		assert.Contains(t, info.Instructions, "search")

		names := toolNames(t, cs)
		assert.ElementsMatch(t, []string{"search", "add_document"}, names)
	})

	t.Run("save_prompt offered with a prompt service", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Prompts:   services.NewPromptService(memory.NewPromptStore(), nil),
		})
		require.NoError(t, err)
		cs := connect(t, server)

		assert.Contains(t, toolNames(t, cs), "save_prompt")
	})
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL, "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
