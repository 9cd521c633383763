package cli

import (
	"bytes"
	"context"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docassist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/core/services"
)

var (
	_ driving.RetrievalService = (*mockRetrieval)(nil)
	_ driving.DocumentService  = (*mockDocuments)(nil)
	_ driving.ChatService      = (*mockChat)(nil)
	_ driving.ModelService     = (*mockModels)(nil)
)

type mockRetrieval struct {
	results []domain.SearchResult
	err     error
	lastK   int
	queries []string
	added   []string
}

func (m *mockRetrieval) AddDocument(_ context.Context, content string, _ domain.Metadata) (domain.IngestResult, error) {
	if m.err != nil {
		return domain.IngestResult{}, m.err
	}
	m.added = append(m.added, content)
	return domain.IngestResult{Chunks: 1, Indexed: 1}, nil
}

func (m *mockRetrieval) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.queries = append(m.queries, query)
	m.lastK = k
	return m.results, m.err
}

type mockDocuments struct {
	mu       sync.Mutex
	docs     map[string]domain.Document
	ingested []domain.Document
	result   domain.IngestResult
	deleted  []string
	err      error
	rebuilds int
}

func newMockDocuments() *mockDocuments {
	return &mockDocuments{docs: map[string]domain.Document{}}
}

func (m *mockDocuments) Ingest(_ context.Context, doc domain.Document) (*domain.Document, domain.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, domain.IngestResult{}, m.err
	}
	if doc.ID == "" {
		doc.ID = "doc-" + string(rune('a'+len(m.ingested)))
	}
	if doc.Title == "" {
		doc.Title = doc.Source
	}
	m.ingested = append(m.ingested, doc)
	m.docs[doc.ID] = doc
	res := m.result
	if res.Chunks == 0 {
		res = domain.IngestResult{Chunks: 1, Indexed: 1}
	}
	return &doc, res, nil
}

func (m *mockDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockDocuments) List(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, d := range m.docs {
		d.Content = ""
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDocuments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocuments) wasDeleted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.deleted {
		if d == id {
			return true
		}
	}
	return false
}

func (m *mockDocuments) Rebuild(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds++
	return len(m.docs), nil
}

func (m *mockDocuments) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ingested)
}

func (m *mockDocuments) hasSourceSuffix(suffix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.ingested {
		if strings.HasSuffix(d.Source, suffix) {
			return true
		}
	}
	return false
}

type mockChat struct {
	chunks   []domain.ChatChunk
	err      error
	requests []domain.ChatRequest
}

func (m *mockChat) Chat(_ context.Context, req domain.ChatRequest) iter.Seq2[domain.ChatChunk, error] {
	m.requests = append(m.requests, req)
	return func(yield func(domain.ChatChunk, error) bool) {
		if m.err != nil {
			yield(domain.ChatChunk{}, m.err)
			return
		}
		for _, c := range m.chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

type mockModels struct {
	models   []domain.ModelInfo
	progress []domain.PullProgress
	err      error
	pingErr  error
	ensured  int
	pulled   []string
}

func (m *mockModels) Ping(context.Context) error {
	return m.pingErr
}

func (m *mockModels) EnsureModel(context.Context) error {
	m.ensured++
	return m.err
}

func (m *mockModels) List(context.Context) ([]domain.ModelInfo, error) {
	return m.models, m.err
}

func (m *mockModels) Pull(_ context.Context, model string) iter.Seq2[domain.PullProgress, error] {
	m.pulled = append(m.pulled, model)
	return func(yield func(domain.PullProgress, error) bool) {
		if m.err != nil {
			yield(domain.PullProgress{}, m.err)
			return
		}
		for _, p := range m.progress {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	retrieval *mockRetrieval
	documents *mockDocuments
	chat      *mockChat
	models    *mockModels
	usage     *memory.UsageStore
	prompts   *memory.PromptStore
	chats     *memory.ChatStore
	config    *file.ConfigStore
}

// setupTestServices replaces service wiring with mocks and resets flags on cleanup.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	t.Setenv(file.EnvOllamaHost, "")
	resetContexts(rootCmd)

	cfg, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	ts := &testServices{
		retrieval: &mockRetrieval{},
		documents: newMockDocuments(),
		chat:      &mockChat{},
		models:    &mockModels{},
		usage:     memory.NewUsageStore(),
		prompts:   memory.NewPromptStore(),
		chats:     memory.NewChatStore(),
		config:    cfg,
	}

	originalWire := wire
	wire = func(*cobra.Command) error {
		configStore = ts.config
		settings = file.LoadSettings(ts.config)
		usageStore = ts.usage
		retrievalService = ts.retrieval
		documentService = ts.documents
		promptService = services.NewPromptService(ts.prompts, ts.retrieval)
		chatService = ts.chat
		chatHistory = services.NewChatHistoryService(ts.chats)
		modelService = ts.models
		indexLoaded = false
		return nil
	}

	t.Cleanup(func() {
		wire = originalWire
		configStore = nil
		usageStore = nil
		retrievalService = nil
		documentService = nil
		promptService = nil
		chatService = nil
		chatHistory = nil
		modelService = nil
		settings = file.Settings{}
		indexLoaded = false

		verbose = false
		searchK, searchJSON = 0, false
		chatModel, chatNoContext, chatK, chatSave = "", false, 0, false
		ingestText, ingestTitle = "", ""
		documentsJSON, chatsJSON = false, false
		promptsJSON, promptText, promptComment, promptRating = false, "", "", 0
		promptTags, promptModels = nil, nil
		watchSkipInitial = false
		resetFlags(rootCmd)
		resetContexts(rootCmd)

		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	return ts
}

// resetFlags clears the Changed marks cobra keeps between executions.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// resetContexts drops the contexts cobra keeps on subcommands after an
// execution. ExecuteContext only hands its context to a subcommand whose
// own context is nil.
func resetContexts(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		c.SetContext(nil) //nolint:staticcheck // nil makes cobra inherit the root context
		resetContexts(c)
	}
}

// run executes the root command with args and returns combined output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// safeBuffer is a bytes.Buffer safe for concurrent writers.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var testTime = time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)
