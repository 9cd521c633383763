package services

import (
	"context"
	"iter"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// --- Mock implementations ---

// mockProvider implements driven.EmbeddingProvider with a bag-of-words
// embedding: every distinct word gets its own dimension.
type mockProvider struct {
	mu sync.Mutex

	models  []domain.ModelInfo
	listErr error
	pingErr error

	pullEvents []domain.PullProgress
	pullErr    error

	// failOn makes Embed fail for texts containing any key.
	failOn map[string]error

	listCalls  int
	pullCalls  int
	embedCalls int

	vocab map[string]int
}

const mockDims = 64

func newMockProvider(models ...string) *mockProvider {
	p := &mockProvider{vocab: make(map[string]int)}
	for _, m := range models {
		p.models = append(p.models, domain.ModelInfo{Name: m})
	}
	p.pullEvents = []domain.PullProgress{
		{Status: "pulling manifest"},
		{Status: "downloading", Total: 100, Completed: 50},
		{Status: "success"},
	}
	return p
}

func (m *mockProvider) Embed(_ context.Context, _ string, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++

	for key, err := range m.failOn {
		if strings.Contains(text, key) {
			return nil, err
		}
	}

	vec := make([]float32, mockDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		idx, ok := m.vocab[w]
		if !ok {
			idx = len(m.vocab) % mockDims
			m.vocab[w] = idx
		}
		vec[idx]++
	}
	return vec, nil
}

func (m *mockProvider) ListModels(_ context.Context) ([]domain.ModelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.ModelInfo(nil), m.models...), nil
}

func (m *mockProvider) PullModel(_ context.Context, model string) iter.Seq2[domain.PullProgress, error] {
	return func(yield func(domain.PullProgress, error) bool) {
		m.mu.Lock()
		m.pullCalls++
		events := m.pullEvents
		pullErr := m.pullErr
		m.mu.Unlock()

		if pullErr != nil {
			yield(domain.PullProgress{}, pullErr)
			return
		}
		for _, ev := range events {
			if ev.Done() {
				m.mu.Lock()
				m.models = append(m.models, domain.ModelInfo{Name: model + ":latest"})
				m.mu.Unlock()
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func (m *mockProvider) Ping(context.Context) error {
	return m.pingErr
}

func (m *mockProvider) calls() (list, pull, embed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls, m.pullCalls, m.embedCalls
}

// mockChatProvider implements driven.ChatProvider.
type mockChatProvider struct {
	chunks   []domain.ChatChunk
	err      error
	received []domain.ChatMessage
}

func (m *mockChatProvider) Chat(
	_ context.Context, _ string, messages []domain.ChatMessage,
) iter.Seq2[domain.ChatChunk, error] {
	m.received = messages
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

// mockRetrieval implements driving.RetrievalService.
type mockRetrieval struct {
	results   []domain.SearchResult
	searchErr error
	addErr    map[string]error

	gotQuery string
	gotK     int
	added    []string
	metadata []domain.Metadata
}

func (m *mockRetrieval) AddDocument(
	_ context.Context, content string, metadata domain.Metadata,
) (domain.IngestResult, error) {
	if err := m.addErr[content]; err != nil {
		return domain.IngestResult{}, err
	}
	m.added = append(m.added, content)
	m.metadata = append(m.metadata, metadata)
	return domain.IngestResult{Chunks: 1, Indexed: 1}, nil
}

func (m *mockRetrieval) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.gotQuery = query
	m.gotK = k
	return m.results, m.searchErr
}

// mockUsageStore implements driven.UsageStore.
type mockUsageStore struct {
	err      error
	recorded []domain.ModelUsage
}

func (m *mockUsageStore) RecordUsage(_ context.Context, model string, prompt, completion int) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, domain.ModelUsage{
		Model:            model,
		UsageCount:       1,
		PromptTokens:     int64(prompt),
		CompletionTokens: int64(completion),
	})
	return nil
}

func (m *mockUsageStore) Usage(_ context.Context, _ string) (*domain.ModelUsage, error) {
	return nil, domain.ErrNotFound
}

func (m *mockUsageStore) ListUsage(_ context.Context) ([]domain.ModelUsage, error) {
	return m.recorded, nil
}
