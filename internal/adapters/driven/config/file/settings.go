package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docassist/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyOllamaBaseURL     = "ollama.base_url"
	KeyOllamaTimeout     = "ollama.timeout_seconds"
	KeyRequestsPerSecond = "ollama.requests_per_second"
	KeyEmbeddingModel    = "embedding.model"
	KeyChatModel         = "chat.model"
	KeySearchTopK        = "search.top_k"
	KeyDataDir           = "data.dir"
)

// EnvOllamaHost overrides ollama.base_url when set.
const EnvOllamaHost = "OLLAMA_HOST"

// Default settings.
const (
	DefaultOllamaBaseURL     = "http://localhost:11434"
	DefaultTimeoutSeconds    = 30
	DefaultRequestsPerSecond = 10
	DefaultEmbeddingModel    = "nomic-embed-text"
	DefaultChatModel         = "llama3.2"
	DefaultTopK              = 3
)

// intKeys lists keys whose values are stored as integers.
var intKeys = map[string]bool{
	KeyOllamaTimeout:     true,
	KeyRequestsPerSecond: true,
	KeySearchTopK:        true,
}

// KnownKeys returns every recognised configuration key.
func KnownKeys() []string {
	return []string{
		KeyOllamaBaseURL,
		KeyOllamaTimeout,
		KeyRequestsPerSecond,
		KeyEmbeddingModel,
		KeyChatModel,
		KeySearchTopK,
		KeyDataDir,
	}
}

// ParseValue converts a raw command-line value into the type stored for key.
func ParseValue(key, raw string) (any, error) {
	if !intKeys[key] {
		return raw, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s expects an integer: %w", key, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%s must not be negative", key)
	}
	return int64(n), nil
}

// Settings is the resolved application configuration.
type Settings struct {
	OllamaBaseURL     string
	OllamaTimeout     time.Duration
	RequestsPerSecond float64
	EmbeddingModel    string
	ChatModel         string
	TopK              int
	DataDir           string
}

// LoadSettings reads settings from store, applying defaults for missing
// values and the OLLAMA_HOST override. A nil store yields defaults.
func LoadSettings(store driven.ConfigStore) Settings {
	s := Settings{
		OllamaBaseURL:     DefaultOllamaBaseURL,
		OllamaTimeout:     DefaultTimeoutSeconds * time.Second,
		RequestsPerSecond: DefaultRequestsPerSecond,
		EmbeddingModel:    DefaultEmbeddingModel,
		ChatModel:         DefaultChatModel,
		TopK:              DefaultTopK,
	}

	if store != nil {
		if v := store.GetString(KeyOllamaBaseURL); v != "" {
			s.OllamaBaseURL = v
		}
		if v := store.GetInt(KeyOllamaTimeout); v > 0 {
			s.OllamaTimeout = time.Duration(v) * time.Second
		}
		if v := store.GetInt(KeyRequestsPerSecond); v > 0 {
			s.RequestsPerSecond = float64(v)
		}
		if v := store.GetString(KeyEmbeddingModel); v != "" {
			s.EmbeddingModel = v
		}
		if v := store.GetString(KeyChatModel); v != "" {
			s.ChatModel = v
		}
		if v := store.GetInt(KeySearchTopK); v > 0 {
			s.TopK = v
		}
		s.DataDir = expandHome(store.GetString(KeyDataDir))
	}

	if host := strings.TrimSpace(os.Getenv(EnvOllamaHost)); host != "" {
		s.OllamaBaseURL = normaliseHost(host)
	}

	return s
}

// normaliseHost accepts OLLAMA_HOST in the forms Ollama itself accepts:
// a full URL, host:port, or a bare host.
func normaliseHost(host string) string {
	host = strings.TrimRight(host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
