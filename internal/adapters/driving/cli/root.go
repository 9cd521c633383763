// Package cli provides the docassist command-line interface.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docassist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docassist/internal/adapters/driven/ollama"
	"github.com/custodia-labs/docassist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docassist/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
	"github.com/custodia-labs/docassist/internal/core/services"
	"github.com/custodia-labs/docassist/internal/logger"
)

// EnvHome overrides the configuration directory (default ~/.docassist).
const EnvHome = "DOCASSIST_HOME"

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services wired by PersistentPreRunE.
var (
	configStore      driven.ConfigStore
	usageStore       driven.UsageStore
	retrievalService driving.RetrievalService
	documentService  driving.DocumentService
	promptService    driving.PromptService
	chatService      driving.ChatService
	chatHistory      driving.ChatHistoryService
	modelService     driving.ModelService
	settings         file.Settings

	closeStore  func() error
	indexLoaded bool
)

// wire builds the services. Tests replace it.
var wire = wireServices

var rootCmd = &cobra.Command{
	Use:   "docassist",
	Short: "Ask questions about your own documents",
	Long: `docassist indexes local documents with an Ollama embedding model and
answers questions about them with retrieval-augmented chat.

Documents are chunked, embedded and kept in an in-memory vector index that
is rebuilt from the local document store on each run.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if !needsServices(cmd) {
		return nil
	}
	return wire(cmd)
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeStore == nil {
		return nil
	}
	err := closeStore()
	closeStore = nil
	return err
}

// needsServices reports whether cmd uses the wired services.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

func wireServices(_ *cobra.Command) error {
	cfg, err := file.NewConfigStore(os.Getenv(EnvHome))
	if err != nil {
		return err
	}
	configStore = cfg
	settings = file.LoadSettings(cfg)

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return err
	}
	closeStore = store.Close
	usageStore = store.UsageStore()

	client := ollama.New(ollama.Config{
		BaseURL:           settings.OllamaBaseURL,
		Timeout:           settings.OllamaTimeout,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
	logger.Debug("Ollama at %s, embedding model %s", client.BaseURL(), settings.EmbeddingModel)

	provisioner := services.NewProvisioner(client, settings.EmbeddingModel)
	retrieval := services.NewRetrievalService(client, memory.NewVectorIndex(), provisioner, nil)

	modelService = provisioner
	retrievalService = retrieval
	documentService = services.NewDocumentService(store.DocumentStore(), retrieval)
	promptService = services.NewPromptService(store.PromptStore(), retrieval)
	chatService = services.NewChatService(client, retrieval, usageStore)
	chatHistory = services.NewChatHistoryService(store.ChatStore())
	indexLoaded = false
	return nil
}

// loadIndex re-embeds stored documents and saved prompts into the in-memory
// index once per run.
func loadIndex(cmd *cobra.Command) error {
	if indexLoaded {
		return nil
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}
	n, err := documentService.Rebuild(cmd.Context())
	if err != nil {
		return err
	}
	logger.Debug("Loaded %d documents into the index", n)
	if promptService != nil {
		p, err := promptService.Rebuild(cmd.Context())
		if err != nil {
			return err
		}
		logger.Debug("Loaded %d prompts into the index", p)
	}
	indexLoaded = true
	return nil
}

// topK returns the flag value when set, else the configured default.
func topK(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if settings.TopK > 0 {
		return settings.TopK
	}
	return services.DefaultTopK
}
