package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docassist/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `Reads and writes ~/.docassist/config.toml.

Keys:
  ollama.base_url             Ollama server URL (OLLAMA_HOST overrides)
  ollama.timeout_seconds      request timeout
  ollama.requests_per_second  request rate limit
  embedding.model             embedding model name
  chat.model                  default chat model
  search.top_k                default number of results
  data.dir                    document store directory`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show configuration values",
	Long:  `Without a key, shows every effective setting.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if len(args) == 1 {
		v, ok := effectiveSetting(args[0])
		if !ok {
			return fmt.Errorf("unknown key %q", args[0])
		}
		cmd.Println(v)
		return nil
	}

	for _, key := range file.KnownKeys() {
		v, _ := effectiveSetting(key)
		cmd.Printf("%s = %v\n", key, v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	if !slices.Contains(file.KnownKeys(), key) {
		return fmt.Errorf("unknown key %q", key)
	}

	value, err := file.ParseValue(key, args[1])
	if err != nil {
		return err
	}
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("%s = %v\n", key, value)
	return nil
}

// effectiveSetting returns the resolved value for key, defaults included.
func effectiveSetting(key string) (any, bool) {
	s := file.LoadSettings(configStore)
	switch key {
	case file.KeyOllamaBaseURL:
		return s.OllamaBaseURL, true
	case file.KeyOllamaTimeout:
		return int(s.OllamaTimeout.Seconds()), true
	case file.KeyRequestsPerSecond:
		return s.RequestsPerSecond, true
	case file.KeyEmbeddingModel:
		return s.EmbeddingModel, true
	case file.KeyChatModel:
		return s.ChatModel, true
	case file.KeySearchTopK:
		return s.TopK, true
	case file.KeyDataDir:
		if s.DataDir == "" {
			return "~/.docassist/data", true
		}
		return s.DataDir, true
	}
	return nil, false
}
