package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docassist/internal/adapters/driving/tui/views/pull"
	"github.com/custodia-labs/docassist/internal/core/domain"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage Ollama models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models available at the Ollama server",
	Args:  cobra.NoArgs,
	RunE:  runModelsList,
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull [name]",
	Short: "Download a model",
	Long: `Downloads a model to the Ollama server. Without a name, pulls the
configured embedding model if it is missing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModelsPull,
}

var modelsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show chat token usage per model",
	Args:  cobra.NoArgs,
	RunE:  runModelsUsage,
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsPullCmd)
	modelsCmd.AddCommand(modelsUsageCmd)
	rootCmd.AddCommand(modelsCmd)
}

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	if modelService == nil {
		return errors.New("model service not configured")
	}

	if err := modelService.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("ollama not reachable at %s: %w", settings.OllamaBaseURL, err)
	}

	models, err := modelService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}
	if len(models) == 0 {
		cmd.Println("No models installed.")
		return nil
	}

	for _, m := range models {
		cmd.Printf("%-40s %10s  %s\n", m.Name, formatBytes(m.Size), formatTime(m.ModifiedAt))
	}
	return nil
}

func runModelsPull(cmd *cobra.Command, args []string) error {
	if modelService == nil {
		return errors.New("model service not configured")
	}

	if len(args) == 0 {
		cmd.Printf("Ensuring embedding model %s is available...\n", settings.EmbeddingModel)
		if err := modelService.EnsureModel(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Ready.")
		return nil
	}

	name := args[0]
	stream := func(ctx context.Context) iter.Seq2[domain.PullProgress, error] {
		return modelService.Pull(ctx, name)
	}

	if isTerminal(cmd.OutOrStdout()) {
		return pull.Run(cmd.Context(), name, stream)
	}
	return pullPlain(cmd, name, stream(cmd.Context()))
}

// pullPlain prints one line per status change.
func pullPlain(cmd *cobra.Command, name string, events iter.Seq2[domain.PullProgress, error]) error {
	last := ""
	done := false
	for p, err := range events {
		if err != nil {
			return fmt.Errorf("pulling %s: %w", name, err)
		}
		if p.Status != last {
			cmd.Println(p.Status)
			last = p.Status
		}
		if p.Done() {
			done = true
		}
	}
	if !done {
		return fmt.Errorf("pulling %s: stream ended before completion", name)
	}
	cmd.Printf("Pulled %s\n", name)
	return nil
}

func runModelsUsage(cmd *cobra.Command, _ []string) error {
	if usageStore == nil {
		return errors.New("usage store not configured")
	}

	usage, err := usageStore.ListUsage(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing usage: %w", err)
	}
	if len(usage) == 0 {
		cmd.Println("No chat usage recorded.")
		return nil
	}

	cmd.Printf("%-30s %8s %12s %12s  %s\n", "MODEL", "CHATS", "PROMPT", "COMPLETION", "LAST USED")
	for _, u := range usage {
		cmd.Printf("%-30s %8d %12d %12d  %s\n",
			u.Model, u.UsageCount, u.PromptTokens, u.CompletionTokens, formatTime(u.LastUsedAt))
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
