package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

var (
	chatModel     string
	chatNoContext bool
	chatK         int
	chatSave      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with a model about your documents",
	Long: `Sends a message to the chat model. Unless --no-context is given, the
chunks most similar to the message are retrieved and supplied to the model
as context.

Without a message argument, starts an interactive session that reads one
message per line until EOF or /exit.

With --save the conversation is stored in the chat history when it ends.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "chat model (default from chat.model)")
	chatCmd.Flags().BoolVar(&chatNoContext, "no-context", false, "do not retrieve document context")
	chatCmd.Flags().IntVarP(&chatK, "top-k", "k", 0, "number of context chunks (default from search.top_k)")
	chatCmd.Flags().BoolVar(&chatSave, "save", false, "save the conversation to the chat history")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	model := chatModel
	if model == "" {
		model = settings.ChatModel
	}
	if model == "" {
		return errors.New("no chat model configured")
	}

	if !chatNoContext {
		if err := loadIndex(cmd); err != nil {
			return fmt.Errorf("loading index: %w", err)
		}
	}

	if chatSave && chatHistory == nil {
		return errors.New("chat history not configured")
	}
	started := time.Now()

	if len(args) == 1 {
		history := []domain.ChatMessage{{Role: domain.RoleUser, Content: args[0]}}
		reply, err := chatTurn(cmd, model, history)
		if err != nil {
			return err
		}
		history = append(history, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
		return saveTranscript(cmd, model, started, history)
	}

	var history []domain.ChatMessage
	scanner := bufio.NewScanner(cmd.InOrStdin())
	cmd.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/exit" || line == "/quit" {
			return saveTranscript(cmd, model, started, history)
		}
		if line != "" {
			history = append(history, domain.ChatMessage{Role: domain.RoleUser, Content: line})
			reply, err := chatTurn(cmd, model, history)
			if err != nil {
				return err
			}
			history = append(history, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
		}
		cmd.Print("> ")
	}
	cmd.Println()
	if err := scanner.Err(); err != nil {
		return err
	}
	return saveTranscript(cmd, model, started, history)
}

// saveTranscript stores history when --save is set and something was said.
func saveTranscript(cmd *cobra.Command, model string, started time.Time, history []domain.ChatMessage) error {
	if !chatSave || len(history) == 0 {
		return nil
	}
	chat, err := chatHistory.Save(cmd.Context(), domain.ChatRecord{
		Models:    []string{model},
		StartedAt: started,
		Messages:  history,
	})
	if err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}
	cmd.Printf("Saved chat %d\n", chat.ID)
	return nil
}

// chatTurn streams one reply to stdout and returns its full text.
func chatTurn(cmd *cobra.Command, model string, messages []domain.ChatMessage) (string, error) {
	req := domain.ChatRequest{
		Model:      model,
		Messages:   messages,
		UseContext: !chatNoContext,
		TopK:       topK(chatK),
	}

	var reply strings.Builder
	out := cmd.OutOrStdout()
	for chunk, err := range chatService.Chat(cmd.Context(), req) {
		if err != nil {
			fmt.Fprintln(out)
			return reply.String(), fmt.Errorf("chat failed: %w", err)
		}
		reply.WriteString(chunk.Content)
		fmt.Fprint(out, chunk.Content)
		if chunk.Done && verbose {
			fmt.Fprintf(out, "\n[%s: %d prompt tokens, %d completion tokens]", model, chunk.PromptTokens, chunk.CompletionTokens)
		}
	}
	fmt.Fprintln(out)
	return reply.String(), nil
}
