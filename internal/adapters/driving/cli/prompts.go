package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

var (
	promptsJSON   bool
	promptTags    []string
	promptModels  []string
	promptRating  int
	promptComment string
	promptText    string
)

var promptsCmd = &cobra.Command{
	Use:     "prompts",
	Aliases: []string{"prompt"},
	Short:   "Manage saved prompts",
	Long: `Saved prompts keep useful questions together with the models they were
written for, free-form tags, a rating from 1 to 5 and a comment. Their text
is indexed next to documents, so chat context can draw on them.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved prompts",
	Args:  cobra.NoArgs,
	RunE:  runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [prompt-id]",
	Short: "Print a saved prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsShow,
}

var promptsAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Save a prompt",
	Example: `  docassist prompts add "Summarise the changelog" --tags release,notes --model mistral --rating 4
  echo "long prompt" | docassist prompts add -`,
	Args: cobra.ExactArgs(1),
	RunE: runPromptsAdd,
}

var promptsUpdateCmd = &cobra.Command{
	Use:   "update [prompt-id]",
	Short: "Change a saved prompt",
	Long:  `Updates only the fields whose flags are given.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsUpdate,
}

var promptsDeleteCmd = &cobra.Command{
	Use:     "delete [prompt-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a saved prompt",
	Args:    cobra.ExactArgs(1),
	RunE:    runPromptsDelete,
}

func init() {
	promptsListCmd.Flags().BoolVar(&promptsJSON, "json", false, "output as JSON")

	for _, c := range []*cobra.Command{promptsAddCmd, promptsUpdateCmd} {
		c.Flags().StringSliceVarP(&promptTags, "tags", "t", nil, "comma-separated tags")
		c.Flags().StringSliceVarP(&promptModels, "model", "m", nil, "model the prompt is for (repeatable)")
		c.Flags().IntVarP(&promptRating, "rating", "r", 0, "rating from 1 to 5")
		c.Flags().StringVarP(&promptComment, "comment", "c", "", "free-form comment")
	}
	promptsUpdateCmd.Flags().StringVar(&promptText, "text", "", "new prompt text")

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsAddCmd)
	promptsCmd.AddCommand(promptsUpdateCmd)
	promptsCmd.AddCommand(promptsDeleteCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}

	prompts, err := promptService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing prompts: %w", err)
	}

	if promptsJSON {
		data, err := json.MarshalIndent(prompts, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal prompts: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(prompts) == 0 {
		cmd.Println("No saved prompts.")
		return nil
	}

	for i := range prompts {
		cmd.Printf("%4d  %s  %s\n", prompts[i].ID, stars(prompts[i].Rating), prompts[i].Title())
	}
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	p, err := promptService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("getting prompt: %w", err)
	}

	cmd.Printf("ID:       %d\n", p.ID)
	if len(p.Models) > 0 {
		cmd.Printf("Models:   %s\n", strings.Join(p.Models, ", "))
	}
	if len(p.Tags) > 0 {
		cmd.Printf("Tags:     %s\n", strings.Join(p.Tags, ", "))
	}
	if p.Rating > 0 {
		cmd.Printf("Rating:   %s\n", stars(p.Rating))
	}
	if p.Comment != "" {
		cmd.Printf("Comment:  %s\n", p.Comment)
	}
	cmd.Printf("Updated:  %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	cmd.Println()
	cmd.Println(p.Text)
	return nil
}

func runPromptsAdd(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}

	text := args[0]
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading prompt: %w", err)
		}
		text = string(data)
	}

	p, err := promptService.Create(cmd.Context(), domain.Prompt{
		Text:    text,
		Tags:    promptTags,
		Models:  promptModels,
		Rating:  promptRating,
		Comment: promptComment,
	})
	if err != nil {
		return fmt.Errorf("saving prompt: %w", err)
	}
	cmd.Printf("Saved prompt %d\n", p.ID)
	return nil
}

func runPromptsUpdate(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	p, err := promptService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("getting prompt: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("text") {
		p.Text = promptText
	}
	if flags.Changed("tags") {
		p.Tags = promptTags
	}
	if flags.Changed("model") {
		p.Models = promptModels
	}
	if flags.Changed("rating") {
		p.Rating = promptRating
	}
	if flags.Changed("comment") {
		p.Comment = promptComment
	}

	if _, err := promptService.Update(cmd.Context(), *p); err != nil {
		return fmt.Errorf("updating prompt: %w", err)
	}
	cmd.Printf("Updated prompt %d\n", id)
	return nil
}

func runPromptsDelete(cmd *cobra.Command, args []string) error {
	if promptService == nil {
		return errors.New("prompt service not configured")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := promptService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("deleting prompt: %w", err)
	}
	cmd.Printf("Deleted prompt %d\n", id)
	return nil
}

// parseID parses a numeric prompt or chat ID.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, s)
	}
	return id, nil
}

// stars renders a rating as filled and empty stars.
func stars(rating int) string {
	rating = max(0, min(rating, domain.MaxRating))
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}
