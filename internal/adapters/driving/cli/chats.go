package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatsJSON bool

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Browse saved conversations",
	Long:  `Conversations are saved by running chat with --save.`,
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	Args:  cobra.NoArgs,
	RunE:  runChatsList,
}

var chatsShowCmd = &cobra.Command{
	Use:   "show [chat-id]",
	Short: "Print a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsShow,
}

var chatsDeleteCmd = &cobra.Command{
	Use:     "delete [chat-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a saved conversation",
	Args:    cobra.ExactArgs(1),
	RunE:    runChatsDelete,
}

func init() {
	chatsListCmd.Flags().BoolVar(&chatsJSON, "json", false, "output as JSON")
	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsShowCmd)
	chatsCmd.AddCommand(chatsDeleteCmd)
	rootCmd.AddCommand(chatsCmd)
}

func runChatsList(cmd *cobra.Command, _ []string) error {
	if chatHistory == nil {
		return errors.New("chat history not configured")
	}

	chats, err := chatHistory.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing chats: %w", err)
	}

	if chatsJSON {
		data, err := json.MarshalIndent(chats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal chats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(chats) == 0 {
		cmd.Println("No saved chats.")
		return nil
	}

	for i := range chats {
		cmd.Printf("%4d  %s  %-12s  %s\n", chats[i].ID,
			chats[i].SavedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(chats[i].Models, ","), chats[i].Title)
	}
	return nil
}

func runChatsShow(cmd *cobra.Command, args []string) error {
	if chatHistory == nil {
		return errors.New("chat history not configured")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	chat, err := chatHistory.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("getting chat: %w", err)
	}

	cmd.Printf("ID:      %d\n", chat.ID)
	cmd.Printf("Title:   %s\n", chat.Title)
	if len(chat.Models) > 0 {
		cmd.Printf("Models:  %s\n", strings.Join(chat.Models, ", "))
	}
	cmd.Printf("Saved:   %s\n", chat.SavedAt.Local().Format("2006-01-02 15:04"))
	for _, msg := range chat.Messages {
		cmd.Println()
		cmd.Printf("[%s]\n%s\n", msg.Role, msg.Content)
	}
	return nil
}

func runChatsDelete(cmd *cobra.Command, args []string) error {
	if chatHistory == nil {
		return errors.New("chat history not configured")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := chatHistory.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	cmd.Printf("Deleted chat %d\n", id)
	return nil
}
