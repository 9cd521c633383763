package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docassist/internal/connectors/filesystem"
	"github.com/custodia-labs/docassist/internal/core/domain"
)

var (
	ingestText  string
	ingestTitle string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to the index",
	Long: `Chunks, embeds and stores documents so they can be searched.

Pass file paths, or --text to ingest a literal string. Directories are
scanned for .txt and .md files.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "ingest this text instead of files")
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "title for --text input")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if ingestText == "" && len(args) == 0 {
		return errors.New("provide file paths or --text")
	}

	var docs []domain.Document
	if ingestText != "" {
		docs = append(docs, domain.Document{
			Title:   ingestTitle,
			Kind:    domain.KindText,
			Content: ingestText,
		})
	}

	for _, path := range args {
		found, err := collectDocuments(cmd, path)
		if err != nil {
			return err
		}
		docs = append(docs, found...)
	}

	var failed int
	for _, doc := range docs {
		stored, res, err := documentService.Ingest(cmd.Context(), doc)
		if err != nil {
			if errors.Is(err, domain.ErrProvisioning) || cmd.Context().Err() != nil {
				return err
			}
			cmd.PrintErrf("  ! %s: %v\n", displayName(doc), err)
			failed++
			continue
		}
		cmd.Printf("  + %s: %d/%d chunks indexed\n", displayName(*stored), res.Indexed, res.Chunks)
		if res.Partial() {
			cmd.Printf("    %d chunks skipped (embedding failed)\n", res.Skipped)
		}
	}

	cmd.Printf("Ingested %d of %d documents\n", len(docs)-failed, len(docs))
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

func collectDocuments(cmd *cobra.Command, path string) ([]domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		doc, err := filesystem.ReadDocument(path)
		if err != nil {
			return nil, err
		}
		return []domain.Document{doc}, nil
	}

	var docs []domain.Document
	for doc, err := range filesystem.New(path).Scan(cmd.Context()) {
		if err != nil {
			cmd.PrintErrf("  ! %v\n", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func displayName(doc domain.Document) string {
	switch {
	case doc.Title != "":
		return doc.Title
	case doc.Source != "":
		return doc.Source
	default:
		return snippet(strings.TrimSpace(doc.Content), 40)
	}
}
