package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docassist/internal/connectors/filesystem"
	"github.com/custodia-labs/docassist/internal/core/domain"
)

var watchSkipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest a directory and keep it indexed",
	Long: `Ingests every .txt and .md file under a directory, then watches it and
ingests files as they are created or modified. Runs until interrupted.

Deleting a file deletes its stored document. Its chunks stay searchable
until the next run rebuilds the index.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "skip-initial", false, "only ingest changes, not existing files")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	ctx := cmd.Context()

	if err := loadIndex(cmd); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	conn := filesystem.New(args[0])
	defer conn.Close()

	if !watchSkipInitial {
		for doc, err := range conn.Scan(ctx) {
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				cmd.PrintErrf("  ! %v\n", err)
				continue
			}
			if err := ingestWatched(cmd, doc); err != nil {
				return err
			}
		}
	}

	changes, err := conn.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])

	for change := range changes {
		switch change.Type {
		case filesystem.ChangeDeleted:
			if err := deleteWatched(cmd, change.Path); err != nil {
				return err
			}
		default:
			if err := ingestWatched(cmd, *change.Document); err != nil {
				return err
			}
		}
	}
	return nil
}

// ingestWatched ingests doc, returning only errors that should stop the watch.
func ingestWatched(cmd *cobra.Command, doc domain.Document) error {
	_, res, err := documentService.Ingest(cmd.Context(), doc)
	if err != nil {
		if errors.Is(err, domain.ErrProvisioning) || cmd.Context().Err() != nil {
			return err
		}
		cmd.PrintErrf("  ! %s: %v\n", doc.Source, err)
		return nil
	}
	cmd.Printf("  + %s: %d/%d chunks indexed\n", doc.Source, res.Indexed, res.Chunks)
	return nil
}

// deleteWatched deletes the stored document for a removed file. Files that
// were never ingested are ignored.
func deleteWatched(cmd *cobra.Command, path string) error {
	err := documentService.Delete(cmd.Context(), filesystem.DocumentID(path))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		if cmd.Context().Err() != nil {
			return err
		}
		cmd.PrintErrf("  ! %s: %v\n", path, err)
		return nil
	}
	cmd.Printf("  - %s deleted\n", path)
	return nil
}
