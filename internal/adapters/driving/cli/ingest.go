package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
	"github.com/quarry-labs/quarry-cli/internal/sources/notes"
)

var (
	ingestWatch      bool
	ingestMaxCommits int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest evidence into the store",
}

var ingestNotesCmd = &cobra.Command{
	Use:   "notes [vault-dir]",
	Short: "Ingest markdown notes from a vault directory",
	Long: `Walks the vault for markdown files and ingests each one as a
chunked document. Re-running over an unchanged vault writes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestNotes,
}

var ingestGitCmd = &cobra.Command{
	Use:   "git [repo-dir]",
	Short: "Ingest commit history from a git repository",
	Long: `Walks first-parent history from HEAD and ingests each commit's
message and diff as one document. Merge commits are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestGit,
}

func init() {
	ingestNotesCmd.Flags().BoolVar(&ingestWatch, "watch", false,
		"keep watching the vault and re-ingest notes as they change")
	ingestGitCmd.Flags().IntVar(&ingestMaxCommits, "max-commits", 0,
		"walk at most this many commits (0 = configured default)")
	ingestCmd.AddCommand(ingestNotesCmd, ingestGitCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestNotes(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		if err := ensureServices(); err != nil {
			return err
		}
	}

	report, err := ingestService.IngestNotes(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printIngestReport(cmd, report)

	if !ingestWatch {
		return nil
	}
	return watchNotes(cmd, args[0])
}

// watchNotes re-ingests individual notes as the watcher reports changes,
// until interrupted.
func watchNotes(cmd *cobra.Command, root string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := notes.NewWatcher().Watch(ctx, root)
	if err != nil {
		return err
	}

	cmd.Printf("watching %s (ctrl-c to stop)\n", root)
	for path := range events {
		report, err := ingestService.IngestNote(ctx, path)
		if err != nil {
			logger.Warn("re-ingesting %s: %v", path, err)
			continue
		}
		printIngestReport(cmd, report)
	}
	return nil
}

func runIngestGit(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		if err := ensureServices(); err != nil {
			return err
		}
	}

	report, err := ingestService.IngestGit(cmd.Context(), args[0], driving.IngestOptions{
		MaxCommits:        ingestMaxCommits,
		TargetAuthorName:  settings.Git.TargetAuthorName,
		TargetAuthorEmail: settings.Git.TargetAuthorEmail,
	})
	if err != nil {
		return err
	}
	printIngestReport(cmd, report)
	return nil
}

func printIngestReport(cmd *cobra.Command, r *domain.IngestReport) {
	cmd.Printf("%s ingest: %d created, %d updated, %d unchanged\n",
		r.Kind, r.DocsCreated, r.DocsUpdated, r.DocsUnchanged)
	cmd.Printf("chunks: %d inserted, %d removed, %d unchanged\n",
		r.Chunks.Inserted, r.Chunks.Removed, r.Chunks.Unchanged)
	for _, s := range r.Skipped {
		cmd.Printf("skipped %s: %s\n", s.URI, s.Reason)
	}
}
