package driven

import (
	"context"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// NoteSource walks a vault directory and yields raw markdown notes.
// The traversal order must be stable (sorted by path).
type NoteSource interface {
	// Notes returns every markdown file under root.
	Notes(ctx context.Context, root string) ([]domain.NoteFile, error)

	// Note reads a single markdown file.
	Note(ctx context.Context, path string) (domain.NoteFile, error)
}

// CommitSource reads commit history from a local git repository.
type CommitSource interface {
	// Commits returns up to maxCommits non-merge commits, newest first,
	// each with its patch text against the first parent.
	Commits(ctx context.Context, repoPath string, maxCommits int) ([]domain.Commit, error)
}

// NoteWatcher observes a vault directory and reports changed markdown
// files until the context is cancelled.
type NoteWatcher interface {
	// Watch sends the paths of created or modified markdown files on the
	// returned channel. The channel is closed when ctx is done.
	Watch(ctx context.Context, root string) (<-chan string, error)
}
