package driving

import (
	"context"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// IngestOptions configures a git ingestion run.
type IngestOptions struct {
	// MaxCommits bounds how far back the commit walk goes.
	// Non-positive means the configured default.
	MaxCommits int

	// TargetAuthorName and TargetAuthorEmail, when both set, restrict
	// ingestion to commits by that author. Commits by other authors are
	// skipped, and any previously ingested document for them is removed.
	TargetAuthorName  string
	TargetAuthorEmail string
}

// IngestService turns raw evidence into stored, chunked documents.
// Ingestion is idempotent: unchanged input produces zero store writes.
type IngestService interface {
	// IngestNotes ingests every markdown note under vaultPath.
	IngestNotes(ctx context.Context, vaultPath string) (*domain.IngestReport, error)

	// IngestNote ingests a single markdown note file.
	IngestNote(ctx context.Context, path string) (*domain.IngestReport, error)

	// IngestGit ingests commit history (message + diff) from repoPath.
	IngestGit(ctx context.Context, repoPath string, opts IngestOptions) (*domain.IngestReport, error)
}
