package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
)

// Ensure SeedService implements the interface.
var _ driving.SeedService = (*SeedService)(nil)

// SeedService materialises the sample workspace, ingests it and registers
// the sample eval queries. Re-seeding an unchanged workspace writes nothing
// because ingestion is idempotent.
type SeedService struct {
	workspace driven.SampleWorkspace
	evidence  driven.EvidenceStore
	queries   driven.EvalQueryStore
	ingest    driving.IngestService
}

// NewSeedService creates a new seed service.
func NewSeedService(
	workspace driven.SampleWorkspace,
	evidence driven.EvidenceStore,
	queries driven.EvalQueryStore,
	ingest driving.IngestService,
) *SeedService {
	return &SeedService{
		workspace: workspace,
		evidence:  evidence,
		queries:   queries,
		ingest:    ingest,
	}
}

// Seed builds (or reuses) the sample workspace under workspaceDir and
// ingests it. force rebuilds the workspace from scratch.
func (s *SeedService) Seed(ctx context.Context, workspaceDir string, force bool) (*driving.SeedResult, error) {
	logger.Section("Sample Seed")

	absDir, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace dir: %w", err)
	}

	layout, err := s.workspace.Build(ctx, absDir, force)
	if err != nil {
		return nil, fmt.Errorf("building sample workspace: %w", err)
	}
	logger.Debug("Workspace: vault=%s repo=%s", layout.VaultDir, layout.RepoDir)

	noteReport, err := s.ingest.IngestNotes(ctx, layout.VaultDir)
	if err != nil {
		return nil, fmt.Errorf("ingesting sample notes: %w", err)
	}
	gitReport, err := s.ingest.IngestGit(ctx, layout.RepoDir, driving.IngestOptions{})
	if err != nil {
		return nil, fmt.Errorf("ingesting sample commits: %w", err)
	}

	loaded := 0
	for _, q := range layout.EvalQueries {
		if _, err := s.queries.UpsertEvalQuery(ctx, q); err != nil {
			return nil, fmt.Errorf("saving sample query %q: %w", q.QueryText, err)
		}
		loaded++
	}

	return &driving.SeedResult{
		WorkspaceDir:       absDir,
		VaultDir:           layout.VaultDir,
		RepoDir:            layout.RepoDir,
		NoteChunksInserted: noteReport.Chunks.Inserted,
		GitChunksInserted:  gitReport.Chunks.Inserted,
		EvalQueriesLoaded:  loaded,
	}, nil
}

// Purge removes sample documents and eval queries from the store. The
// workspace directory on disk is left alone.
func (s *SeedService) Purge(ctx context.Context, workspaceDir string) (*driving.PurgeResult, error) {
	logger.Section("Sample Purge")

	absDir, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace dir: %w", err)
	}

	uris, err := s.evidence.ListDocumentURIsByPrefix(ctx, absDir)
	if err != nil {
		return nil, fmt.Errorf("listing sample documents: %w", err)
	}
	for _, uri := range uris {
		if err := s.evidence.DeleteDocument(ctx, uri); err != nil {
			return nil, fmt.Errorf("deleting %s: %w", uri, err)
		}
	}
	logger.Debug("Deleted %d sample documents", len(uris))

	deleted, err := s.queries.DeleteEvalQueries(ctx, domain.SampleNamespace)
	if err != nil {
		return nil, fmt.Errorf("deleting sample queries: %w", err)
	}
	logger.Debug("Deleted %d sample eval queries", deleted)

	return &driving.PurgeResult{
		DocumentsDeleted:   len(uris),
		EvalQueriesDeleted: deleted,
	}, nil
}
