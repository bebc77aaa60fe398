package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns raw notes and commits into stored, chunked documents.
type IngestService struct {
	store      driven.EvidenceStore
	chunker    driven.Chunker
	notes      driven.NoteSource
	commits    driven.CommitSource
	noteNorm   driven.NoteNormaliser
	commitNorm driven.CommitNormaliser

	defaultMaxCommits int
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store driven.EvidenceStore,
	chunker driven.Chunker,
	notes driven.NoteSource,
	commits driven.CommitSource,
	noteNorm driven.NoteNormaliser,
	commitNorm driven.CommitNormaliser,
	defaultMaxCommits int,
) *IngestService {
	return &IngestService{
		store:             store,
		chunker:           chunker,
		notes:             notes,
		commits:           commits,
		noteNorm:          noteNorm,
		commitNorm:        commitNorm,
		defaultMaxCommits: defaultMaxCommits,
	}
}

// IngestNotes ingests every markdown note under vaultPath. Items that fail
// normalisation are skipped and reported; the batch continues.
func (s *IngestService) IngestNotes(ctx context.Context, vaultPath string) (*domain.IngestReport, error) {
	report := s.newReport(domain.KindNote)
	logger.Section("Note Ingestion")
	logger.Debug("Run %s: vault=%s", report.RunID, vaultPath)

	files, err := s.notes.Notes(ctx, vaultPath)
	if err != nil {
		return nil, fmt.Errorf("walking vault: %w", err)
	}
	logger.Debug("Found %d markdown files", len(files))

	for _, nf := range files {
		if err := s.ingestNoteFile(ctx, nf, report); err != nil {
			return nil, err
		}
	}

	logger.Info("Run %s: created=%d updated=%d unchanged=%d skipped=%d",
		report.RunID, report.DocsCreated, report.DocsUpdated, report.DocsUnchanged, len(report.Skipped))
	return report, nil
}

// IngestNote ingests a single markdown note file.
func (s *IngestService) IngestNote(ctx context.Context, path string) (*domain.IngestReport, error) {
	report := s.newReport(domain.KindNote)

	nf, err := s.notes.Note(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.ingestNoteFile(ctx, nf, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *IngestService) ingestNoteFile(ctx context.Context, nf domain.NoteFile, report *domain.IngestReport) error {
	doc, err := s.noteNorm.Normalise(nf)
	if err != nil {
		logger.Warn("Skipping %s: %v", nf.Path, err)
		report.Skip(nf.Path, err.Error())
		return nil
	}
	return s.upsert(ctx, doc, report)
}

// IngestGit ingests commit history (message + diff) from repoPath.
func (s *IngestService) IngestGit(ctx context.Context, repoPath string, opts driving.IngestOptions) (*domain.IngestReport, error) {
	report := s.newReport(domain.KindCommit)
	logger.Section("Git Ingestion")

	maxCommits := opts.MaxCommits
	if maxCommits <= 0 {
		maxCommits = s.defaultMaxCommits
	}
	logger.Debug("Run %s: repo=%s max_commits=%d", report.RunID, repoPath, maxCommits)

	commits, err := s.commits.Commits(ctx, repoPath, maxCommits)
	if err != nil {
		return nil, err
	}
	logger.Debug("Found %d commits", len(commits))

	filterAuthor := opts.TargetAuthorName != "" && opts.TargetAuthorEmail != ""
	for _, c := range commits {
		if filterAuthor && (c.AuthorName != opts.TargetAuthorName || c.AuthorEmail != opts.TargetAuthorEmail) {
			// A commit that no longer matches the filter must not linger
			// in the store from an earlier, unfiltered run.
			if err := s.store.DeleteDocument(ctx, c.SourceURI()); err != nil {
				return nil, fmt.Errorf("removing filtered commit: %w", err)
			}
			continue
		}

		doc, err := s.commitNorm.Normalise(c)
		if err != nil {
			logger.Warn("Skipping %s: %v", c.SourceURI(), err)
			report.Skip(c.SourceURI(), err.Error())
			continue
		}
		if err := s.upsert(ctx, doc, report); err != nil {
			return nil, err
		}
	}

	logger.Info("Run %s: created=%d updated=%d unchanged=%d skipped=%d",
		report.RunID, report.DocsCreated, report.DocsUpdated, report.DocsUnchanged, len(report.Skipped))
	return report, nil
}

// upsert chunks the document and writes it with its chunk set. A chunk ID
// collision is a structural failure and aborts the run: a store with
// ambiguous chunk identities cannot produce trustworthy citations.
func (s *IngestService) upsert(ctx context.Context, doc domain.Document, report *domain.IngestReport) error {
	chunks, err := s.chunkDocument(doc)
	if err != nil {
		return err
	}

	res, err := s.store.UpsertDocument(ctx, doc, chunks)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", doc.SourceURI, err)
	}

	logger.Debug("%s: %s (+%d -%d =%d)", doc.SourceURI, res.Status,
		res.Chunks.Inserted, res.Chunks.Removed, res.Chunks.Unchanged)
	report.Record(res)
	return nil
}

// chunkDocument splits the raw text and assigns content-addressed IDs.
func (s *IngestService) chunkDocument(doc domain.Document) ([]domain.Chunk, error) {
	spans := s.chunker.Split(doc.RawText)

	chunks := make([]domain.Chunk, 0, len(spans))
	for pos, span := range spans {
		chunks = append(chunks, domain.Chunk{
			ID:          domain.ChunkID(doc.SourceURI, pos, span.Text),
			DocumentURI: doc.SourceURI,
			Text:        span.Text,
			Position:    pos,
			TokenCount:  span.TokenCount,
		})
	}
	if err := checkChunkIDs(doc.SourceURI, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// checkChunkIDs rejects duplicate chunk IDs within one document. The hash
// covers the position, so a duplicate means identity assignment is broken
// and the whole run must fail rather than write ambiguous citations.
func checkChunkIDs(docURI string, chunks []domain.Chunk) error {
	seen := make(map[string]int, len(chunks))
	for _, c := range chunks {
		if prev, dup := seen[c.ID]; dup {
			return fmt.Errorf("positions %d and %d of %s: %w",
				prev, c.Position, docURI, domain.ErrChunkIDCollision)
		}
		seen[c.ID] = c.Position
	}
	return nil
}

func (s *IngestService) newReport(kind domain.DocumentKind) *domain.IngestReport {
	return &domain.IngestReport{
		RunID: uuid.New().String(),
		Kind:  kind,
	}
}
