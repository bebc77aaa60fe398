package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// evidence and eval-query store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at dbPath.
// If dbPath is empty, defaults to ~/.quarry/data/quarry.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".quarry", "data", "quarry.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL keeps readers unblocked during ingestion writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EvidenceStore returns an EvidenceStore interface backed by this store.
func (s *Store) EvidenceStore() driven.EvidenceStore {
	return &evidenceStore{store: s}
}

// EvalQueryStore returns an EvalQueryStore interface backed by this store.
func (s *Store) EvalQueryStore() driven.EvalQueryStore {
	return &evalQueryStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Evidence Store ====================

// evidenceStore implements driven.EvidenceStore.
type evidenceStore struct {
	store *Store
}

var _ driven.EvidenceStore = (*evidenceStore)(nil)

// UpsertDocument inserts or replaces a document with its chunk set in one
// transaction. A matching fingerprint short-circuits without writing.
func (s *evidenceStore) UpsertDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) (domain.UpsertResult, error) {
	var result domain.UpsertResult

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existingFingerprint string
	status := domain.StatusCreated
	row := tx.QueryRowContext(ctx,
		`SELECT fingerprint FROM documents WHERE source_uri = ?`, doc.SourceURI)
	switch err := row.Scan(&existingFingerprint); {
	case err == nil:
		if existingFingerprint == doc.Fingerprint {
			count, err := countChunks(ctx, tx, doc.SourceURI)
			if err != nil {
				return result, err
			}
			result.Status = domain.StatusUnchanged
			result.Chunks.Unchanged = count
			return result, tx.Commit()
		}
		status = domain.StatusUpdated
	case errors.Is(err, sql.ErrNoRows):
		// New document.
	default:
		return result, fmt.Errorf("checking fingerprint: %w", err)
	}

	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (source_uri, kind, title, raw_text, fingerprint, source_ts, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_uri) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			raw_text = excluded.raw_text,
			fingerprint = excluded.fingerprint,
			source_ts = excluded.source_ts,
			ingested_at = excluded.ingested_at
	`, doc.SourceURI, string(doc.Kind), doc.Title, doc.RawText, doc.Fingerprint,
		doc.SourceTimestamp.UTC(), doc.IngestedAt.UTC())
	if err != nil {
		return result, fmt.Errorf("saving document: %w", err)
	}

	diff, err := replaceChunksTx(ctx, tx, doc.SourceURI, chunks)
	if err != nil {
		return result, err
	}

	result.Status = status
	result.Chunks = diff
	return result, tx.Commit()
}

// ReplaceChunks performs the chunk-set diff for an already stored document.
func (s *evidenceStore) ReplaceChunks(ctx context.Context, docURI string, chunks []domain.Chunk) (domain.ChunkDiff, error) {
	var diff domain.ChunkDiff

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return diff, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	row := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM documents WHERE source_uri = ?`, docURI)
	if err := row.Scan(&exists); err != nil {
		return diff, fmt.Errorf("checking document: %w", err)
	}
	if exists == 0 {
		return diff, domain.ErrNotFound
	}

	diff, err = replaceChunksTx(ctx, tx, docURI, chunks)
	if err != nil {
		return diff, err
	}
	return diff, tx.Commit()
}

// replaceChunksTx diffs the incoming chunk set against stored IDs: stale rows
// are deleted, new rows inserted, matching rows left untouched.
func replaceChunksTx(ctx context.Context, tx *sql.Tx, docURI string, chunks []domain.Chunk) (domain.ChunkDiff, error) {
	var diff domain.ChunkDiff

	existing := make(map[string]bool)
	rows, err := tx.QueryContext(ctx,
		`SELECT chunk_id FROM chunks WHERE document_uri = ?`, docURI)
	if err != nil {
		return diff, fmt.Errorf("listing chunk ids: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return diff, fmt.Errorf("scanning chunk id: %w", err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return diff, fmt.Errorf("iterating chunk ids: %w", err)
	}
	rows.Close()

	incoming := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		incoming[c.ID] = true
	}

	for id := range existing {
		if incoming[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chunks WHERE chunk_id = ?`, id); err != nil {
			return diff, fmt.Errorf("deleting stale chunk: %w", err)
		}
		diff.Removed++
	}

	for _, c := range chunks {
		if existing[c.ID] {
			diff.Unchanged++
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (chunk_id, document_uri, position, text, token_count)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, docURI, c.Position, c.Text, c.TokenCount)
		if err != nil {
			return diff, fmt.Errorf("inserting chunk: %w", err)
		}
		diff.Inserted++
	}

	return diff, nil
}

func countChunks(ctx context.Context, tx *sql.Tx, docURI string) (int, error) {
	var count int
	row := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM chunks WHERE document_uri = ?`, docURI)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// GetDocument retrieves a document by SourceURI.
func (s *evidenceStore) GetDocument(ctx context.Context, sourceURI string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT source_uri, kind, title, raw_text, fingerprint, source_ts, ingested_at
		FROM documents WHERE source_uri = ?
	`, sourceURI)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all documents ordered by SourceURI.
func (s *evidenceStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_uri, kind, title, raw_text, fingerprint, source_ts, ingested_at
		FROM documents ORDER BY source_uri
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// GetChunk retrieves a chunk by ID.
func (s *evidenceStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT chunk_id, document_uri, position, text, token_count
		FROM chunks WHERE chunk_id = ?
	`, id)

	var c domain.Chunk
	if err := row.Scan(&c.ID, &c.DocumentURI, &c.Position, &c.Text, &c.TokenCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	return &c, nil
}

// ListChunks returns every stored chunk ordered by (DocumentURI, Position).
func (s *evidenceStore) ListChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chunk_id, document_uri, position, text, token_count
		FROM chunks ORDER BY document_uri, position
	`)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentURI, &c.Position, &c.Text, &c.TokenCount); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// GetChunkIDs returns the stored chunk IDs for a document.
func (s *evidenceStore) GetChunkIDs(ctx context.Context, docURI string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chunk_id FROM chunks WHERE document_uri = ? ORDER BY position
	`, docURI)
	if err != nil {
		return nil, fmt.Errorf("listing chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteDocument removes a document; its chunks go with it via the cascade.
func (s *evidenceStore) DeleteDocument(ctx context.Context, sourceURI string) error {
	_, err := s.store.db.ExecContext(ctx,
		`DELETE FROM documents WHERE source_uri = ?`, sourceURI)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocumentURIsByPrefix returns SourceURIs starting with prefix.
func (s *evidenceStore) ListDocumentURIsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_uri FROM documents
		WHERE substr(source_uri, 1, length(?)) = ?
		ORDER BY source_uri
	`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing documents by prefix: %w", err)
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("scanning uri: %w", err)
		}
		uris = append(uris, uri)
	}
	return uris, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var kind string
	var sourceTS, ingestedAt sql.NullTime
	err := row.Scan(&doc.SourceURI, &kind, &doc.Title, &doc.RawText,
		&doc.Fingerprint, &sourceTS, &ingestedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Kind = domain.DocumentKind(kind)
	if sourceTS.Valid {
		doc.SourceTimestamp = sourceTS.Time
	}
	if ingestedAt.Valid {
		doc.IngestedAt = ingestedAt.Time
	}
	return &doc, nil
}

// ==================== Eval Query Store ====================

// evalQueryStore implements driven.EvalQueryStore.
type evalQueryStore struct {
	store *Store
}

var _ driven.EvalQueryStore = (*evalQueryStore)(nil)

// UpsertEvalQuery inserts or replaces a query keyed by (Namespace, QueryText).
func (s *evalQueryStore) UpsertEvalQuery(ctx context.Context, q domain.EvalQuery) (bool, error) {
	if strings.TrimSpace(q.QueryText) == "" {
		return false, fmt.Errorf("empty query text: %w", domain.ErrInvalidInput)
	}

	expectedJSON, err := json.Marshal(q.ExpectedSourceURIs)
	if err != nil {
		return false, fmt.Errorf("marshalling expected uris: %w", err)
	}

	var exists int
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM eval_queries WHERE namespace = ? AND query_text = ?
	`, q.Namespace, q.QueryText)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("checking eval query: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO eval_queries (namespace, query_text, expected_source_uris, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, query_text) DO UPDATE SET
			expected_source_uris = excluded.expected_source_uris
	`, q.Namespace, q.QueryText, string(expectedJSON), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("saving eval query: %w", err)
	}

	return exists == 0, nil
}

// ListEvalQueries returns queries whose namespace starts with prefix.
func (s *evalQueryStore) ListEvalQueries(ctx context.Context, namespacePrefix string) ([]domain.EvalQuery, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT namespace, query_text, expected_source_uris
		FROM eval_queries
		WHERE substr(namespace, 1, length(?)) = ?
		ORDER BY namespace, query_text
	`, namespacePrefix, namespacePrefix)
	if err != nil {
		return nil, fmt.Errorf("listing eval queries: %w", err)
	}
	defer rows.Close()

	var queries []domain.EvalQuery
	for rows.Next() {
		var q domain.EvalQuery
		var expectedJSON string
		if err := rows.Scan(&q.Namespace, &q.QueryText, &expectedJSON); err != nil {
			return nil, fmt.Errorf("scanning eval query: %w", err)
		}
		q.ExpectedSourceURIs = domain.ParseExpectedSourceURIs(expectedJSON)
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// DeleteEvalQueries removes every query in the exact namespace.
func (s *evalQueryStore) DeleteEvalQueries(ctx context.Context, namespace string) (int, error) {
	res, err := s.store.db.ExecContext(ctx,
		`DELETE FROM eval_queries WHERE namespace = ?`, namespace)
	if err != nil {
		return 0, fmt.Errorf("deleting eval queries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}
	return int(n), nil
}
