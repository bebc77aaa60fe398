package driven

import (
	"context"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// EvidenceStore persists documents and their content-addressed chunks.
// Backed by SQLite; an in-memory implementation exists for tests.
//
// All writes for a single document are atomic: a failed upsert leaves the
// prior document and chunk rows intact and surfaces the error.
type EvidenceStore interface {
	// UpsertDocument inserts or replaces a document by SourceURI together
	// with its chunk set, in one transaction. When the stored fingerprint
	// matches the incoming document, nothing is written and the result
	// reports StatusUnchanged with the existing chunks as Unchanged.
	// Otherwise the chunk set is replaced as a diff against existing
	// chunk IDs: stale rows removed, new rows inserted, matching rows
	// left untouched.
	UpsertDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) (domain.UpsertResult, error)

	// ReplaceChunks performs the chunk-set diff for a document that is
	// already stored.
	ReplaceChunks(ctx context.Context, docURI string, chunks []domain.Chunk) (domain.ChunkDiff, error)

	// GetDocument retrieves a document by SourceURI.
	GetDocument(ctx context.Context, sourceURI string) (*domain.Document, error)

	// ListDocuments returns all documents, ordered by SourceURI.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns every stored chunk, ordered by
	// (DocumentURI, Position).
	ListChunks(ctx context.Context) ([]domain.Chunk, error)

	// GetChunkIDs returns the stored chunk IDs for a document.
	GetChunkIDs(ctx context.Context, docURI string) ([]string, error)

	// DeleteDocument removes a document and its chunks. Deleting a
	// missing document is not an error.
	DeleteDocument(ctx context.Context, sourceURI string) error

	// ListDocumentURIsByPrefix returns SourceURIs starting with prefix.
	// Used by the sample-data purge.
	ListDocumentURIsByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// EvalQueryStore persists labelled evaluation queries.
type EvalQueryStore interface {
	// UpsertEvalQuery inserts or replaces a query keyed by
	// (Namespace, QueryText). Returns true when a new row was created.
	UpsertEvalQuery(ctx context.Context, q domain.EvalQuery) (bool, error)

	// ListEvalQueries returns queries whose namespace starts with prefix,
	// ordered by (Namespace, QueryText). An empty prefix lists all.
	ListEvalQueries(ctx context.Context, namespacePrefix string) ([]domain.EvalQuery, error)

	// DeleteEvalQueries removes every query in the exact namespace and
	// returns the number of rows deleted.
	DeleteEvalQueries(ctx context.Context, namespace string) (int, error)
}
