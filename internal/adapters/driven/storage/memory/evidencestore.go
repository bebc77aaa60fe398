// Package memory provides in-memory implementations of the storage ports,
// mirroring the sqlite adapter's semantics. Used by tests and as a reference
// for the upsert and chunk-diff behaviour.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure EvidenceStore implements the interface.
var _ driven.EvidenceStore = (*EvidenceStore)(nil)

// EvidenceStore is an in-memory implementation of driven.EvidenceStore.
// It mirrors the SQLite store's upsert semantics so service tests exercise
// the same behaviour.
type EvidenceStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewEvidenceStore creates a new in-memory evidence store.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// UpsertDocument stores or updates a document with its chunk set.
func (s *EvidenceStore) UpsertDocument(_ context.Context, doc domain.Document, chunks []domain.Chunk) (domain.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result domain.UpsertResult

	existing, found := s.documents[doc.SourceURI]
	if found && existing.Fingerprint == doc.Fingerprint {
		result.Status = domain.StatusUnchanged
		result.Chunks.Unchanged = len(s.chunks[doc.SourceURI])
		return result, nil
	}

	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}
	s.documents[doc.SourceURI] = doc
	result.Chunks = s.replaceChunksLocked(doc.SourceURI, chunks)

	if found {
		result.Status = domain.StatusUpdated
	} else {
		result.Status = domain.StatusCreated
	}
	return result, nil
}

// ReplaceChunks performs the chunk-set diff for an already stored document.
func (s *EvidenceStore) ReplaceChunks(_ context.Context, docURI string, chunks []domain.Chunk) (domain.ChunkDiff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[docURI]; !ok {
		return domain.ChunkDiff{}, domain.ErrNotFound
	}
	return s.replaceChunksLocked(docURI, chunks), nil
}

func (s *EvidenceStore) replaceChunksLocked(docURI string, chunks []domain.Chunk) domain.ChunkDiff {
	var diff domain.ChunkDiff

	existing := make(map[string]bool, len(s.chunks[docURI]))
	for _, c := range s.chunks[docURI] {
		existing[c.ID] = true
	}
	incoming := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		incoming[c.ID] = true
	}

	for id := range existing {
		if !incoming[id] {
			diff.Removed++
		}
	}
	for _, c := range chunks {
		if existing[c.ID] {
			diff.Unchanged++
		} else {
			diff.Inserted++
		}
	}

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	s.chunks[docURI] = stored

	return diff
}

// GetDocument retrieves a document by SourceURI.
func (s *EvidenceStore) GetDocument(_ context.Context, sourceURI string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[sourceURI]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents ordered by SourceURI.
func (s *EvidenceStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []domain.Document
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].SourceURI < docs[j].SourceURI
	})
	return docs, nil
}

// GetChunk retrieves a chunk by ID.
func (s *EvidenceStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, c := range chunks {
			if c.ID == id {
				return &c, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// ListChunks returns every stored chunk ordered by (DocumentURI, Position).
func (s *EvidenceStore) ListChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.Chunk
	for _, chunks := range s.chunks {
		all = append(all, chunks...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DocumentURI != all[j].DocumentURI {
			return all[i].DocumentURI < all[j].DocumentURI
		}
		return all[i].Position < all[j].Position
	})
	return all, nil
}

// GetChunkIDs returns the stored chunk IDs for a document in position order.
func (s *EvidenceStore) GetChunkIDs(_ context.Context, docURI string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.chunks[docURI]
	ordered := make([]domain.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	var ids []string
	for _, c := range ordered {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// DeleteDocument removes a document and its chunks.
func (s *EvidenceStore) DeleteDocument(_ context.Context, sourceURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, sourceURI)
	delete(s.chunks, sourceURI)
	return nil
}

// ListDocumentURIsByPrefix returns SourceURIs starting with prefix.
func (s *EvidenceStore) ListDocumentURIsByPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var uris []string
	for uri := range s.documents {
		if strings.HasPrefix(uri, prefix) {
			uris = append(uris, uri)
		}
	}
	sort.Strings(uris)
	return uris, nil
}
