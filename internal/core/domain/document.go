package domain

import "time"

// DocumentKind distinguishes the evidence modalities Quarry ingests.
type DocumentKind string

const (
	// KindNote is a markdown note from a vault directory.
	KindNote DocumentKind = "note"

	// KindCommit is a git commit (message plus diff).
	KindCommit DocumentKind = "commit"
)

// Valid reports whether the kind is one Quarry knows about.
func (k DocumentKind) Valid() bool {
	return k == KindNote || k == KindCommit
}

// Document represents one ingested evidence unit: a note file or a commit.
// It is the canonical representation after normalisation.
type Document struct {
	// SourceURI is the stable, human-meaningful identity of the document:
	// an absolute file path for notes, or "<repo_path>@<commit_hash>" for
	// commits. Re-ingesting the same SourceURI updates, never duplicates.
	SourceURI string

	// Kind is the evidence modality.
	Kind DocumentKind

	// Title is the human-readable title (first heading or commit subject).
	Title string

	// RawText is the full evidence text before chunking.
	RawText string

	// Fingerprint is the hex SHA-256 of RawText. Matching fingerprints
	// make re-ingestion a no-op at the chunk level.
	Fingerprint string

	// SourceTimestamp is when the evidence itself was authored
	// (file mtime, commit time). Used for recency scoring.
	SourceTimestamp time.Time

	// IngestedAt is when the document was last written to the store.
	IngestedAt time.Time
}

// Chunk is a bounded span of a Document's text and the unit of retrieval.
// Chunks are content-addressed: unchanged content always yields the same ID.
type Chunk struct {
	// ID is the hex SHA-256 over (source URI, position, normalised text).
	// See ChunkID for the exact identity contract.
	ID string

	// DocumentURI back-references the owning Document's SourceURI.
	DocumentURI string

	// Text is the stored chunk text, verbatim (not normalised).
	Text string

	// Position is the ordinal of this chunk within the document.
	Position int

	// TokenCount is the number of word tokens in Text.
	TokenCount int
}

// Citation traces a retrieved chunk back to its origin.
type Citation struct {
	// SourceURI is the owning Document's URI.
	SourceURI string `json:"source_uri"`

	// Position is the chunk's ordinal within the document.
	Position int `json:"position"`
}
