package driven

// ChunkSpan is one split of a document's text, before identity assignment.
type ChunkSpan struct {
	// Text is the verbatim chunk text.
	Text string

	// TokenCount is the number of word tokens in Text.
	TokenCount int
}

// Chunker splits raw text into bounded, ordered spans.
//
// Implementations must be deterministic: identical input always yields an
// identical sequence, regardless of process or call order. This is the
// foundation of idempotent re-ingestion.
type Chunker interface {
	// Split returns the ordered chunk spans for text. Empty or
	// whitespace-only text yields no spans.
	Split(text string) []ChunkSpan
}
