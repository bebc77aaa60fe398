package domain

// Default retrieval tuning. The relative weights follow the original
// evidence-ranking heuristic: lexical overlap dominates, recency nudges.
const (
	// DefaultTopK is the default number of results returned by Search.
	DefaultTopK = 5

	// DefaultLexicalWeight scales the lexical overlap component.
	DefaultLexicalWeight = 0.85

	// DefaultRecencyWeight scales the recency component. Zero disables it.
	DefaultRecencyWeight = 0.15

	// RecencyHalfLifeDays controls the exponential recency decay
	// exp(-ageDays/RecencyHalfLifeDays).
	RecencyHalfLifeDays = 45.0
)

// RetrievalOptions configures a search.
type RetrievalOptions struct {
	// TopK bounds the number of results. Non-positive means DefaultTopK.
	TopK int
}

// RetrievalHit is one ranked search result. Hits are ordered by Score
// descending with ties broken by chunk ID ascending, so an unchanged store
// always yields an identical ranking.
type RetrievalHit struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Citation traces the chunk to its source document and position.
	Citation Citation

	// Kind is the source document's evidence modality.
	Kind DocumentKind

	// Title is the source document's title.
	Title string

	// Score is the combined relevance score.
	Score float64

	// LexicalScore is the term-overlap component before weighting.
	LexicalScore float64

	// RecencyScore is the recency component before weighting.
	RecencyScore float64

	// Snippet is a whitespace-collapsed excerpt of the chunk text.
	Snippet string
}
