package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/storage/memory"
	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

func addDoc(t *testing.T, store *memory.EvidenceStore, uri, text string, ts time.Time) {
	t.Helper()
	doc := domain.Document{
		SourceURI:       uri,
		Kind:            domain.KindNote,
		Title:           uri,
		RawText:         text,
		Fingerprint:     domain.Fingerprint(text),
		SourceTimestamp: ts,
	}
	chunks := []domain.Chunk{{
		ID:          domain.ChunkID(uri, 0, text),
		DocumentURI: uri,
		Text:        text,
		Position:    0,
		TokenCount:  len(domain.Tokenize(text)),
	}}
	_, err := store.UpsertDocument(context.Background(), doc, chunks)
	require.NoError(t, err)
}

func TestSearchExcludesZeroOverlap(t *testing.T) {
	store := memory.NewEvidenceStore()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	addDoc(t, store, "/v/parser.md", "the parser bounds bug is an off by one error", ts)
	addDoc(t, store, "/v/groceries.md", "milk eggs flour and coffee beans", ts)

	hits, err := NewSearchService(store).Search(context.Background(), "parser bounds bug", domain.RetrievalOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "/v/parser.md", hits[0].Citation.SourceURI)
	assert.Greater(t, hits[0].LexicalScore, 0.0)
}

func TestSearchDeterministic(t *testing.T) {
	store := memory.NewEvidenceStore()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	addDoc(t, store, "/v/a.md", "parser bounds and tokens", ts)
	addDoc(t, store, "/v/b.md", "parser error handling notes", ts.AddDate(0, 0, 3))
	addDoc(t, store, "/v/c.md", "bounds checking in the scanner", ts.AddDate(0, 0, 7))

	svc := NewSearchService(store)
	first, err := svc.Search(context.Background(), "parser bounds", domain.RetrievalOptions{})
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "parser bounds", domain.RetrievalOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchTopKBound(t *testing.T) {
	store := memory.NewEvidenceStore()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, uri := range []string{"/v/1.md", "/v/2.md", "/v/3.md", "/v/4.md", "/v/5.md", "/v/6.md", "/v/7.md"} {
		addDoc(t, store, uri, "parser notes for "+uri, ts)
	}

	hits, err := NewSearchService(store).Search(context.Background(), "parser", domain.RetrievalOptions{TopK: 3})
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	// Non-positive TopK falls back to the default.
	hits, err = NewSearchService(store).Search(context.Background(), "parser", domain.RetrievalOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, domain.DefaultTopK)
}

func TestSearchTieBreakByChunkID(t *testing.T) {
	store := memory.NewEvidenceStore()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	addDoc(t, store, "/v/x.md", "identical tie break text", ts)
	addDoc(t, store, "/v/y.md", "identical tie break text", ts)

	hits, err := NewSearchService(store).Search(context.Background(), "tie break", domain.RetrievalOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Less(t, hits[0].Chunk.ID, hits[1].Chunk.ID)
}

func TestSearchRecencyBreaksLexicalTies(t *testing.T) {
	store := memory.NewEvidenceStore()
	newer := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	older := newer.AddDate(0, -6, 0)
	addDoc(t, store, "/v/old.md", "quarterly planning retrospective", older)
	addDoc(t, store, "/v/new.md", "quarterly planning retrospective", newer)

	hits, err := NewSearchService(store).Search(context.Background(), "quarterly planning", domain.RetrievalOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "/v/new.md", hits[0].Citation.SourceURI)
	assert.Greater(t, hits[0].RecencyScore, hits[1].RecencyScore)
	assert.Equal(t, hits[0].LexicalScore, hits[1].LexicalScore)
}

func TestSearchEmptyQuery(t *testing.T) {
	store := memory.NewEvidenceStore()
	addDoc(t, store, "/v/a.md", "some content", time.Now())

	svc := NewSearchService(store)
	for _, query := range []string{"", "   ", "!!! ???"} {
		hits, err := svc.Search(context.Background(), query, domain.RetrievalOptions{})
		require.NoError(t, err)
		assert.Empty(t, hits)
	}
}

func TestSearchEmptyStore(t *testing.T) {
	hits, err := NewSearchService(memory.NewEvidenceStore()).
		Search(context.Background(), "anything", domain.RetrievalOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchSnippetCollapsed(t *testing.T) {
	store := memory.NewEvidenceStore()
	addDoc(t, store, "/v/a.md", "line one\n\n\tline   two with    gaps", time.Now())

	hits, err := NewSearchService(store).Search(context.Background(), "gaps", domain.RetrievalOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "line one line two with gaps", hits[0].Snippet)
}

func TestTermWeightsFavourRareTerms(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "project alpha"},
		{Text: "project beta"},
		{Text: "project gamma tokenizer"},
	}
	svc := NewSearchService(memory.NewEvidenceStore())

	weights := svc.termWeights(chunks)
	assert.Greater(t, weights["tokenizer"], weights["project"])
}

func TestTermWeightsDisabled(t *testing.T) {
	svc := NewSearchService(memory.NewEvidenceStore(), WithIDFWeighting(false))
	assert.Nil(t, svc.termWeights([]domain.Chunk{{Text: "a b c"}}))
}

func TestWeightedCosine(t *testing.T) {
	a := termFrequencies([]string{"parser", "bounds"})
	b := termFrequencies([]string{"parser", "bounds"})
	assert.InDelta(t, 1.0, weightedCosine(a, b, nil), 1e-9)

	c := termFrequencies([]string{"unrelated", "words"})
	assert.Equal(t, 0.0, weightedCosine(a, c, nil))
}
