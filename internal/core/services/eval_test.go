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

func newEvalFixture(t *testing.T) (*EvalService, *memory.EvalQueryStore) {
	t.Helper()
	evidence := memory.NewEvidenceStore()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	addDoc(t, evidence, "/v/parser.md", "the parser bounds bug is an off by one error in the loop", ts)
	addDoc(t, evidence, "/v/cooking.md", "sourdough bread recipe hydration levels", ts)

	queries := memory.NewEvalQueryStore()
	return NewEvalService(queries, NewSearchService(evidence)), queries
}

func TestLoadQueries(t *testing.T) {
	svc, store := newEvalFixture(t)

	data := []byte(`[
		{"query_text": "parser bounds bug", "expected_source_uris": ["/v/parser.md"]},
		{"query_text": "bread recipe", "expected_source_uris": "/v/cooking.md"}
	]`)
	n, err := svc.LoadQueries(context.Background(), data, "team")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	queries, err := store.ListEvalQueries(context.Background(), "team")
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, []string{"/v/cooking.md"}, queries[0].ExpectedSourceURIs)

	// Reloading updates in place.
	n, err = svc.LoadQueries(context.Background(), data, "team")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	queries, err = store.ListEvalQueries(context.Background(), "team")
	require.NoError(t, err)
	assert.Len(t, queries, 2)
}

func TestLoadQueriesRejectsMalformedRows(t *testing.T) {
	svc, _ := newEvalFixture(t)

	_, err := svc.LoadQueries(context.Background(), []byte(`{"not": "an array"}`), "")
	assert.Error(t, err)

	_, err = svc.LoadQueries(context.Background(), []byte(`[
		{"query_text": "ok", "expected_source_uris": ["/v/a.md"]},
		{"query_text": "   ", "expected_source_uris": ["/v/b.md"]}
	]`), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "row 1")
}

func TestRunWithoutQueries(t *testing.T) {
	svc, _ := newEvalFixture(t)
	_, err := svc.Run(context.Background(), "nope", 5)
	assert.ErrorIs(t, err, domain.ErrNoEvalQueries)
}

func TestEvaluateMetrics(t *testing.T) {
	svc, _ := newEvalFixture(t)

	queries := []domain.EvalQuery{
		// Rank 1 hit.
		{QueryText: "parser bounds bug", ExpectedSourceURIs: []string{"/v/parser.md"}},
		// Retrieval works but the label points at a missing document.
		{QueryText: "sourdough hydration", ExpectedSourceURIs: []string{"/v/missing.md"}},
		// Empty expected set is a label error, contributing zeros.
		{QueryText: "anything", ExpectedSourceURIs: nil},
		// Expected document retrieved at rank 2.
		{QueryText: "bounds loop recipe", ExpectedSourceURIs: []string{"/v/cooking.md"}},
	}

	summary, err := svc.Evaluate(context.Background(), queries, 5)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.QueryCount)
	assert.Equal(t, 5, summary.TopK)
	assert.Equal(t, 1, summary.LabelErrors)
	assert.InDelta(t, 2.0/4.0, summary.RecallAtK, 1e-9)
	assert.InDelta(t, (1.0+0.5)/4.0, summary.MRRAtK, 1e-9)
	assert.InDelta(t, 1.0/4.0, summary.CitationHitRate, 1e-9)

	require.Len(t, summary.Results, 4)
	assert.Equal(t, 1, summary.Results[0].FirstCorrectRank)
	assert.True(t, summary.Results[0].CitationHit)
	assert.Equal(t, 0, summary.Results[1].FirstCorrectRank)
	assert.False(t, summary.Results[1].RecallHit)
	assert.True(t, summary.Results[2].LabelError)
	assert.Equal(t, 2, summary.Results[3].FirstCorrectRank)
	assert.True(t, summary.Results[3].RecallHit)
	assert.False(t, summary.Results[3].CitationHit)
}

func TestEvaluateTopKLimitsRecall(t *testing.T) {
	evidence := memory.NewEvidenceStore()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	// Two strong matches and one weak match for the same query.
	addDoc(t, evidence, "/v/strong1.md", "release checklist release checklist release", ts)
	addDoc(t, evidence, "/v/strong2.md", "release checklist for the deploy", ts)
	addDoc(t, evidence, "/v/weak.md", "notes mentioning release once among many other unrelated words entirely", ts)

	svc := NewEvalService(memory.NewEvalQueryStore(), NewSearchService(evidence))
	queries := []domain.EvalQuery{
		{QueryText: "release checklist", ExpectedSourceURIs: []string{"/v/weak.md"}},
	}

	atOne, err := svc.Evaluate(context.Background(), queries, 1)
	require.NoError(t, err)
	atFive, err := svc.Evaluate(context.Background(), queries, 5)
	require.NoError(t, err)

	// Recall@K is monotonic in K.
	assert.Equal(t, 0.0, atOne.RecallAtK)
	assert.Equal(t, 1.0, atFive.RecallAtK)
	assert.GreaterOrEqual(t, atFive.RecallAtK, atOne.RecallAtK)
}

func TestEvaluateEmptyQuerySet(t *testing.T) {
	svc, _ := newEvalFixture(t)
	_, err := svc.Evaluate(context.Background(), nil, 5)
	assert.ErrorIs(t, err, domain.ErrNoEvalQueries)
}
