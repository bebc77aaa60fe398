package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
)

// Ensure EvalService implements the interface.
var _ driving.EvalService = (*EvalService)(nil)

// EvalService measures retrieval quality against labelled queries.
type EvalService struct {
	queries  driven.EvalQueryStore
	searcher driving.SearchService
}

// NewEvalService creates a new eval service.
func NewEvalService(queries driven.EvalQueryStore, searcher driving.SearchService) *EvalService {
	return &EvalService{
		queries:  queries,
		searcher: searcher,
	}
}

// evalQueryRow is the JSON shape of one row in an eval-query file. The
// expected field tolerates an array, a single string or a comma-separated
// string.
type evalQueryRow struct {
	QueryText          string          `json:"query_text"`
	ExpectedSourceURIs json.RawMessage `json:"expected_source_uris"`
}

// LoadQueries parses a JSON array of eval queries and upserts each row under
// the given namespace. Malformed rows fail the whole load with a
// row-indexed error so query files stay trustworthy.
func (s *EvalService) LoadQueries(ctx context.Context, data []byte, namespace string) (int, error) {
	var rows []evalQueryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, fmt.Errorf("parsing eval queries: %w", err)
	}

	for i, row := range rows {
		if strings.TrimSpace(row.QueryText) == "" {
			return 0, fmt.Errorf("row %d: empty query_text: %w", i, domain.ErrInvalidInput)
		}
	}

	loaded := 0
	for _, row := range rows {
		q := domain.EvalQuery{
			Namespace:          namespace,
			QueryText:          row.QueryText,
			ExpectedSourceURIs: domain.ParseExpectedSourceURIs(string(row.ExpectedSourceURIs)),
		}
		created, err := s.queries.UpsertEvalQuery(ctx, q)
		if err != nil {
			return loaded, fmt.Errorf("saving query %q: %w", row.QueryText, err)
		}
		if created {
			logger.Debug("Created eval query %q", row.QueryText)
		} else {
			logger.Debug("Updated eval query %q", row.QueryText)
		}
		loaded++
	}

	logger.Info("Loaded %d eval queries into namespace %q", loaded, namespace)
	return loaded, nil
}

// Run evaluates every stored query whose namespace matches the prefix.
func (s *EvalService) Run(ctx context.Context, namespacePrefix string, topK int) (*domain.EvalSummary, error) {
	queries, err := s.queries.ListEvalQueries(ctx, namespacePrefix)
	if err != nil {
		return nil, fmt.Errorf("listing eval queries: %w", err)
	}
	if len(queries) == 0 {
		return nil, domain.ErrNoEvalQueries
	}
	return s.Evaluate(ctx, queries, topK)
}

// Evaluate runs the given queries against the retriever and aggregates
// Recall@K, MRR@K and the citation hit rate. Queries with empty expected
// sets count as label errors and contribute zero to every metric.
func (s *EvalService) Evaluate(ctx context.Context, queries []domain.EvalQuery, topK int) (*domain.EvalSummary, error) {
	if len(queries) == 0 {
		return nil, domain.ErrNoEvalQueries
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	logger.Section("Evaluation")
	logger.Debug("Evaluating %d queries at top_k=%d", len(queries), topK)

	summary := &domain.EvalSummary{
		QueryCount: len(queries),
		TopK:       topK,
	}

	var recallSum, mrrSum, citationSum float64
	for _, q := range queries {
		result, err := s.evaluateQuery(ctx, q, topK)
		if err != nil {
			return nil, err
		}
		if result.LabelError {
			summary.LabelErrors++
		}
		if result.RecallHit {
			recallSum++
		}
		if result.FirstCorrectRank > 0 {
			mrrSum += 1 / float64(result.FirstCorrectRank)
		}
		if result.CitationHit {
			citationSum++
		}
		summary.Results = append(summary.Results, *result)
	}

	n := float64(summary.QueryCount)
	summary.RecallAtK = recallSum / n
	summary.MRRAtK = mrrSum / n
	summary.CitationHitRate = citationSum / n

	logger.Info("Recall@%d=%.3f MRR@%d=%.3f citation_hit_rate=%.3f label_errors=%d",
		topK, summary.RecallAtK, topK, summary.MRRAtK, summary.CitationHitRate, summary.LabelErrors)
	return summary, nil
}

func (s *EvalService) evaluateQuery(ctx context.Context, q domain.EvalQuery, topK int) (*domain.EvalQueryResult, error) {
	result := &domain.EvalQueryResult{Query: q}

	if len(q.ExpectedSourceURIs) == 0 {
		logger.Warn("Query %q has no expected URIs, counting as label error", q.QueryText)
		result.LabelError = true
		return result, nil
	}

	hits, err := s.searcher.Search(ctx, q.QueryText, domain.RetrievalOptions{TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", q.QueryText, err)
	}

	expected := make(map[string]bool, len(q.ExpectedSourceURIs))
	for _, uri := range q.ExpectedSourceURIs {
		expected[uri] = true
	}

	// Chunk hits collapse to a ranked document list, first occurrence wins.
	seen := make(map[string]bool)
	for _, hit := range hits {
		uri := hit.Citation.SourceURI
		if seen[uri] {
			continue
		}
		seen[uri] = true
		result.RetrievedSourceURIs = append(result.RetrievedSourceURIs, uri)

		rank := len(result.RetrievedSourceURIs)
		if expected[uri] && result.FirstCorrectRank == 0 {
			result.FirstCorrectRank = rank
		}
	}

	result.RecallHit = result.FirstCorrectRank > 0
	result.CitationHit = result.FirstCorrectRank == 1
	return result, nil
}
