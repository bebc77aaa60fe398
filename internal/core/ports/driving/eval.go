package driving

import (
	"context"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// EvalService measures retrieval quality against labelled queries.
type EvalService interface {
	// LoadQueries parses a JSON eval-query file and upserts each row
	// under the given namespace. Returns the number of rows loaded.
	LoadQueries(ctx context.Context, data []byte, namespace string) (int, error)

	// Run evaluates every stored query whose namespace matches the
	// prefix. Returns domain.ErrNoEvalQueries when none match.
	Run(ctx context.Context, namespacePrefix string, topK int) (*domain.EvalSummary, error)

	// Evaluate runs the given queries without touching the query store.
	Evaluate(ctx context.Context, queries []domain.EvalQuery, topK int) (*domain.EvalSummary, error)
}
