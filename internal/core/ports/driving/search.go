package driving

import (
	"context"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// SearchService ranks stored chunks against a free-text query.
// Read-only over the store; two calls against an unchanged store return
// identical results.
type SearchService interface {
	// Search returns at most opts.TopK hits, score descending, ties
	// broken by chunk ID ascending. Chunks with no query-token overlap
	// are excluded even when fewer than TopK results remain.
	Search(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievalHit, error)
}
