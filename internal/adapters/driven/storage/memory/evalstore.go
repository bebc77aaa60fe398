package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure EvalQueryStore implements the interface.
var _ driven.EvalQueryStore = (*EvalQueryStore)(nil)

// EvalQueryStore is an in-memory implementation of driven.EvalQueryStore.
type EvalQueryStore struct {
	mu      sync.RWMutex
	queries map[string]domain.EvalQuery
}

// NewEvalQueryStore creates a new in-memory eval query store.
func NewEvalQueryStore() *EvalQueryStore {
	return &EvalQueryStore{
		queries: make(map[string]domain.EvalQuery),
	}
}

func queryKey(namespace, queryText string) string {
	return namespace + "\x00" + queryText
}

// UpsertEvalQuery stores or updates a query keyed by (Namespace, QueryText).
func (s *EvalQueryStore) UpsertEvalQuery(_ context.Context, q domain.EvalQuery) (bool, error) {
	if strings.TrimSpace(q.QueryText) == "" {
		return false, fmt.Errorf("empty query text: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := queryKey(q.Namespace, q.QueryText)
	_, exists := s.queries[key]
	s.queries[key] = q
	return !exists, nil
}

// ListEvalQueries returns queries whose namespace starts with prefix.
func (s *EvalQueryStore) ListEvalQueries(_ context.Context, namespacePrefix string) ([]domain.EvalQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var queries []domain.EvalQuery
	for _, q := range s.queries {
		if strings.HasPrefix(q.Namespace, namespacePrefix) {
			queries = append(queries, q)
		}
	}
	sort.Slice(queries, func(i, j int) bool {
		if queries[i].Namespace != queries[j].Namespace {
			return queries[i].Namespace < queries[j].Namespace
		}
		return queries[i].QueryText < queries[j].QueryText
	})
	return queries, nil
}

// DeleteEvalQueries removes every query in the exact namespace.
func (s *EvalQueryStore) DeleteEvalQueries(_ context.Context, namespace string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int
	for key, q := range s.queries {
		if q.Namespace == namespace {
			delete(s.queries, key)
			deleted++
		}
	}
	return deleted, nil
}
