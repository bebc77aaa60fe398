package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// snippetLen bounds the whitespace-collapsed excerpt shown per hit.
const snippetLen = 220

// SearchService ranks stored chunks by lexical overlap with a recency nudge.
//
// The recency reference is the newest source timestamp in the corpus, not
// the wall clock, so two searches against an unchanged store return
// identical scores.
type SearchService struct {
	store driven.EvidenceStore

	lexicalWeight float64
	recencyWeight float64
	idfWeighting  bool
}

// SearchOption configures the search service.
type SearchOption func(*SearchService)

// WithWeights sets the lexical and recency score weights.
func WithWeights(lexical, recency float64) SearchOption {
	return func(s *SearchService) {
		if lexical > 0 {
			s.lexicalWeight = lexical
		}
		if recency >= 0 {
			s.recencyWeight = recency
		}
	}
}

// WithIDFWeighting toggles smoothed inverse-document-frequency term weights.
func WithIDFWeighting(enabled bool) SearchOption {
	return func(s *SearchService) {
		s.idfWeighting = enabled
	}
}

// NewSearchService creates a new search service.
func NewSearchService(store driven.EvidenceStore, opts ...SearchOption) *SearchService {
	s := &SearchService{
		store:         store,
		lexicalWeight: domain.DefaultLexicalWeight,
		recencyWeight: domain.DefaultRecencyWeight,
		idfWeighting:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns at most opts.TopK hits, score descending, ties broken by
// chunk ID ascending. Chunks with no query-token overlap are excluded.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievalHit, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	queryTokens := domain.Tokenize(query)
	if len(queryTokens) == 0 {
		logger.Debug("No query tokens, returning no results")
		return []domain.RetrievalHit{}, nil
	}

	chunks, err := s.store.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	logger.Debug("Corpus: %d chunks, %d documents", len(chunks), len(docs))

	docsByURI := make(map[string]domain.Document, len(docs))
	var newest time.Time
	for _, d := range docs {
		docsByURI[d.SourceURI] = d
		if d.SourceTimestamp.After(newest) {
			newest = d.SourceTimestamp
		}
	}

	idf := s.termWeights(chunks)
	queryVec := termFrequencies(queryTokens)

	var hits []domain.RetrievalHit
	for _, chunk := range chunks {
		lexical := weightedCosine(queryVec, termFrequencies(domain.Tokenize(chunk.Text)), idf)
		if lexical == 0 {
			continue
		}

		doc, ok := docsByURI[chunk.DocumentURI]
		if !ok {
			// Orphaned chunk; the cascade should prevent this.
			continue
		}

		recency := recencyScore(doc.SourceTimestamp, newest)
		score := s.lexicalWeight*lexical + s.recencyWeight*recency

		hits = append(hits, domain.RetrievalHit{
			Chunk: chunk,
			Citation: domain.Citation{
				SourceURI: chunk.DocumentURI,
				Position:  chunk.Position,
			},
			Kind:         doc.Kind,
			Title:        doc.Title,
			Score:        score,
			LexicalScore: lexical,
			RecencyScore: recency,
			Snippet:      makeSnippet(chunk.Text),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	logger.Info("Results: %d (top_k=%d)", len(hits), topK)

	if hits == nil {
		hits = []domain.RetrievalHit{}
	}
	return hits, nil
}

// termWeights computes smoothed IDF weights over the chunk corpus:
// ln((1+N)/(1+df)) + 1. With IDF disabled every term weighs 1.
func (s *SearchService) termWeights(chunks []domain.Chunk) map[string]float64 {
	if !s.idfWeighting {
		return nil
	}

	df := make(map[string]int)
	for _, chunk := range chunks {
		seen := make(map[string]bool)
		for _, tok := range domain.Tokenize(chunk.Text) {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	n := float64(len(chunks))
	weights := make(map[string]float64, len(df))
	for tok, count := range df {
		weights[tok] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return weights
}

func termFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

// weightedCosine computes the cosine similarity of two term-frequency
// vectors under per-term weights. A nil weight map means uniform weights.
// Unknown terms weigh 1 so unseen query words still register.
func weightedCosine(a, b map[string]float64, weights map[string]float64) float64 {
	weight := func(tok string) float64 {
		if weights == nil {
			return 1
		}
		if w, ok := weights[tok]; ok {
			return w
		}
		return 1
	}

	var dot float64
	for tok, av := range a {
		if bv, ok := b[tok]; ok {
			w := weight(tok)
			dot += av * bv * w * w
		}
	}
	if dot == 0 {
		return 0
	}

	var normA, normB float64
	for tok, av := range a {
		w := weight(tok)
		normA += av * av * w * w
	}
	for tok, bv := range b {
		w := weight(tok)
		normB += bv * bv * w * w
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// recencyScore decays exponentially with age relative to the newest source
// timestamp in the corpus. Missing timestamps score zero.
func recencyScore(ts, newest time.Time) float64 {
	if ts.IsZero() || newest.IsZero() {
		return 0
	}
	ageDays := newest.Sub(ts).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / domain.RecencyHalfLifeDays)
}

// makeSnippet collapses whitespace and truncates to snippetLen runes.
func makeSnippet(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= snippetLen {
		return collapsed
	}
	return string(runes[:snippetLen]) + "..."
}
