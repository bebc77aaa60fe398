package domain

import (
	"encoding/json"
	"strings"
)

// SampleNamespace tags eval queries created by the synthetic seed workflow
// so they can be listed and purged without touching user-authored rows.
const SampleNamespace = "sample"

// EvalQuery is a labelled retrieval test case. Rows are upserted by
// (Namespace, QueryText), so re-loading a query file updates labels
// without duplicating rows.
type EvalQuery struct {
	// Namespace groups queries (e.g. "sample" for synthetic rows).
	// Empty means the default user namespace.
	Namespace string `json:"namespace,omitempty"`

	// QueryText is the free-text query to run.
	QueryText string `json:"query_text"`

	// ExpectedSourceURIs are the document URIs considered correct answers.
	// Weak references: the documents may not (yet) exist.
	ExpectedSourceURIs []string `json:"expected_source_uris"`
}

// EvalQueryResult is the per-query outcome of an evaluation run.
type EvalQueryResult struct {
	Query EvalQuery `json:"query"`

	// RetrievedSourceURIs is the ranked document-URI sequence implied by
	// the retrieved chunks, deduplicated in first-occurrence order.
	RetrievedSourceURIs []string `json:"retrieved_source_uris"`

	// FirstCorrectRank is the 1-indexed rank of the first expected URI,
	// or 0 when none was retrieved within the top K.
	FirstCorrectRank int `json:"first_correct_rank"`

	// RecallHit is true when any top-K URI is expected.
	RecallHit bool `json:"recall_hit"`

	// CitationHit is true when the rank-1 URI is expected.
	CitationHit bool `json:"citation_hit"`

	// LabelError marks a query with an empty or malformed expected set.
	// It contributes zero to every metric but is a labelling problem,
	// not a retrieval failure.
	LabelError bool `json:"label_error,omitempty"`
}

// EvalSummary aggregates an evaluation run. All metrics are arithmetic means
// over every evaluated query, label errors included as zeros.
type EvalSummary struct {
	QueryCount      int               `json:"query_count"`
	TopK            int               `json:"top_k"`
	RecallAtK       float64           `json:"recall_at_k"`
	MRRAtK          float64           `json:"mrr_at_k"`
	CitationHitRate float64           `json:"citation_hit_rate"`
	LabelErrors     int               `json:"label_errors"`
	Results         []EvalQueryResult `json:"results"`
}

// ParseExpectedSourceURIs decodes the persisted expected-URI column.
// The canonical encoding is a JSON string array; legacy comma-separated
// values and bare strings are tolerated. Nil and blank input yield nil.
func ParseExpectedSourceURIs(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal([]byte(text), &single); err == nil {
		return []string{single}
	}

	var out []string
	for _, part := range strings.Split(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
