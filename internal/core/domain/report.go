package domain

// UpsertStatus describes what a document upsert did.
type UpsertStatus int

const (
	// StatusCreated indicates a new document row was inserted.
	StatusCreated UpsertStatus = iota

	// StatusUpdated indicates an existing row's content changed.
	StatusUpdated

	// StatusUnchanged indicates the fingerprint matched and no chunk
	// writes occurred.
	StatusUnchanged
)

// String returns the lower-case status name.
func (s UpsertStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusUpdated:
		return "updated"
	case StatusUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// ChunkDiff reports how a chunk-set replacement changed stored state.
// Matching chunk IDs are left untouched, which is what makes re-ingestion
// of unchanged content a zero-write operation.
type ChunkDiff struct {
	// Inserted counts chunks written because their ID was new.
	Inserted int `json:"inserted"`

	// Removed counts stored chunks deleted because the new set no longer
	// produces their ID.
	Removed int `json:"removed"`

	// Unchanged counts chunks whose ID already existed and were not touched.
	Unchanged int `json:"unchanged"`
}

// Add accumulates another diff into this one.
func (d *ChunkDiff) Add(other ChunkDiff) {
	d.Inserted += other.Inserted
	d.Removed += other.Removed
	d.Unchanged += other.Unchanged
}

// UpsertResult combines the document-level status with the chunk-level diff.
type UpsertResult struct {
	Status UpsertStatus `json:"status"`
	Chunks ChunkDiff    `json:"chunks"`
}

// SkippedItem records one per-item ingestion failure. Skips never abort a
// batch; they are collected and reported at the end.
type SkippedItem struct {
	URI    string `json:"uri"`
	Reason string `json:"reason"`
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// RunID uniquely identifies this ingestion invocation in logs.
	RunID string `json:"run_id"`

	// Kind is the evidence modality that was ingested.
	Kind DocumentKind `json:"kind"`

	DocsCreated   int `json:"docs_created"`
	DocsUpdated   int `json:"docs_updated"`
	DocsUnchanged int `json:"docs_unchanged"`

	Chunks ChunkDiff `json:"chunks"`

	// Skipped lists items that could not be ingested (e.g. undecodable
	// text). The batch continues past them.
	Skipped []SkippedItem `json:"skipped,omitempty"`
}

// Record folds one document's upsert result into the report.
func (r *IngestReport) Record(res UpsertResult) {
	switch res.Status {
	case StatusCreated:
		r.DocsCreated++
	case StatusUpdated:
		r.DocsUpdated++
	case StatusUnchanged:
		r.DocsUnchanged++
	}
	r.Chunks.Add(res.Chunks)
}

// Skip records a per-item failure.
func (r *IngestReport) Skip(uri, reason string) {
	r.Skipped = append(r.Skipped, SkippedItem{URI: uri, Reason: reason})
}
