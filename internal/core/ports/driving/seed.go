package driving

import "context"

// SeedResult reports what the sample-seed workflow materialised and ingested.
type SeedResult struct {
	WorkspaceDir string `json:"workspace_dir"`
	VaultDir     string `json:"vault_dir"`
	RepoDir      string `json:"repo_dir"`

	NoteChunksInserted int `json:"note_chunks_inserted"`
	GitChunksInserted  int `json:"git_chunks_inserted"`
	EvalQueriesLoaded  int `json:"eval_queries_loaded"`
}

// PurgeResult reports what the sample-data purge removed.
type PurgeResult struct {
	DocumentsDeleted   int `json:"documents_deleted"`
	EvalQueriesDeleted int `json:"eval_queries_deleted"`
}

// SeedService materialises a synthetic vault and git repository, ingests
// both, and registers sample eval queries. Because ingestion is idempotent,
// re-seeding an unchanged workspace writes nothing.
type SeedService interface {
	// Seed builds (or reuses) the sample workspace and ingests it.
	// force rebuilds the workspace from scratch.
	Seed(ctx context.Context, workspaceDir string, force bool) (*SeedResult, error)

	// Purge removes sample documents and eval queries from the store.
	// The workspace directory on disk is left alone.
	Purge(ctx context.Context, workspaceDir string) (*PurgeResult, error)
}
