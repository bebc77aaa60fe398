package domain

// SampleLayout describes a materialised sample workspace: where the vault
// and repository live, and the labelled queries whose expected URIs point
// into them.
type SampleLayout struct {
	VaultDir string `json:"vault_dir"`
	RepoDir  string `json:"repo_dir"`

	// EvalQueries are sample-namespace queries labelled against the
	// materialised documents.
	EvalQueries []EvalQuery `json:"eval_queries"`
}
