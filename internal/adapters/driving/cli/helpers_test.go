package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/storage/memory"
	"github.com/quarry-labs/quarry-cli/internal/config"
)

// setupTestServices wires the command tree to in-memory stores and resets
// flag state, so tests never touch the real database or config directory.
func setupTestServices(t *testing.T) (*memory.EvidenceStore, *memory.EvalQueryStore) {
	t.Helper()

	evidence := memory.NewEvidenceStore()
	queries := memory.NewEvalQueryStore()
	settings = config.Defaults()
	wireServices(evidence, queries)

	searchTopK, searchJSON = 0, false
	evalNamespace, evalPrefix, evalTopK, evalJSON = "", "", 0, false
	seedDir, seedForce = "", false
	ingestWatch, ingestMaxCommits = false, 0

	t.Cleanup(func() {
		ingestService, searchService, evalService, seedService = nil, nil, nil, nil
		settings = config.Settings{}
		configStore = nil
		flagVerbose, flagDBPath, flagConfigDir = false, "", ""
		closeStore()
	})
	return evidence, queries
}

// execute runs the root command with the given args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeVaultNote(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
