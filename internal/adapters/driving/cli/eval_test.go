package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

func TestEvalCommandMetadata(t *testing.T) {
	assert.Equal(t, "load [file]", evalLoadCmd.Use)
	assert.Equal(t, "run", evalRunCmd.Use)
	assert.NotNil(t, evalLoadCmd.Flags().Lookup("namespace"))
	assert.NotNil(t, evalRunCmd.Flags().Lookup("namespace-prefix"))
	assert.NotNil(t, evalRunCmd.Flags().Lookup("top-k"))
	assert.NotNil(t, evalRunCmd.Flags().Lookup("json"))
}

func TestEvalLoadAndRun(t *testing.T) {
	setupTestServices(t)
	vault := t.TempDir()
	writeVaultNote(t, vault, "parser-bug.md", "# Parser Bug\n\nthe parser bounds bug is an off by one")
	writeVaultNote(t, vault, "groceries.md", "# Groceries\n\nmilk eggs flour")

	_, err := execute(t, "ingest", "notes", vault)
	require.NoError(t, err)

	queryFile := filepath.Join(t.TempDir(), "queries.json")
	require.NoError(t, os.WriteFile(queryFile, []byte(`[
		{"query_text": "parser bounds bug", "expected_source_uris": ["`+filepath.Join(vault, "parser-bug.md")+`"]}
	]`), 0o644))

	out, err := execute(t, "eval", "load", queryFile, "--namespace", "team")
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 1 eval queries")

	out, err = execute(t, "eval", "run", "--namespace-prefix", "team")
	require.NoError(t, err)
	assert.Contains(t, out, "queries evaluated: 1")
	assert.Contains(t, out, "recall@5:          1.000")
	assert.Contains(t, out, "citation hit rate: 1.000")
}

func TestEvalRunWithoutQueries(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "eval", "run")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoEvalQueries)
}

func TestEvalLoadMissingFile(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "eval", "load", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
