package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

func TestSearchCommandMetadata(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "ask [question]", askCmd.Use)
	for _, c := range []struct {
		cmd  string
		flag string
	}{
		{"search", "top-k"}, {"search", "json"},
		{"ask", "top-k"}, {"ask", "json"},
	} {
		switch c.cmd {
		case "search":
			assert.NotNil(t, searchCmd.Flags().Lookup(c.flag), c.flag)
		case "ask":
			assert.NotNil(t, askCmd.Flags().Lookup(c.flag), c.flag)
		}
	}
}

func TestSearchCommand(t *testing.T) {
	setupTestServices(t)
	vault := t.TempDir()
	writeVaultNote(t, vault, "parser-bug.md", "# Parser Bug\n\nthe parser bounds bug is an off by one")
	writeVaultNote(t, vault, "groceries.md", "# Groceries\n\nmilk eggs flour")

	_, err := execute(t, "ingest", "notes", vault)
	require.NoError(t, err)

	out, err := execute(t, "search", "parser bounds bug")
	require.NoError(t, err)
	assert.Contains(t, out, "Parser Bug")
	assert.Contains(t, out, "parser-bug.md#0")
	assert.NotContains(t, out, "Groceries")
}

func TestSearchCommandJSON(t *testing.T) {
	setupTestServices(t)
	vault := t.TempDir()
	writeVaultNote(t, vault, "parser-bug.md", "# Parser Bug\n\nthe parser bounds bug is an off by one")

	_, err := execute(t, "ingest", "notes", vault)
	require.NoError(t, err)

	out, err := execute(t, "search", "parser bounds", "--json")
	require.NoError(t, err)

	var hits []domain.RetrievalHit
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "Parser Bug", hits[0].Title)
	assert.True(t, strings.HasSuffix(hits[0].Citation.SourceURI, "parser-bug.md"))
}

func TestSearchCommandNoResults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "search", "anything at all")
	require.NoError(t, err)
	assert.Contains(t, out, "no results")
}

func TestAskCommand(t *testing.T) {
	setupTestServices(t)
	vault := t.TempDir()
	writeVaultNote(t, vault, "parser-bug.md", "# Parser Bug\n\nthe parser bounds bug is an off by one")

	_, err := execute(t, "ingest", "notes", vault)
	require.NoError(t, err)

	out, err := execute(t, "ask", "parser bounds bug")
	require.NoError(t, err)
	assert.Contains(t, out, "sources:")
	assert.Contains(t, out, "[1]")

	out, err = execute(t, "ask", "completely unrelated words")
	require.NoError(t, err)
	assert.Contains(t, out, "no evidence found")
}

func TestSearchTopKFlag(t *testing.T) {
	setupTestServices(t)
	vault := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		writeVaultNote(t, vault, name, "# Note\n\nparser notes for "+name)
	}

	_, err := execute(t, "ingest", "notes", vault)
	require.NoError(t, err)

	out, err := execute(t, "search", "parser", "--json", "--top-k", "2")
	require.NoError(t, err)

	var hits []domain.RetrievalHit
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	assert.Len(t, hits, 2)
}
