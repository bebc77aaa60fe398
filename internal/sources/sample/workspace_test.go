package sample

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/sources/gitlog"
)

func TestBuildCreatesWorkspace(t *testing.T) {
	dir := t.TempDir()
	layout, err := New().Build(context.Background(), dir, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "vault"), layout.VaultDir)
	assert.Equal(t, filepath.Join(dir, "repo"), layout.RepoDir)

	entries, err := os.ReadDir(layout.VaultDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	commits, err := gitlog.New().Commits(context.Background(), layout.RepoDir, 0)
	require.NoError(t, err)
	assert.Len(t, commits, 3)
	assert.Equal(t, "Test User", commits[0].AuthorName)
}

func TestBuildIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := New().Build(context.Background(), dir, false)
	require.NoError(t, err)
	second, err := New().Build(context.Background(), dir, false)
	require.NoError(t, err)

	// Reusing the existing repo keeps hashes, so labels stay valid.
	assert.Equal(t, first, second)
}

func TestBuildForceRebuilds(t *testing.T) {
	dir := t.TempDir()
	first, err := New().Build(context.Background(), dir, false)
	require.NoError(t, err)

	stray := filepath.Join(first.VaultDir, "stray.md")
	require.NoError(t, os.WriteFile(stray, []byte("extra"), 0o644))

	second, err := New().Build(context.Background(), dir, true)
	require.NoError(t, err)
	assert.NoFileExists(t, stray)

	// Fixed signatures and timestamps make the rebuild identical.
	assert.Equal(t, first.EvalQueries, second.EvalQueries)
}

func TestEvalQueriesPointIntoWorkspace(t *testing.T) {
	dir := t.TempDir()
	layout, err := New().Build(context.Background(), dir, false)
	require.NoError(t, err)
	require.NotEmpty(t, layout.EvalQueries)

	for _, q := range layout.EvalQueries {
		assert.Equal(t, domain.SampleNamespace, q.Namespace)
		require.NotEmpty(t, q.ExpectedSourceURIs, q.QueryText)
		for _, uri := range q.ExpectedSourceURIs {
			if repo, hash, ok := strings.Cut(uri, "@"); ok && strings.HasPrefix(repo, layout.RepoDir) {
				assert.Len(t, hash, 40)
				continue
			}
			assert.FileExists(t, uri)
		}
	}
}
