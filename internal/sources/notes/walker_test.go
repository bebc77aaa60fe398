package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNotesWalksMarkdownOnly(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "beta.md", "second note")
	writeNote(t, dir, "alpha.md", "first note")
	writeNote(t, dir, "sub/gamma.md", "nested note")
	writeNote(t, dir, "ignore.txt", "not markdown")
	writeNote(t, dir, ".obsidian/workspace.md", "hidden dir")

	files, err := New().Notes(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	var paths []string
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.Path))
		assert.NotEmpty(t, f.Content)
		assert.False(t, f.ModTime.IsZero())
		paths = append(paths, filepath.Base(f.Path))
	}
	assert.Equal(t, []string{"alpha.md", "beta.md", "gamma.md"}, paths)
}

func TestNotesDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "z.md", "z")
	writeNote(t, dir, "a.md", "a")
	writeNote(t, dir, "m/n.md", "n")

	first, err := New().Notes(context.Background(), dir)
	require.NoError(t, err)
	second, err := New().Notes(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNotesMissingRoot(t *testing.T) {
	_, err := New().Notes(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNotesRootMustBeDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeNote(t, dir, "file.md", "content")

	_, err := New().Notes(context.Background(), path)
	assert.Error(t, err)
}

func TestNotesEmptyVault(t *testing.T) {
	files, err := New().Notes(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}
