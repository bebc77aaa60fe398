package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeForIdentity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "The Parser HAS a Bug",
			expected: "the parser has a bug",
		},
		{
			name:     "collapses whitespace runs",
			input:    "a\t b\n\n  c",
			expected: "a b c",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  padded  ",
			expected: "padded",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only becomes empty",
			input:    " \n\t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeForIdentity(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "splits on punctuation and whitespace",
			input:    "parser: off-by-one bug!",
			expected: []string{"parser", "off", "by", "one", "bug"},
		},
		{
			name:     "preserves underscores and digits",
			input:    "chunk_id v2",
			expected: []string{"chunk_id", "v2"},
		},
		{
			name:     "case folds",
			input:    "Parser BUG",
			expected: []string{"parser", "bug"},
		},
		{
			name:     "empty input yields no tokens",
			input:    "",
			expected: nil,
		},
		{
			name:     "punctuation only yields no tokens",
			input:    "--- !!! ...",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestChunkIDDeterministic(t *testing.T) {
	a := ChunkID("/vault/a.md", 0, "The parser has an off-by-one bug.")
	b := ChunkID("/vault/a.md", 0, "The parser has an off-by-one bug.")
	require.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha256
}

func TestChunkIDNormalisationOnlyAffectsIdentity(t *testing.T) {
	// Case and whitespace differences normalise to the same identity.
	a := ChunkID("/vault/a.md", 0, "The  Parser has\na bug")
	b := ChunkID("/vault/a.md", 0, "the parser has a bug")
	assert.Equal(t, a, b)
}

func TestChunkIDSensitivity(t *testing.T) {
	base := ChunkID("/vault/a.md", 0, "the parser has a bug")

	t.Run("different text", func(t *testing.T) {
		assert.NotEqual(t, base, ChunkID("/vault/a.md", 0, "the parser has a feature"))
	})

	t.Run("different position", func(t *testing.T) {
		assert.NotEqual(t, base, ChunkID("/vault/a.md", 1, "the parser has a bug"))
	})

	t.Run("different source", func(t *testing.T) {
		assert.NotEqual(t, base, ChunkID("/vault/b.md", 0, "the parser has a bug"))
	})
}

func TestFingerprint(t *testing.T) {
	require.Equal(t, Fingerprint("abc"), Fingerprint("abc"))
	assert.NotEqual(t, Fingerprint("abc"), Fingerprint("abd"))
	// Fingerprints are byte-exact: no normalisation applies.
	assert.NotEqual(t, Fingerprint("abc"), Fingerprint("ABC"))
}
