package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeForIdentity canonicalises text for hashing: lower-case, collapse
// every whitespace run to a single space, trim. It is applied only when
// computing identities, never to stored or displayed text. The normalisation
// is part of the identity contract: changing it changes every chunk ID.
func NormalizeForIdentity(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Tokenize splits text into lower-cased word tokens. A token is a maximal run
// of letters, digits or underscores; everything else is a separator. The same
// tokenizer is used for chunk token counts, query parsing and scoring, so
// retrieval and identity agree on what a "token" is.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// ChunkID computes the content-addressed identity of a chunk:
// hex(SHA-256(sourceURI || NUL || position || NUL || NormalizeForIdentity(text))).
// SHA-256 keeps the collision probability negligible; a collision between
// distinct contents is treated as fatal, never silently merged.
func ChunkID(sourceURI string, position int, text string) string {
	h := sha256.New()
	h.Write([]byte(sourceURI))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(position)))
	h.Write([]byte{0})
	h.Write([]byte(NormalizeForIdentity(text)))
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the hex SHA-256 of a document's raw text. Matching
// fingerprints let re-ingestion skip chunking entirely.
func Fingerprint(rawText string) string {
	sum := sha256.Sum256([]byte(rawText))
	return hex.EncodeToString(sum[:])
}
