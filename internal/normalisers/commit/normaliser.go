// Package commit converts raw git commits into documents.
package commit

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.CommitNormaliser = (*Normaliser)(nil)

// maxTitleLen bounds the stored title; subjects beyond this are truncated.
const maxTitleLen = 200

// Normaliser converts commits into documents. The raw text concatenates the
// commit message and patch so both are searchable.
type Normaliser struct{}

// New creates a new commit normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise converts a commit into a document keyed by "<repo_path>@<hash>".
// Commits whose message or patch is not valid UTF-8 are rejected with
// domain.ErrNotText.
func (n *Normaliser) Normalise(c domain.Commit) (domain.Document, error) {
	if c.RepoPath == "" || c.Hash == "" {
		return domain.Document{}, domain.ErrInvalidInput
	}

	raw := buildRawText(c)
	if !utf8.ValidString(raw) {
		return domain.Document{}, fmt.Errorf("%s: %w", c.SourceURI(), domain.ErrNotText)
	}

	return domain.Document{
		SourceURI:       c.SourceURI(),
		Kind:            domain.KindCommit,
		Title:           truncate(c.Subject, maxTitleLen),
		RawText:         raw,
		Fingerprint:     domain.Fingerprint(raw),
		SourceTimestamp: c.When,
		IngestedAt:      time.Now().UTC(),
	}, nil
}

// buildRawText lays out the searchable text: subject, message body, patch.
// Empty sections are skipped so fingerprints stay stable across commits
// with and without bodies.
func buildRawText(c domain.Commit) string {
	parts := []string{"commit: " + strings.TrimSpace(c.Subject)}
	if body := strings.TrimSpace(c.Body); body != "" {
		parts = append(parts, body)
	}
	if patch := strings.TrimSpace(c.Patch); patch != "" {
		parts = append(parts, patch)
	}
	return strings.Join(parts, "\n\n")
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
