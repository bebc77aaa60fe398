// Package note converts raw vault markdown files into documents.
package note

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.NoteNormaliser = (*Normaliser)(nil)

// Normaliser converts note files into documents. The raw text is stored
// verbatim; markdown is only inspected to derive a title.
type Normaliser struct{}

// New creates a new note normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise converts a raw note file into a document. The file path becomes
// the SourceURI and the modification time the source timestamp. Files that
// are not valid UTF-8 are rejected with domain.ErrNotText.
func (n *Normaliser) Normalise(nf domain.NoteFile) (domain.Document, error) {
	if nf.Path == "" {
		return domain.Document{}, domain.ErrInvalidInput
	}
	if !utf8.Valid(nf.Content) {
		return domain.Document{}, fmt.Errorf("%s: %w", nf.Path, domain.ErrNotText)
	}

	raw := string(nf.Content)

	return domain.Document{
		SourceURI:       nf.Path,
		Kind:            domain.KindNote,
		Title:           extractTitle(raw, nf.Path),
		RawText:         raw,
		Fingerprint:     domain.Fingerprint(raw),
		SourceTimestamp: nf.ModTime,
		IngestedAt:      time.Now().UTC(),
	}, nil
}

// extractTitle takes the first H1 heading, falling back to the filename
// with separators turned into spaces.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(path)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
