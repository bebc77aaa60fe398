package driven

import "github.com/quarry-labs/quarry-cli/internal/core/domain"

// NoteNormaliser converts raw note files into documents.
type NoteNormaliser interface {
	Normalise(nf domain.NoteFile) (domain.Document, error)
}

// CommitNormaliser converts raw commits into documents.
type CommitNormaliser interface {
	Normalise(c domain.Commit) (domain.Document, error)
}
