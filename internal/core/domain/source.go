package domain

import "time"

// NoteFile is a raw markdown note produced by the vault walker,
// before normalisation.
type NoteFile struct {
	// Path is the absolute file path; it becomes the Document's SourceURI.
	Path string

	// Content is the raw file bytes.
	Content []byte

	// ModTime is the file's modification time.
	ModTime time.Time
}

// Commit is a raw git commit produced by the log provider, before
// normalisation.
type Commit struct {
	// RepoPath is the absolute path of the repository.
	RepoPath string

	// Hash is the full commit hash.
	Hash string

	// Subject is the first line of the commit message.
	Subject string

	// Body is the rest of the commit message.
	Body string

	// AuthorName and AuthorEmail identify the commit author.
	AuthorName  string
	AuthorEmail string

	// When is the commit timestamp.
	When time.Time

	// Patch is the stat summary plus unified diff against the first parent.
	Patch string
}

// SourceURI returns the stable identity "<repo_path>@<hash>".
func (c Commit) SourceURI() string {
	return c.RepoPath + "@" + c.Hash
}
