// Package normalisers turns raw evidence into domain Documents. Each
// subpackage handles one evidence modality: note for markdown files,
// commit for git history.
package normalisers
