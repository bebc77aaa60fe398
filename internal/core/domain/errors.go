package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotText indicates source content that cannot be decoded as text.
	// Ingestion skips the item and continues the batch.
	ErrNotText = errors.New("content is not valid text")

	// ErrChunkIDCollision indicates two distinct chunk contents hashed to
	// the same chunk ID. This would corrupt citations, so it aborts the
	// current document's ingestion instead of merging silently.
	ErrChunkIDCollision = errors.New("chunk id collision")

	// ErrNoEvalQueries indicates an evaluation run was requested with no
	// queries to evaluate. Callers report this explicitly rather than
	// presenting a meaningless zero average.
	ErrNoEvalQueries = errors.New("no eval queries to evaluate")

	// ErrNotRepository indicates a path that is not a git repository.
	ErrNotRepository = errors.New("not a git repository")
)
