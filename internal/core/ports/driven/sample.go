package driven

import (
	"context"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// SampleWorkspace materialises the synthetic demo corpus on disk: a small
// markdown vault plus a git repository with fixed authorship and timestamps,
// so repeated builds produce identical content.
type SampleWorkspace interface {
	// Build creates (or reuses) the sample workspace under dir.
	// force rebuilds from scratch.
	Build(ctx context.Context, dir string, force bool) (*domain.SampleLayout, error)
}
