package driven

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// DocumentLoader reads every file of one kind beneath a directory.
//
// A loader skips individual files it cannot read and reports them through
// the returned slice of per-file errors. A non-nil error means the whole
// kind failed (for example a missing extraction tool).
type DocumentLoader interface {
	// Kind returns the document kind this loader handles.
	Kind() domain.DocumentKind

	// Load reads all documents of this kind under dir.
	Load(ctx context.Context, dir string) (LoadResult, error)
}

// LoadResult is the outcome of loading one kind.
type LoadResult struct {
	// Documents are the successfully loaded documents in path order.
	Documents []domain.Document

	// Skipped are per-file failures that did not stop the kind.
	Skipped []*domain.DocumentLoadError
}
