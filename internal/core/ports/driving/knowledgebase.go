package driving

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// KnowledgeBaseService builds and loads the vector index.
type KnowledgeBaseService interface {
	// EnsureIndex returns the index persisted in persistDir, building it from
	// sourceDir only when none exists or the existing one is unusable.
	EnsureIndex(ctx context.Context, sourceDir, persistDir string) (driven.VectorIndex, error)

	// Rebuild builds a fresh index from sourceDir and swaps it into persistDir.
	Rebuild(ctx context.Context, sourceDir, persistDir string) (driven.VectorIndex, error)

	// Status describes the index in persistDir.
	Status(ctx context.Context, persistDir string) (*domain.IndexInfo, error)

	// LastReport returns the report of the most recent EnsureIndex or Rebuild,
	// or nil before the first call.
	LastReport() *domain.BuildReport
}
