package driven

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// VectorIndex is a read-only handle to a built or loaded index.
// Handles are safe for concurrent queries.
type VectorIndex interface {
	// Query returns up to k chunks most similar to vector, highest score first.
	// Equal scores keep insertion order.
	Query(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)

	// Len returns the number of stored chunks.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int

	// ModelName returns the embedding model the vectors came from.
	ModelName() string

	// Info summarises the index.
	Info() domain.IndexInfo
}

// IndexStore builds vector indexes and moves them to and from disk.
type IndexStore interface {
	// Build embeds every chunk and returns a searchable index.
	// Provider failures and malformed vectors return *domain.EmbeddingProviderError.
	Build(ctx context.Context, chunks []domain.Chunk) (VectorIndex, error)

	// Persist writes idx to dir so that a crash never leaves a loadable partial index.
	Persist(ctx context.Context, idx VectorIndex, dir string) error

	// Load reads the current index from dir.
	// Returns *domain.IndexNotFoundError or *domain.IndexCorruptError.
	Load(ctx context.Context, dir string) (VectorIndex, error)

	// Exists reports whether dir holds an index pointer.
	Exists(dir string) bool

	// AcquireWriteLock takes the single-writer lock for dir.
	// The returned function releases it.
	AcquireWriteLock(ctx context.Context, dir string) (func() error, error)
}
