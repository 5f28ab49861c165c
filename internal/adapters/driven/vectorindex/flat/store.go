package flat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// DefaultBatchSize is the number of chunks embedded per provider call.
const DefaultBatchSize = 32

// lockPollInterval is how often a blocked writer retries the lock.
const lockPollInterval = 200 * time.Millisecond

// Store builds flat indexes with an embedding service and persists them.
type Store struct {
	embedder  driven.EmbeddingService
	batchSize int

	// pointerRead runs after Load reads CURRENT; tests use it to race a writer.
	pointerRead func(gen string)
}

// Option configures the store.
type Option func(*Store)

// WithBatchSize sets how many chunks are embedded per request.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewStore creates an index store backed by embedder.
func NewStore(embedder driven.EmbeddingService, opts ...Option) *Store {
	s := &Store{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build embeds every chunk in order and returns an in-memory index.
// Provider failures are not retried.
func (s *Store) Build(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to index", domain.ErrInvalidInput)
	}
	defer logger.Elapsed("build index", time.Now())

	dim := 0
	vectors := make([]float32, 0, len(chunks)*max(s.embedder.Dimensions(), 1))
	for start := 0; start < len(chunks); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+s.batchSize, len(chunks))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, &domain.EmbeddingProviderError{Op: "embed documents", Err: err}
		}
		if len(batch) != len(texts) {
			return nil, &domain.EmbeddingProviderError{
				Op:  "embed documents",
				Err: fmt.Errorf("requested %d vectors, received %d", len(texts), len(batch)),
			}
		}

		for i, vec := range batch {
			if dim == 0 {
				dim = len(vec)
			}
			if err := checkVector(vec, dim); err != nil {
				return nil, &domain.EmbeddingProviderError{
					Op:  "embed documents",
					Err: fmt.Errorf("chunk %s: %w", chunks[start+i].ID, err),
				}
			}
			vectors = append(vectors, normalizeL2(vec)...)
		}
		logger.Debug("embedded %d/%d chunks", end, len(chunks))
	}

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)

	manifest := Manifest{
		IndexVersion: IndexVersion,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		ModelName:    s.embedder.ModelName(),
		Dim:          dim,
		Normalized:   true,
		Chunks:       len(stored),
		Documents:    countDocuments(stored),
		VectorFile:   vectorFile,
		ChunksFile:   chunksFile,
	}
	return newIndex(manifest, stored, vectors, ""), nil
}

// Exists reports whether dir holds an index pointer.
func (s *Store) Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, currentFile))
	return err == nil && !info.IsDir()
}

// AcquireWriteLock takes the exclusive build lock for dir, waiting until
// it is free or ctx is done.
func (s *Store) AcquireWriteLock(ctx context.Context, dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}
	lockPath := filepath.Join(dir, lockFile)
	l := flock.New(lockPath)

	waiting := false
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire index lock: %w", err)
		}
		if locked {
			return l.Unlock, nil
		}
		if !waiting {
			logger.Info("another build holds %s, waiting", lockPath)
			waiting = true
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for index lock %s: %w", lockPath, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

var (
	errEmptyVector  = errors.New("empty vector")
	errNonFinite    = errors.New("vector contains NaN or Inf")
	errDimMismatch  = errors.New("vector dimension mismatch")
	errForeignIndex = errors.New("index was not built by this store")
)

func checkVector(vec []float32, dim int) error {
	if len(vec) == 0 {
		return errEmptyVector
	}
	if len(vec) != dim {
		return fmt.Errorf("%w: got %d, want %d", errDimMismatch, len(vec), dim)
	}
	if !finite(vec) {
		return errNonFinite
	}
	return nil
}

func countDocuments(chunks []domain.Chunk) int {
	seen := make(map[string]struct{})
	for _, c := range chunks {
		seen[c.DocumentID] = struct{}{}
	}
	return len(seen)
}
