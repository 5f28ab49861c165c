package flat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index holds chunks and their unit vectors in memory.
// It is immutable after construction and safe for concurrent queries.
type Index struct {
	manifest   Manifest
	chunks     []domain.Chunk
	vectors    []float32 // len(chunks) * manifest.Dim, row-major
	generation string
}

// newIndex assembles an index from already normalised vectors.
func newIndex(manifest Manifest, chunks []domain.Chunk, vectors []float32, generation string) *Index {
	return &Index{
		manifest:   manifest,
		chunks:     chunks,
		vectors:    vectors,
		generation: generation,
	}
}

// Query returns up to k chunks ranked by cosine similarity to vector.
// Ties keep insertion order. k <= 0 returns no results.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 || len(i.chunks) == 0 {
		return nil, nil
	}
	if len(vector) != i.manifest.Dim {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(vector), i.manifest.Dim)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := normalizeL2(vector)
	dim := i.manifest.Dim

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(i.chunks))
	for n := range i.chunks {
		scores[n] = scored{idx: n, score: dot(q, i.vectors[n*dim:(n+1)*dim])}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]domain.RetrievedChunk, k)
	for n := 0; n < k; n++ {
		results[n] = domain.RetrievedChunk{
			Chunk: i.chunks[scores[n].idx],
			Score: scores[n].score,
		}
	}
	return results, nil
}

// Len returns the number of stored chunks.
func (i *Index) Len() int {
	return len(i.chunks)
}

// Dimensions returns the vector size.
func (i *Index) Dimensions() int {
	return i.manifest.Dim
}

// ModelName returns the embedding model the vectors came from.
func (i *Index) ModelName() string {
	return i.manifest.ModelName
}

// Chunks returns the stored chunks in insertion order.
func (i *Index) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(i.chunks))
	copy(out, i.chunks)
	return out
}

// Info summarises the index.
func (i *Index) Info() domain.IndexInfo {
	created, _ := time.Parse(time.RFC3339, i.manifest.CreatedAt)
	return domain.IndexInfo{
		Generation: i.generation,
		ModelName:  i.manifest.ModelName,
		Dimensions: i.manifest.Dim,
		Chunks:     len(i.chunks),
		Documents:  i.manifest.Documents,
		CreatedAt:  created,
	}
}
