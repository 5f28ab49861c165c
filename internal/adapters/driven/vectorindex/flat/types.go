// Package flat implements an exact, brute-force vector index persisted as
// plain files. Each build is written to a fresh generation directory and
// made current by atomically replacing a pointer file, so readers only
// ever see a complete index.
//
// On-disk layout:
//
//	<dir>/CURRENT                    name of the active generation
//	<dir>/.build.lock                single-writer lock
//	<dir>/gen-<nanos>-<id>/
//	    chunks.jsonl                 one chunk per line, insertion order
//	    index.f32                    little-endian float32 vectors, row-major
//	    manifest.json                written last
package flat

import "github.com/custodia-labs/vox/internal/core/domain"

// IndexVersion is the on-disk format version.
const IndexVersion = 1

const (
	currentFile  = "CURRENT"
	lockFile     = ".build.lock"
	manifestFile = "manifest.json"
	chunksFile   = "chunks.jsonl"
	vectorFile   = "index.f32"
	genPrefix    = "gen-"
	tmpSuffix    = ".tmp"
)

// Manifest describes a persisted generation and how to interpret it.
type Manifest struct {
	IndexVersion int    `json:"index_version"`
	CreatedAt    string `json:"created_at"`
	ModelName    string `json:"model_name"`
	Dim          int    `json:"dim"`
	Normalized   bool   `json:"normalized"`
	Chunks       int    `json:"chunks"`
	Documents    int    `json:"documents"`
	VectorFile   string `json:"vector_file"`
	ChunksFile   string `json:"chunks_file"`
}

// chunkEntry is one line of chunks.jsonl.
type chunkEntry struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Content    string         `json:"content"`
	Position   int            `json:"position"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func toEntry(c domain.Chunk) chunkEntry {
	return chunkEntry{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Content:    c.Content,
		Position:   c.Position,
		Start:      c.Start,
		End:        c.End,
		Metadata:   c.Metadata,
	}
}

func (e chunkEntry) toChunk() domain.Chunk {
	return domain.Chunk{
		ID:         e.ID,
		DocumentID: e.DocumentID,
		Content:    e.Content,
		Position:   e.Position,
		Start:      e.Start,
		End:        e.End,
		Metadata:   e.Metadata,
	}
}
