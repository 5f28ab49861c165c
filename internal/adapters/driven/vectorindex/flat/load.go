package flat

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/logger"
)

// maxChunkLine bounds one chunks.jsonl line.
const maxChunkLine = 16 * 1024 * 1024

// loadAttempts bounds how often Load follows a pointer that moved mid-read.
const loadAttempts = 3

// Load reads the current generation from dir.
// A missing pointer is IndexNotFound; anything unreadable, inconsistent
// or built with a different embedding model is IndexCorrupt.
// A generation pruned by a concurrent writer while it was being read is
// not corrupt: Load follows the new pointer instead.
func (s *Store) Load(ctx context.Context, dir string) (driven.VectorIndex, error) {
	var err error
	for attempt := 0; attempt < loadAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var gen string
		gen, err = readCurrent(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &domain.IndexNotFoundError{Dir: dir}
			}
			return nil, corrupt(dir, "cannot read index pointer", err)
		}
		if gen == "" || strings.ContainsAny(gen, `/\`) {
			return nil, corrupt(dir, fmt.Sprintf("invalid index pointer %q", gen), nil)
		}
		if s.pointerRead != nil {
			s.pointerRead(gen)
		}

		var idx *Index
		idx, err = s.loadGeneration(dir, gen)
		if err == nil {
			return idx, nil
		}
		if now, rerr := readCurrent(dir); rerr != nil || now == gen {
			return nil, err
		}
		logger.Debug("index pointer moved past %s while loading, retrying", gen)
	}
	return nil, err
}

func (s *Store) loadGeneration(dir, gen string) (*Index, error) {
	genDir := filepath.Join(dir, gen)

	b, err := os.ReadFile(filepath.Join(genDir, manifestFile))
	if err != nil {
		return nil, corrupt(dir, "cannot read manifest of "+gen, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, corrupt(dir, "invalid manifest JSON", err)
	}
	if m.IndexVersion != IndexVersion {
		return nil, corrupt(dir, fmt.Sprintf("unsupported index version %d", m.IndexVersion), nil)
	}
	if m.Dim <= 0 {
		return nil, corrupt(dir, fmt.Sprintf("invalid dim in manifest: %d", m.Dim), nil)
	}
	if m.VectorFile == "" {
		m.VectorFile = vectorFile
	}
	if m.ChunksFile == "" {
		m.ChunksFile = chunksFile
	}
	if s.embedder != nil {
		if want := s.embedder.ModelName(); want != "" && m.ModelName != want {
			return nil, corrupt(dir,
				fmt.Sprintf("built with embedding model %q, configured model is %q", m.ModelName, want), nil)
		}
		if want := s.embedder.Dimensions(); want > 0 && m.Dim != want {
			return nil, corrupt(dir, fmt.Sprintf("index has %d dimensions, embedder produces %d", m.Dim, want), nil)
		}
	}

	chunks, err := loadChunks(filepath.Join(genDir, m.ChunksFile))
	if err != nil {
		return nil, corrupt(dir, "cannot read chunks", err)
	}
	if len(chunks) != m.Chunks {
		return nil, corrupt(dir, fmt.Sprintf("manifest lists %d chunks, found %d", m.Chunks, len(chunks)), nil)
	}
	vectors, err := loadVectors(filepath.Join(genDir, m.VectorFile), len(chunks), m.Dim)
	if err != nil {
		return nil, corrupt(dir, "cannot read vectors", err)
	}

	logger.Debug("loaded index %s: %d chunks, dim %d, model %s", gen, len(chunks), m.Dim, m.ModelName)
	return newIndex(m, chunks, vectors, gen), nil
}

func corrupt(dir, reason string, err error) error {
	return &domain.IndexCorruptError{Dir: dir, Reason: reason, Err: err}
}

func loadChunks(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []domain.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxChunkLine)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var e chunkEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e.toChunk())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func loadVectors(path string, nChunks, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	expected := int64(nChunks) * int64(dim) * 4
	if st.Size() != expected {
		return nil, fmt.Errorf("vector file size mismatch: got %d want %d (chunks=%d dim=%d)",
			st.Size(), expected, nChunks, dim)
	}

	out := make([]float32, nChunks*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}
