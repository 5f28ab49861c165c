package flat

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/logger"
)

// Persist writes idx as a new generation under dir and makes it current.
// The previous generation is kept; older ones are pruned.
func (s *Store) Persist(ctx context.Context, vi driven.VectorIndex, dir string) error {
	idx, ok := vi.(*Index)
	if !ok {
		return errForeignIndex
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	previous, _ := readCurrent(dir)
	gen := fmt.Sprintf("%s%d-%s", genPrefix, time.Now().UnixNano(), uuid.NewString()[:8])
	staging := filepath.Join(dir, gen+tmpSuffix)

	if err := writeGeneration(staging, idx); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	if err := os.Rename(staging, filepath.Join(dir, gen)); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("cannot publish generation %s: %w", gen, err)
	}
	if err := writeCurrent(dir, gen); err != nil {
		return err
	}
	idx.generation = gen
	logger.Info("index generation %s is current (%d chunks)", gen, idx.Len())

	prune(dir, gen, previous)
	return nil
}

// writeGeneration writes chunks, vectors and finally the manifest into genDir.
func writeGeneration(genDir string, idx *Index) error {
	m := idx.manifest
	if m.Dim <= 0 {
		return fmt.Errorf("invalid dim: %d", m.Dim)
	}
	if len(idx.vectors) != len(idx.chunks)*m.Dim {
		return fmt.Errorf("vector length mismatch: got %d want %d", len(idx.vectors), len(idx.chunks)*m.Dim)
	}
	if err := os.MkdirAll(genDir, 0o755); err != nil {
		return fmt.Errorf("cannot create generation dir %s: %w", genDir, err)
	}

	// chunks jsonl
	if err := writeFileSynced(filepath.Join(genDir, m.ChunksFile), func(w *bufio.Writer) error {
		for _, c := range idx.chunks {
			line, err := json.Marshal(toEntry(c))
			if err != nil {
				return err
			}
			if _, err := w.Write(line); err != nil {
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("cannot write chunks: %w", err)
	}

	// vectors
	if err := writeFileSynced(filepath.Join(genDir, m.VectorFile), func(w *bufio.Writer) error {
		return binary.Write(w, binary.LittleEndian, idx.vectors)
	}); err != nil {
		return fmt.Errorf("cannot write vectors: %w", err)
	}

	// manifest last: its presence marks a complete generation.
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileSynced(filepath.Join(genDir, manifestFile), func(w *bufio.Writer) error {
		_, err := w.Write(mb)
		return err
	}); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}
	return nil
}

func writeFileSynced(path string, fill func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeCurrent atomically points dir/CURRENT at gen.
func writeCurrent(dir, gen string) error {
	tmp, err := os.CreateTemp(dir, currentFile+".*"+tmpSuffix)
	if err != nil {
		return fmt.Errorf("cannot create pointer file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(gen + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write pointer file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot sync pointer file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(dir, currentFile)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot swap index pointer: %w", err)
	}
	syncDir(dir)
	return nil
}

func readCurrent(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, currentFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// syncDir flushes directory entries so a rename survives a crash.
// Not every platform supports it, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// prune removes generations other than current and previous, and any
// staging leftovers from interrupted builds.
func prune(dir, current, previous string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if name == current || name == previous {
			continue
		}
		stale := strings.HasPrefix(name, genPrefix) ||
			(strings.HasPrefix(name, currentFile+".") && strings.HasSuffix(name, tmpSuffix))
		if !stale {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			logger.Warn("cannot remove stale index %s: %v", name, err)
			continue
		}
		logger.Debug("pruned %s", name)
	}
}
