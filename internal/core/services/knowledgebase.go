package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
	"github.com/custodia-labs/vox/internal/logger"
)

// Ensure KnowledgeBaseService implements the interface.
var _ driving.KnowledgeBaseService = (*KnowledgeBaseService)(nil)

// KnowledgeBaseService turns a source directory into a persisted vector index.
// It owns index construction; answerers only ever receive the handle.
type KnowledgeBaseService struct {
	store    driven.IndexStore
	splitter driven.TextSplitter
	loaders  map[domain.DocumentKind]driven.DocumentLoader

	mu     sync.Mutex
	report *domain.BuildReport
}

// NewKnowledgeBaseService creates a builder over store and splitter.
// Loaders are registered by their Kind; a later loader for the same kind
// replaces an earlier one.
func NewKnowledgeBaseService(
	store driven.IndexStore,
	splitter driven.TextSplitter,
	loaders ...driven.DocumentLoader,
) *KnowledgeBaseService {
	s := &KnowledgeBaseService{
		store:    store,
		splitter: splitter,
		loaders:  make(map[domain.DocumentKind]driven.DocumentLoader, len(loaders)),
	}
	for _, l := range loaders {
		if l != nil {
			s.loaders[l.Kind()] = l
		}
	}
	return s
}

// MissingKinds returns the document kinds with no registered loader.
func (s *KnowledgeBaseService) MissingKinds() []domain.DocumentKind {
	var missing []domain.DocumentKind
	for _, kind := range domain.AllDocumentKinds() {
		if _, ok := s.loaders[kind]; !ok {
			missing = append(missing, kind)
		}
	}
	return missing
}

// EnsureIndex returns the index in persistDir when it loads cleanly, without
// reading sourceDir or embedding anything. A missing or corrupt index is
// rebuilt from sourceDir under the build lock.
func (s *KnowledgeBaseService) EnsureIndex(
	ctx context.Context, sourceDir, persistDir string,
) (driven.VectorIndex, error) {
	logger.Section("Knowledge Base")
	start := time.Now()

	idx, err := s.store.Load(ctx, persistDir)
	if err == nil {
		logger.Info("reusing index in %s (%d chunks, %s)", persistDir, idx.Len(), idx.ModelName())
		s.setReport(reuseReport(idx, start))
		return idx, nil
	}
	if !domain.IsIndexMissingOrCorrupt(err) {
		return nil, fmt.Errorf("load index: %w", err)
	}
	if errors.Is(err, domain.ErrIndexCorrupt) {
		logger.Warn("%v, rebuilding", err)
	} else {
		logger.Info("no index in %s, building from %s", persistDir, sourceDir)
	}

	release, err := s.store.AcquireWriteLock(ctx, persistDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("release index lock: %v", err)
		}
	}()

	// Another writer may have finished while we waited for the lock.
	idx, err = s.store.Load(ctx, persistDir)
	if err == nil {
		logger.Info("index in %s was built concurrently, reusing it", persistDir)
		s.setReport(reuseReport(idx, start))
		return idx, nil
	}
	if !domain.IsIndexMissingOrCorrupt(err) {
		return nil, fmt.Errorf("load index: %w", err)
	}

	return s.build(ctx, sourceDir, persistDir, start)
}

func reuseReport(idx driven.VectorIndex, start time.Time) *domain.BuildReport {
	return &domain.BuildReport{
		Reused:    true,
		Documents: idx.Info().Documents,
		Chunks:    idx.Len(),
		Duration:  time.Since(start),
	}
}

// Rebuild builds a new index from sourceDir and makes it current in
// persistDir. Handles to the previous index stay valid.
func (s *KnowledgeBaseService) Rebuild(
	ctx context.Context, sourceDir, persistDir string,
) (driven.VectorIndex, error) {
	logger.Section("Knowledge Base Rebuild")
	start := time.Now()

	release, err := s.store.AcquireWriteLock(ctx, persistDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("release index lock: %v", err)
		}
	}()

	return s.build(ctx, sourceDir, persistDir, start)
}

// Status describes the index in persistDir.
func (s *KnowledgeBaseService) Status(ctx context.Context, persistDir string) (*domain.IndexInfo, error) {
	idx, err := s.store.Load(ctx, persistDir)
	if err != nil {
		return nil, err
	}
	info := idx.Info()
	return &info, nil
}

// LastReport returns the report of the most recent EnsureIndex or Rebuild.
func (s *KnowledgeBaseService) LastReport() *domain.BuildReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func (s *KnowledgeBaseService) setReport(r *domain.BuildReport) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()
}

// build runs load, split, embed and persist. The caller holds the write lock.
// Nothing is persisted unless every chunk was embedded.
func (s *KnowledgeBaseService) build(
	ctx context.Context, sourceDir, persistDir string, start time.Time,
) (driven.VectorIndex, error) {
	docs, report, err := s.loadDocuments(ctx, sourceDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoDocuments, sourceDir)
	}

	chunks := s.splitter.Split(docs)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %d documents in %s produced no text", domain.ErrNoDocuments, len(docs), sourceDir)
	}
	logger.Info("split %d documents into %d chunks", len(docs), len(chunks))

	idx, err := s.store.Build(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	if err := s.store.Persist(ctx, idx, persistDir); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	report.Chunks = len(chunks)
	report.Duration = time.Since(start)
	s.setReport(report)
	logger.Info("indexed %d chunks from %d documents in %s", len(chunks), len(docs), report.Duration.Round(time.Millisecond))
	return idx, nil
}

// loadDocuments runs every kind's loader over sourceDir. A failing loader
// or file is recorded and skipped; only cancellation and an unusable
// source directory stop the load.
func (s *KnowledgeBaseService) loadDocuments(
	ctx context.Context, sourceDir string,
) ([]domain.Document, *domain.BuildReport, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: source %s is not a directory", domain.ErrInvalidInput, sourceDir)
	}

	report := &domain.BuildReport{PerKind: make(map[domain.DocumentKind]int)}
	var docs []domain.Document

	for _, kind := range domain.AllDocumentKinds() {
		loader, ok := s.loaders[kind]
		if !ok {
			loadErr := &domain.DocumentLoadError{Kind: kind, Err: errors.New("no loader registered")}
			logger.Warn("%v", loadErr)
			report.Failures = append(report.Failures, loadErr)
			continue
		}

		result, err := loader.Load(ctx, sourceDir)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if err != nil {
			loadErr := &domain.DocumentLoadError{Kind: kind, Err: err}
			logger.Warn("%v, continuing without %s documents", loadErr, kind)
			report.Failures = append(report.Failures, loadErr)
			continue
		}
		for _, skipped := range result.Skipped {
			logger.Warn("skipping %v", skipped)
		}
		report.Failures = append(report.Failures, result.Skipped...)

		loaded := 0
		for _, doc := range result.Documents {
			if strings.TrimSpace(doc.Content) == "" {
				logger.Debug("skipping %s: no text", doc.URI)
				continue
			}
			docs = append(docs, doc)
			loaded++
		}
		if loaded > 0 {
			logger.Debug("loaded %d %s documents", loaded, kind)
		}
		report.PerKind[kind] = loaded
	}

	report.Documents = len(docs)
	return docs, report, nil
}
