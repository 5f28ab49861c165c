package services

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// Ensure Engine implements the interface.
var _ driving.Engine = (*Engine)(nil)

// Engine binds a knowledge base builder and an answerer to fixed directories.
type Engine struct {
	kb         driving.KnowledgeBaseService
	answerer   *Answerer
	sourceDir  string
	persistDir string
}

// NewEngine creates an engine. The answerer receives every index the
// engine opens or rebuilds.
func NewEngine(kb driving.KnowledgeBaseService, answerer *Answerer, sourceDir, persistDir string) *Engine {
	return &Engine{
		kb:         kb,
		answerer:   answerer,
		sourceDir:  sourceDir,
		persistDir: persistDir,
	}
}

// Open ensures the index exists and attaches it to the answerer.
func (e *Engine) Open(ctx context.Context) (driven.VectorIndex, error) {
	idx, err := e.kb.EnsureIndex(ctx, e.sourceDir, e.persistDir)
	if err != nil {
		return nil, err
	}
	e.answerer.SetIndex(idx)
	return idx, nil
}

// Rebuild builds a fresh index and attaches it. On failure the answerer
// keeps the index it had.
func (e *Engine) Rebuild(ctx context.Context) (driven.VectorIndex, error) {
	idx, err := e.kb.Rebuild(ctx, e.sourceDir, e.persistDir)
	if err != nil {
		return nil, err
	}
	e.answerer.SetIndex(idx)
	return idx, nil
}

// Status describes the persisted index.
func (e *Engine) Status(ctx context.Context) (*domain.IndexInfo, error) {
	return e.kb.Status(ctx, e.persistDir)
}

// LastReport returns the report of the last Open or Rebuild.
func (e *Engine) LastReport() *domain.BuildReport {
	return e.kb.LastReport()
}

// NewConversation starts a conversation over the shared answerer.
func (e *Engine) NewConversation() driving.AssistantService {
	return NewAssistantService(e.answerer)
}

// Retriever returns the answerer's similarity search.
func (e *Engine) Retriever() driving.Retriever {
	return e.answerer
}

// SourceDir is the directory documents are loaded from.
func (e *Engine) SourceDir() string {
	return e.sourceDir
}

// PersistDir is the directory the index is stored in.
func (e *Engine) PersistDir() string {
	return e.persistDir
}
