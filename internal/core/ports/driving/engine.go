package driving

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Engine is the knowledge base and answerer for one source and index directory.
type Engine interface {
	// Open loads or builds the index and answers later questions from it.
	Open(ctx context.Context) (driven.VectorIndex, error)

	// Rebuild rebuilds the index from the source directory and answers
	// later questions from the new one.
	Rebuild(ctx context.Context) (driven.VectorIndex, error)

	// Status describes the persisted index.
	Status(ctx context.Context) (*domain.IndexInfo, error)

	// LastReport returns the report of the last Open or Rebuild.
	LastReport() *domain.BuildReport

	// NewConversation starts a conversation with empty history.
	NewConversation() AssistantService

	// Retriever searches the open index without calling the language model.
	Retriever() Retriever

	// SourceDir is the directory documents are loaded from.
	SourceDir() string

	// PersistDir is the directory the index is stored in.
	PersistDir() string
}
