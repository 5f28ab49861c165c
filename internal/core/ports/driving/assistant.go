package driving

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// AssistantService answers questions against the knowledge base within one conversation.
type AssistantService interface {
	// Ask answers a question and records the turn.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// History returns the conversation so far, in call order.
	History() []domain.Turn

	// SessionID identifies the conversation.
	SessionID() string
}

// Retriever exposes similarity search without invoking the language model.
type Retriever interface {
	// Retrieve returns the k chunks most similar to query.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}
