package driven

import "github.com/custodia-labs/vox/internal/core/domain"

// TextSplitter splits documents into retrieval-sized chunks.
// Implementations must be deterministic for equal input and configuration.
type TextSplitter interface {
	// Split returns the chunks of every document, in document order.
	Split(docs []domain.Document) []domain.Chunk
}
