// Package domain defines the core business entities for vox.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The extracted text of one source file
//   - Chunk: A retrieval-sized substring of a document
//   - Turn: One question and answer within a conversation
//   - Voice: A named speech synthesis voice
//   - AppSettings: Ingestion, retrieval, provider and voice configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
