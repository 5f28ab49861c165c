package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document kind or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoDocuments indicates a source directory produced nothing to index.
	ErrNoDocuments = errors.New("no documents to index")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSpeechUnavailable indicates speech capture or synthesis is not configured.
	ErrSpeechUnavailable = errors.New("speech service unavailable")

	// ErrUnknownVoice indicates a voice name outside the catalogue.
	ErrUnknownVoice = errors.New("unknown voice")

	// Pipeline Errors.

	// ErrDocumentLoad matches every DocumentLoadError.
	ErrDocumentLoad = errors.New("document load failed")

	// ErrEmbeddingProvider matches every EmbeddingProviderError.
	ErrEmbeddingProvider = errors.New("embedding provider failed")

	// ErrIndexNotFound matches every IndexNotFoundError.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexCorrupt matches every IndexCorruptError.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrKnowledgeBaseNotReady indicates a question was asked before any index was built or loaded.
	ErrKnowledgeBaseNotReady = errors.New("knowledge base not ready")

	// ErrLanguageModel matches every LanguageModelError.
	ErrLanguageModel = errors.New("language model failed")
)

// DocumentLoadError reports a loader failure for one kind or one file.
// It is never fatal to ingestion.
type DocumentLoadError struct {
	Kind DocumentKind
	Path string
	Err  error
}

func (e *DocumentLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load %s document %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("load %s documents: %v", e.Kind, e.Err)
}

func (e *DocumentLoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDocumentLoad) match.
func (e *DocumentLoadError) Is(target error) bool { return target == ErrDocumentLoad }

// EmbeddingProviderError reports an unreachable provider or malformed vectors.
type EmbeddingProviderError struct {
	Op  string
	Err error
}

func (e *EmbeddingProviderError) Error() string {
	return fmt.Sprintf("embedding provider: %s: %v", e.Op, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrEmbeddingProvider) match.
func (e *EmbeddingProviderError) Is(target error) bool { return target == ErrEmbeddingProvider }

// IndexNotFoundError reports that no index exists in a directory.
type IndexNotFoundError struct {
	Dir string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("no index in %s", e.Dir)
}

// Is lets errors.Is(err, ErrIndexNotFound) match.
func (e *IndexNotFoundError) Is(target error) bool { return target == ErrIndexNotFound }

// IndexCorruptError reports an index that exists but cannot be trusted.
type IndexCorruptError struct {
	Dir    string
	Reason string
	Err    error
}

func (e *IndexCorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("index in %s is corrupt: %s: %v", e.Dir, e.Reason, e.Err)
	}
	return fmt.Sprintf("index in %s is corrupt: %s", e.Dir, e.Reason)
}

func (e *IndexCorruptError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrIndexCorrupt) match.
func (e *IndexCorruptError) Is(target error) bool { return target == ErrIndexCorrupt }

// LanguageModelError reports a failed or empty completion.
type LanguageModelError struct {
	Model string
	Err   error
}

func (e *LanguageModelError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("language model %s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("language model: %v", e.Err)
}

func (e *LanguageModelError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrLanguageModel) match.
func (e *LanguageModelError) Is(target error) bool { return target == ErrLanguageModel }

// IsIndexMissingOrCorrupt reports whether err means the index must be rebuilt.
func IsIndexMissingOrCorrupt(err error) bool {
	return errors.Is(err, ErrIndexNotFound) || errors.Is(err, ErrIndexCorrupt)
}
