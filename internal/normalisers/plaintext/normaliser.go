// Package plaintext loads .txt documents.
package plaintext

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/vox/internal/connectors/filesystem"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader handles plain text documents.
type Loader struct{}

// New creates a new plain text loader.
func New() *Loader {
	return &Loader{}
}

// Kind returns the document kind this loader handles.
func (l *Loader) Kind() domain.DocumentKind {
	return domain.KindText
}

// Load reads every .txt file under dir.
func (l *Loader) Load(ctx context.Context, dir string) (driven.LoadResult, error) {
	raws, skipped, err := filesystem.New(dir).Discover(ctx, domain.KindText)
	if err != nil {
		return driven.LoadResult{}, err
	}

	result := driven.LoadResult{Skipped: skipped}
	for i := range raws {
		doc, err := l.Normalise(ctx, &raws[i])
		if err != nil {
			result.Skipped = append(result.Skipped, &domain.DocumentLoadError{
				Kind: domain.KindText, Path: raws[i].URI, Err: err,
			})
			continue
		}
		result.Documents = append(result.Documents, *doc)
	}
	return result, nil
}

// Normalise converts a raw text file to a document.
// Invalid UTF-8 is rejected rather than indexed as garbage.
func (l *Loader) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, raw.URI)
	}

	metadata := copyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["format"] = "text"

	return &domain.Document{
		ID:       filesystem.DocumentID(raw.URI),
		URI:      raw.URI,
		Kind:     domain.KindText,
		Title:    extractTitleFromMetadataOrURI(raw),
		Content:  string(raw.Content),
		Metadata: metadata,
		LoadedAt: time.Now(),
	}, nil
}

// extractTitleFromMetadataOrURI checks metadata for title first, then falls back to URI.
func extractTitleFromMetadataOrURI(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return extractTitle(raw.URI)
}

// extractTitle extracts a human-readable title from a URI.
func extractTitle(uri string) string {
	filename := filepath.Base(uri)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
