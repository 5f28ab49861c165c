// Package pdf loads PDF documents using the pdftotext tool from poppler.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vox/internal/adapters/driven/command"
	"github.com/custodia-labs/vox/internal/connectors/filesystem"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

const toolName = "pdftotext"

// maxTitleLength bounds a first line used as a title.
const maxTitleLength = 200

// Loader extracts PDF text one page at a time.
type Loader struct {
	runner driven.CommandRunner
	// checkTool verifies pdftotext is on PATH before loading.
	checkTool bool
}

// New creates a PDF loader that runs pdftotext.
func New() *Loader {
	return &Loader{runner: command.NewRunner(), checkTool: true}
}

// NewWithRunner creates a PDF loader with a custom command runner.
func NewWithRunner(runner driven.CommandRunner) *Loader {
	return &Loader{runner: runner}
}

// CheckAvailable reports whether pdftotext can be run.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `PDF support requires pdftotext (part of poppler):
  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils`
}

// Kind returns the document kind this loader handles.
func (l *Loader) Kind() domain.DocumentKind {
	return domain.KindPDF
}

// Load extracts every .pdf file under dir.
// A missing pdftotext fails the whole kind; a file it cannot read is skipped.
func (l *Loader) Load(ctx context.Context, dir string) (driven.LoadResult, error) {
	raws, skipped, err := filesystem.New(dir).Discover(ctx, domain.KindPDF)
	if err != nil {
		return driven.LoadResult{}, err
	}
	if len(raws) > 0 && l.checkTool {
		if err := CheckAvailable(); err != nil {
			return driven.LoadResult{}, fmt.Errorf("%w\n%s", err, InstallInstructions())
		}
	}

	result := driven.LoadResult{Skipped: skipped}
	for i := range raws {
		docs, err := l.Normalise(ctx, &raws[i])
		if err != nil {
			result.Skipped = append(result.Skipped, &domain.DocumentLoadError{
				Kind: domain.KindPDF, Path: raws[i].URI, Err: err,
			})
			continue
		}
		result.Documents = append(result.Documents, docs...)
	}
	return result, nil
}

// Normalise extracts the text of one PDF, returning a document per
// non-blank page. pdftotext separates pages with form feeds.
func (l *Loader) Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	out, err := l.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", raw.URI, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	pages := strings.Split(string(out), "\f")
	title := extractTitle(string(out), raw.URI)
	now := time.Now()

	var docs []domain.Document
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pageNum := strconv.Itoa(i + 1)

		metadata := copyMetadata(raw.Metadata)
		if metadata == nil {
			metadata = make(map[string]any)
		}
		metadata["format"] = "pdf"
		metadata["page"] = pageNum

		docs = append(docs, domain.Document{
			ID:       filesystem.DocumentID(raw.URI, "#page=", pageNum),
			URI:      raw.URI,
			Kind:     domain.KindPDF,
			Title:    title,
			Content:  strings.TrimRight(page, " \n"),
			Metadata: metadata,
			LoadedAt: now,
		})
	}
	return docs, nil
}

// extractTitle uses the first short non-empty line, falling back to the filename.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "\x00\f"))
		if line == "" || len(line) > maxTitleLength {
			continue
		}
		return line
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
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
