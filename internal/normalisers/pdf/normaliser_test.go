package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	// failFor makes Run fail when the path argument contains it.
	failFor string
	calls   [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.failFor != "" {
		for _, a := range args {
			if strings.Contains(a, m.failFor) {
				return nil, errors.New("Syntax Error: Couldn't find trailer dictionary")
			}
		}
	}
	return m.output, m.err
}

func TestNew(t *testing.T) {
	loader := New()
	require.NotNil(t, loader)
	assert.True(t, loader.checkTool)
	assert.Equal(t, domain.KindPDF, loader.Kind())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("test output")}
	loader := NewWithRunner(runner)
	require.NotNil(t, loader)
	assert.Equal(t, runner, loader.runner)
	assert.False(t, loader.checkTool)
}

func TestNormalise_NilDocument(t *testing.T) {
	docs, err := NewWithRunner(&mockRunner{}).Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, docs)
}

func TestNormalise_SplitsPages(t *testing.T) {
	runner := &mockRunner{
		output: []byte("PDF Title\n\nFirst page text.\n\fSecond page text.\n\f   \n\f"),
	}
	loader := NewWithRunner(runner)
	raw := &domain.RawDocument{URI: "/path/to/document.pdf", Metadata: map[string]any{"modified": "x"}}

	docs, err := loader.Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "PDF Title", docs[0].Title)
	assert.Equal(t, "PDF Title\n\nFirst page text.", docs[0].Content)
	assert.Equal(t, "1", docs[0].Metadata["page"])
	assert.Equal(t, "Second page text.", docs[1].Content)
	assert.Equal(t, "2", docs[1].Metadata["page"])
	assert.Equal(t, "pdf", docs[1].Metadata["format"])
	assert.Equal(t, "x", docs[1].Metadata["modified"])
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
	assert.Equal(t, domain.KindPDF, docs[0].Kind)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"pdftotext", "-layout", "-enc", "UTF-8", "/path/to/document.pdf", "-"}, runner.calls[0])
}

func TestNormalise_RunnerError(t *testing.T) {
	loader := NewWithRunner(&mockRunner{err: errors.New("pdftotext crashed")})

	docs, err := loader.Normalise(context.Background(), &domain.RawDocument{URI: "/doc.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, docs)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.pdf"), []byte("%PDF-1.4"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("junk"), 0644))

	runner := &mockRunner{output: []byte("Report\nbody"), failFor: "broken.pdf"}

	result, err := NewWithRunner(runner).Load(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, filepath.Join(dir, "good.pdf"), result.Documents[0].URI)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, filepath.Join(dir, "broken.pdf"), result.Skipped[0].Path)
	assert.Contains(t, result.Skipped[0].Error(), "pdftotext failed")
}

func TestLoad_NoFilesSkipsToolCheck(t *testing.T) {
	result, err := New().Load(context.Background(), t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, result.Documents)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first line as title", "Document Title\n\nSome content here.", "/doc.pdf", "Document Title"},
		{"skip empty lines", "\n\n\nActual Title\nContent", "/doc.pdf", "Actual Title"},
		{"fallback to filename", "", "/path/to/my_document.pdf", "my document"},
		{"skip very long first line", strings.Repeat("x", 250) + "\nShort Title\nContent", "/doc.pdf", "Short Title"},
		{"trims layout indentation", "      Centered Heading   \nbody", "/doc.pdf", "Centered Heading"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestCopyMetadata(t *testing.T) {
	assert.Nil(t, copyMetadata(nil))

	src := map[string]any{"key1": "value1", "key2": 42}
	dst := copyMetadata(src)
	assert.Equal(t, src, dst)
	dst["key3"] = true
	assert.NotContains(t, src, "key3")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.DocumentLoader = (*Loader)(nil)
}
