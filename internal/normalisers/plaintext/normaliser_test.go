package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	loader := New()
	require.NotNil(t, loader)
	assert.Equal(t, domain.KindText, loader.Kind())
}

func TestNormalise_Success(t *testing.T) {
	loader := New()

	raw := &domain.RawDocument{
		URI:     "/path/to/document.txt",
		Kind:    domain.KindText,
		Content: []byte("This is plain text content."),
	}

	doc, err := loader.Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, domain.KindText, doc.Kind)
	assert.Equal(t, "document", doc.Title)
	assert.Equal(t, "This is plain text content.", doc.Content)
	assert.Equal(t, "text", doc.Metadata["format"])
	assert.False(t, doc.LoadedAt.IsZero())
}

func TestNormalise_StableID(t *testing.T) {
	loader := New()
	raw := &domain.RawDocument{URI: "/path/a.txt", Content: []byte("a")}

	first, err := loader.Normalise(context.Background(), raw)
	require.NoError(t, err)
	second, err := loader.Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestNormalise_NilDocument(t *testing.T) {
	doc, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	raw := &domain.RawDocument{URI: "/path/binary.txt", Content: []byte{0xff, 0xfe, 0xfd}}

	_, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_EmptyContent(t *testing.T) {
	raw := &domain.RawDocument{URI: "/path/to/empty.txt", Content: []byte("")}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		metadata      map[string]any
		expectedTitle string
	}{
		{"simple filename", "/path/to/document.txt", nil, "document"},
		{"underscores to spaces", "/path/my_document_name.txt", nil, "my document name"},
		{"dashes to spaces", "/path/my-document-name.txt", nil, "my document name"},
		{"metadata title wins", "/path/x.txt", map[string]any{"title": "Field Guide"}, "Field Guide"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := &domain.RawDocument{URI: tc.uri, Content: []byte("content"), Metadata: tc.metadata}

			doc, err := New().Normalise(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTitle, doc.Title)
		})
	}
}

func TestNormalise_MetadataPreserved(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/path/to/document.txt",
		Content:  []byte("content"),
		Metadata: map[string]any{"modified": "2024-01-01T00:00:00Z"},
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00Z", doc.Metadata["modified"])
	// Source metadata is copied, not shared.
	doc.Metadata["extra"] = "x"
	assert.NotContains(t, raw.Metadata, "extra")
}

func TestNormalise_UnicodeContent(t *testing.T) {
	content := "多语言文本测试\nこんにちは世界\nПривет мир\n🚀 Emoji test 🎉"
	raw := &domain.RawDocument{URI: "/path/unicode.txt", Content: []byte(content)}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, content, doc.Content)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte{0xff, 0xfe}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.md"), []byte("# other kind"), 0644))

	result, err := New().Load(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "alpha", result.Documents[0].Content)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, filepath.Join(dir, "b.txt"), result.Skipped[0].Path)
	assert.ErrorIs(t, result.Skipped[0], domain.ErrDocumentLoad)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := New().Load(context.Background(), "/non/existent/dir")
	assert.Error(t, err)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.DocumentLoader = (*Loader)(nil)
}

func BenchmarkNormalise(b *testing.B) {
	loader := New()
	ctx := context.Background()
	raw := &domain.RawDocument{URI: "/test/document.txt", Content: []byte("This is test content for benchmarking.")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = loader.Normalise(ctx, raw)
	}
}
