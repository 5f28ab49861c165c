package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// DocumentKind identifies a supported source file format.
// The set is closed: every kind has exactly one loader.
type DocumentKind string

// Supported document kinds.
const (
	// KindPDF is a PDF document, text extracted with pdftotext.
	KindPDF DocumentKind = "pdf"

	// KindText is a plain text file.
	KindText DocumentKind = "text"

	// KindMarkdown is a Markdown file, formatting stripped before chunking.
	KindMarkdown DocumentKind = "markdown"
)

// AllDocumentKinds returns every supported kind in dispatch order.
func AllDocumentKinds() []DocumentKind {
	return []DocumentKind{KindPDF, KindText, KindMarkdown}
}

// IsValid returns true if the kind is recognised.
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindPDF, KindText, KindMarkdown:
		return true
	default:
		return false
	}
}

// Extensions returns the file extensions (lowercase, with dot) for the kind.
func (k DocumentKind) Extensions() []string {
	switch k {
	case KindPDF:
		return []string{".pdf"}
	case KindText:
		return []string{".txt"}
	case KindMarkdown:
		return []string{".md", ".markdown"}
	default:
		return nil
	}
}

// String returns the string representation.
func (k DocumentKind) String() string {
	return string(k)
}

// KindForPath maps a file path to its kind by extension.
// Matching is case-insensitive. Unsupported extensions report false.
func KindForPath(path string) (DocumentKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	for _, kind := range AllDocumentKinds() {
		for _, e := range kind.Extensions() {
			if e == ext {
				return kind, true
			}
		}
	}
	return "", false
}

// Document is the text of one source file plus where it came from.
// Documents are created by loaders and discarded after chunking.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the origin path of the file.
	URI string

	// Kind is the file format the document was loaded from.
	Kind DocumentKind

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]any

	// LoadedAt is when the document was read from disk.
	LoadedAt time.Time
}

// Chunk is a contiguous substring of a document's text.
// Chunks are the unit that is embedded, stored and retrieved.
type Chunk struct {
	// ID is the identifier for the chunk, stable for equal input.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Start and End are byte offsets of Content within the document text.
	Start int
	End   int

	// Metadata carries the parent document's metadata (uri, kind, title).
	Metadata map[string]any
}

// Source returns the origin path recorded in the chunk metadata.
func (c Chunk) Source() string {
	if c.Metadata == nil {
		return ""
	}
	uri, _ := c.Metadata["uri"].(string)
	return uri
}

// RetrievedChunk is a chunk returned by a similarity query.
type RetrievedChunk struct {
	// Chunk is the stored chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query vector.
	Score float64
}

// IndexInfo summarises a persisted vector index.
type IndexInfo struct {
	// Generation is the directory name of the active index generation.
	Generation string

	// ModelName is the embedding model the vectors were produced with.
	ModelName string

	// Dimensions is the embedding vector size.
	Dimensions int

	// Chunks is the number of stored chunks.
	Chunks int

	// Documents is the number of distinct source documents.
	Documents int

	// CreatedAt is when the index was built.
	CreatedAt time.Time
}
