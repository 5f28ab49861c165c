// Package chunker provides a recursive character text splitter.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.TextSplitter = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order: paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits document content into overlapping chunks, preferring
// the coarsest separator that keeps pieces within the chunk size.
// Sizes are measured in characters (runes).
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator list. An empty list is ignored.
func WithSeparators(separators []string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = append([]string(nil), separators...)
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split chunks every document in order.
func (p *Processor) Split(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for i := range docs {
		chunks = append(chunks, p.chunkDocument(&docs[i])...)
	}
	return chunks
}

// Process splits a single document into chunks.
func (p *Processor) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	return p.chunkDocument(doc), nil
}

func (p *Processor) chunkDocument(doc *domain.Document) []domain.Chunk {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil
	}

	spans := p.splitSpans(doc.Content)
	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s#%d", doc.ID, i),
			DocumentID: doc.ID,
			Content:    doc.Content[s.start:s.end],
			Position:   i,
			Start:      s.start,
			End:        s.end,
			Metadata:   chunkMetadata(doc),
		})
	}
	return chunks
}

// span is a byte range of the document text with its length in runes.
type span struct {
	start int
	end   int
	size  int
}

func (p *Processor) splitSpans(text string) []span {
	if text == "" {
		return nil
	}
	return p.splitRange(text, 0, len(text), p.separators)
}

// splitRange splits text[start:end] with the first separator that occurs in it,
// merges the pieces up to the chunk size and recurses into oversized pieces
// with the remaining separators.
func (p *Processor) splitRange(text string, start, end int, separators []string) []span {
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" {
			sep = s
			break
		}
		if strings.Contains(text[start:end], s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var out, fitting []span
	for _, piece := range splitKeepingSeparator(text, start, end, sep) {
		if piece.size <= p.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, p.merge(fitting)...)
			fitting = nil
		}
		if len(rest) == 0 {
			// Nothing left to split on; keep the oversized piece whole.
			out = append(out, piece)
			continue
		}
		out = append(out, p.splitRange(text, piece.start, piece.end, rest)...)
	}
	if len(fitting) > 0 {
		out = append(out, p.merge(fitting)...)
	}
	return out
}

// merge combines contiguous pieces into chunks of at most chunkSize runes,
// starting each new chunk with up to overlap runes from the end of the previous one.
func (p *Processor) merge(pieces []span) []span {
	var out, window []span
	total := 0

	for _, piece := range pieces {
		if total+piece.size > p.chunkSize && len(window) > 0 {
			out = append(out, join(window, total))
			for total > p.overlap || (total+piece.size > p.chunkSize && total > 0) {
				total -= window[0].size
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += piece.size
	}
	if len(window) > 0 {
		out = append(out, join(window, total))
	}
	return out
}

func join(window []span, size int) span {
	return span{start: window[0].start, end: window[len(window)-1].end, size: size}
}

// splitKeepingSeparator cuts text[start:end] after every occurrence of sep.
// The empty separator cuts between runes.
func splitKeepingSeparator(text string, start, end int, sep string) []span {
	var pieces []span

	if sep == "" {
		for pos := start; pos < end; {
			_, width := utf8.DecodeRuneInString(text[pos:end])
			pieces = append(pieces, span{start: pos, end: pos + width, size: 1})
			pos += width
		}
		return pieces
	}

	pos := start
	for pos < end {
		idx := strings.Index(text[pos:end], sep)
		if idx < 0 {
			break
		}
		cut := pos + idx + len(sep)
		pieces = append(pieces, span{start: pos, end: cut, size: utf8.RuneCountInString(text[pos:cut])})
		pos = cut
	}
	if pos < end {
		pieces = append(pieces, span{start: pos, end: end, size: utf8.RuneCountInString(text[pos:end])})
	}
	return pieces
}

// chunkMetadata copies the document metadata and adds its identity.
func chunkMetadata(doc *domain.Document) map[string]any {
	md := make(map[string]any, len(doc.Metadata)+3)
	for k, v := range doc.Metadata {
		md[k] = v
	}
	md["uri"] = doc.URI
	md["kind"] = doc.Kind.String()
	if doc.Title != "" {
		md["title"] = doc.Title
	}
	return md
}
