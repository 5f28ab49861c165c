package domain

// RawDocument represents the bytes of a discovered source file.
// It is the connector's output before a loader extracts text.
type RawDocument struct {
	// URI is the file path.
	URI string

	// Kind is the format inferred from the extension.
	Kind DocumentKind

	// Content is the raw bytes. Empty for formats read by external tools.
	Content []byte

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}

// ChangeType represents the type of source file change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return unknownDescription
	}
}

// SourceChange is a change event from a watched source directory.
type SourceChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Path is the affected file.
	Path string

	// Kind is the document kind of the file.
	Kind DocumentKind
}
