package domain

import "time"

// BuildReport describes the outcome of the last EnsureIndex or Rebuild.
type BuildReport struct {
	// Reused is true when an existing index was loaded without embedding.
	Reused bool

	// Documents is the number of documents loaded from the source directory.
	Documents int

	// Chunks is the number of chunks embedded into the index.
	Chunks int

	// PerKind counts loaded documents by kind.
	PerKind map[DocumentKind]int

	// Failures are the non-fatal load errors, by kind or by file.
	Failures []*DocumentLoadError

	// Duration is the wall time of the call.
	Duration time.Duration
}
