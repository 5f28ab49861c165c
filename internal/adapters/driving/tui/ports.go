// Package tui provides an interactive terminal user interface for vox.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"time"

	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Engine owns the knowledge base and starts conversations.
	Engine driving.Engine

	// Voice records questions and speaks answers. Optional.
	Voice driving.VoiceService

	// History lists stored conversations. Optional.
	History driving.HistoryService

	// VoiceName is the voice answers are spoken with.
	VoiceName string

	// RecordFor is how long a spoken question is recorded.
	RecordFor time.Duration
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Engine == nil {
		return ErrMissingEngine
	}
	return nil
}
