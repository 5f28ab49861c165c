package mcp

import (
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Engine answers questions and describes the index. It must already be open.
	Engine driving.Engine

	// History reads stored conversations. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Engine == nil {
		return ErrMissingEngine
	}
	return nil
}
