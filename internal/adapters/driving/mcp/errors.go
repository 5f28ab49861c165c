// Package mcp provides an MCP (Model Context Protocol) server adapter for vox.
// It lets AI assistants ask questions of the local knowledge base.
package mcp

import "errors"

// ErrMissingEngine is returned when the knowledge base engine is not provided.
var ErrMissingEngine = errors.New("mcp: engine is required")
