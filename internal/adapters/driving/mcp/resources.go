package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vox/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for vox resources.
	uriScheme = "vox://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "The persisted vector index: model, dimensions and size",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Stored conversations, newest first",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session-turns",
		Description: "Questions and answers of a stored conversation",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// handleIndexResource describes the persisted index.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info, err := s.ports.Engine.Status(ctx)
	if errors.Is(err, domain.ErrIndexNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	type indexInfo struct {
		Generation string `json:"generation"`
		Model      string `json:"model"`
		Dimensions int    `json:"dimensions"`
		Documents  int    `json:"documents"`
		Chunks     int    `json:"chunks"`
		CreatedAt  string `json:"created_at,omitempty"`
		SourceDir  string `json:"source_dir"`
		PersistDir string `json:"persist_dir"`
	}

	out := indexInfo{
		Generation: info.Generation,
		Model:      info.ModelName,
		Dimensions: info.Dimensions,
		Documents:  info.Documents,
		Chunks:     info.Chunks,
		SourceDir:  s.ports.Engine.SourceDir(),
		PersistDir: s.ports.Engine.PersistDir(),
	}
	if !info.CreatedAt.IsZero() {
		out.CreatedAt = info.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return jsonResult(req.Params.URI, out)
}

// handleSessionsResource lists stored conversations.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	sessions, err := s.ports.History.Sessions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	type sessionInfo struct {
		ID        string `json:"id"`
		StartedAt string `json:"started_at"`
		Turns     int    `json:"turns"`
	}

	infos := make([]sessionInfo, len(sessions))
	for i, session := range sessions {
		infos[i] = sessionInfo{
			ID:        session.ID,
			StartedAt: session.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Turns:     session.Turns,
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleSessionResource returns the turns of one conversation.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// vox://sessions/{sessionId}
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	turns, err := s.ports.History.Turns(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	type turnInfo struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		AskedAt  string `json:"asked_at"`
	}

	infos := make([]turnInfo, len(turns))
	for i, turn := range turns {
		infos[i] = turnInfo{
			Question: turn.Question,
			Answer:   turn.Answer,
			AskedAt:  turn.AskedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like vox://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
