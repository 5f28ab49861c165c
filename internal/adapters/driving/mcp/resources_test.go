package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vox/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid session URI",
			uri:      "vox://sessions/abc-123",
			expected: "abc-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sessions/abc-123",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "vox://sessions/abc/turns",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSessionID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleIndexResource(t *testing.T) {
	ctx := context.Background()

	t.Run("describes index", func(t *testing.T) {
		engine := newMockEngine()
		engine.info = &domain.IndexInfo{
			Generation: "gen-1",
			ModelName:  "nomic-embed-text",
			Dimensions: 768,
			Documents:  4,
			Chunks:     40,
			CreatedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		result, err := server.handleIndexResource(ctx, makeReadResourceRequest("vox://index"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"model": "nomic-embed-text"`)
		assert.Contains(t, text, `"dimensions": 768`)
		assert.Contains(t, text, `"chunks": 40`)
		assert.Contains(t, text, `"created_at": "2024-05-01T12:00:00Z"`)
		assert.Contains(t, text, `"source_dir": "/docs"`)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("missing index returns not found", func(t *testing.T) {
		engine := newMockEngine()
		engine.statusErr = &domain.IndexNotFoundError{Dir: "/index"}
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		_, err = server.handleIndexResource(ctx, makeReadResourceRequest("vox://index"))

		require.Error(t, err)
	})

	t.Run("returns error on status failure", func(t *testing.T) {
		engine := newMockEngine()
		engine.statusErr = errors.New("disk error")
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		_, err = server.handleIndexResource(ctx, makeReadResourceRequest("vox://index"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading index")
	})
}

func TestServer_handleSessionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil history service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Engine: newMockEngine()})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("vox://sessions"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns sessions", func(t *testing.T) {
		history := &mockHistoryService{
			sessions: []domain.SessionSummary{
				{ID: "s-1", StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Turns: 3},
			},
		}
		server, err := NewServer(&Ports{Engine: newMockEngine(), History: history})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("vox://sessions"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"id": "s-1"`)
		assert.Contains(t, result.Contents[0].Text, `"turns": 3`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		history := &mockHistoryService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Engine: newMockEngine(), History: history})
		require.NoError(t, err)

		_, err = server.handleSessionsResource(ctx, makeReadResourceRequest("vox://sessions"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sessions")
	})
}

func TestServer_handleSessionResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil history service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Engine: newMockEngine()})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("vox://sessions/s-1"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Engine: newMockEngine(), History: &mockHistoryService{}})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("vox://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("returns turns", func(t *testing.T) {
		history := &mockHistoryService{
			turns: []domain.Turn{
				{Question: "What is vox?", Answer: "A voice assistant.", AskedAt: time.Now()},
			},
		}
		server, err := NewServer(&Ports{Engine: newMockEngine(), History: history})
		require.NoError(t, err)

		result, err := server.handleSessionResource(ctx, makeReadResourceRequest("vox://sessions/s-1"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, "What is vox?")
		assert.Contains(t, result.Contents[0].Text, "A voice assistant.")
	})

	t.Run("unknown session returns not found", func(t *testing.T) {
		history := &mockHistoryService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Engine: newMockEngine(), History: history})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("vox://sessions/missing"))

		require.Error(t, err)
		assert.NotContains(t, err.Error(), "getting session")
	})
}
