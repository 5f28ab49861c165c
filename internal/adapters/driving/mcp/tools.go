package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string        `json:"answer"`
	SessionID string        `json:"session_id"`
	Sources   []ChunkOutput `json:"sources"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find similar passages for"`
	K     int    `json:"k,omitempty" jsonschema:"number of passages to return (default 4)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a retrieved passage.
type ChunkOutput struct {
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// RebuildOutput is the output schema for the rebuild tool.
type RebuildOutput struct {
	Documents int      `json:"documents"`
	Chunks    int      `json:"chunks"`
	Failures  []string `json:"failures,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents. Follow-up questions in the same session see earlier answers.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the passages of the indexed documents most similar to a query",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rebuild",
		Description: "Rebuild the index from the source directory",
	}, s.handleRebuild)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	var session *mcp.ServerSession
	if req != nil {
		session = req.Session
	}
	conversation := s.conversation(session)

	answer, err := conversation.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		SessionID: conversation.SessionID(),
		Sources:   chunkOutputs(answer.Sources),
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = domain.DefaultK
	}

	results, err := s.ports.Engine.Retriever().Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Chunks: chunkOutputs(results),
		Count:  len(results),
	}, nil
}

// handleRebuild handles the rebuild tool invocation.
func (s *Server) handleRebuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, RebuildOutput, error) {
	if _, err := s.ports.Engine.Rebuild(ctx); err != nil {
		return nil, RebuildOutput{}, err
	}

	var output RebuildOutput
	if report := s.ports.Engine.LastReport(); report != nil {
		output.Documents = report.Documents
		output.Chunks = report.Chunks
		for _, failure := range report.Failures {
			output.Failures = append(output.Failures, failure.Error())
		}
	}
	return nil, output, nil
}

func chunkOutputs(results []domain.RetrievedChunk) []ChunkOutput {
	out := make([]ChunkOutput, len(results))
	for i := range results {
		out[i] = ChunkOutput{
			DocumentID: results[i].Chunk.DocumentID,
			Source:     results[i].Chunk.Source(),
			Position:   results[i].Chunk.Position,
			Score:      results[i].Score,
			Content:    results[i].Chunk.Content,
		}
	}
	return out
}
