package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// Version is the MCP server version.
const Version = "0.1.0"

const instructions = `vox answers questions about a local folder of documents.
Use "ask" for grounded answers; follow-up questions in the same MCP session
share one conversation.
Use "retrieve" to see the raw chunks a question would be answered from.
The vox://index resource describes the knowledge base.`

// Server is the MCP server for vox. Each client session gets its own
// conversation, created on its first ask.
type Server struct {
	ports  *Ports
	server *mcp.Server

	mu            sync.Mutex
	conversations map[*mcp.ServerSession]driving.AssistantService
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "vox",
		Version: Version,
	}

	s := &Server{
		ports:         ports,
		server:        mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		conversations: make(map[*mcp.ServerSession]driving.AssistantService),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// conversation returns the conversation for session, starting one if needed.
// The entry is dropped once the session's connection closes.
func (s *Server) conversation(session *mcp.ServerSession) driving.AssistantService {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[session]; ok {
		return conv
	}
	conv := s.ports.Engine.NewConversation()
	s.conversations[session] = conv

	if session != nil {
		go func() {
			_ = session.Wait()
			s.mu.Lock()
			delete(s.conversations, session)
			s.mu.Unlock()
		}()
	}
	return conv
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
