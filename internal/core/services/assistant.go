package services

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// AssistantService binds an Answerer to one conversation.
// Each CLI chat, TUI run or MCP client gets its own.
type AssistantService struct {
	answerer *Answerer
	session  *Session
}

// NewAssistantService starts a new conversation against answerer.
func NewAssistantService(answerer *Answerer) *AssistantService {
	return &AssistantService{
		answerer: answerer,
		session:  NewSession(),
	}
}

// Ask answers question within this conversation.
func (s *AssistantService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	return s.answerer.Ask(ctx, question, s.session)
}

// History returns the conversation so far.
func (s *AssistantService) History() []domain.Turn {
	return s.session.History()
}

// SessionID identifies the conversation.
func (s *AssistantService) SessionID() string {
	return s.session.ID()
}

// Session exposes the underlying session.
func (s *AssistantService) Session() *Session {
	return s.session
}
