package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// Session is the ordered question and answer history of one conversation.
// It only grows, and only through Append, so every entry is a complete turn.
type Session struct {
	id        string
	startedAt time.Time

	// turn serialises answers so turns land in call order.
	turn sync.Mutex

	mu    sync.Mutex
	turns []domain.Turn
}

// NewSession starts an empty conversation with a fresh ID.
func NewSession() *Session {
	return &Session{
		id:        uuid.NewString(),
		startedAt: time.Now(),
	}
}

// ID identifies the session.
func (s *Session) ID() string {
	return s.id
}

// StartedAt is when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Append records a completed turn and returns it.
func (s *Session) Append(question, answer string) domain.Turn {
	turn := domain.Turn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	}
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.mu.Unlock()
	return turn
}

// History returns a copy of the turns in call order.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
