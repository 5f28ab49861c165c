package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultSessionLimit is how many conversations are listed by default.
const DefaultSessionLimit = 20

// HistoryService reads persisted conversations.
type HistoryService struct {
	store driven.TranscriptStore
}

// NewHistoryService creates a history service. store may be nil, in which
// case no conversations are ever found.
func NewHistoryService(store driven.TranscriptStore) *HistoryService {
	return &HistoryService{store: store}
}

// Sessions lists stored conversations, newest first.
func (s *HistoryService) Sessions(ctx context.Context, limit int) ([]domain.SessionSummary, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	return s.store.ListSessions(ctx, limit)
}

// Turns returns the turns of one conversation.
func (s *HistoryService) Turns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}
	if s.store == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	turns, err := s.store.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return turns, nil
}
