package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore is an in-memory implementation of driven.TranscriptStore.
// Transcripts last as long as the process.
type TranscriptStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
}

// NewTranscriptStore creates a new in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{
		sessions: make(map[string][]domain.Turn),
	}
}

// SaveTurn appends a turn to a session.
func (s *TranscriptStore) SaveTurn(_ context.Context, sessionID string, turn domain.Turn) error {
	if sessionID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return nil
}

// ListSessions returns sessions ordered by their first turn, newest first.
func (s *TranscriptStore) ListSessions(_ context.Context, limit int) ([]domain.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SessionSummary, 0, len(s.sessions))
	for id, turns := range s.sessions {
		out = append(out, domain.SessionSummary{
			ID:        id,
			StartedAt: turns[0].AskedAt,
			Turns:     len(turns),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetTurns returns a copy of a session's turns. Unknown sessions have none.
func (s *TranscriptStore) GetTurns(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Close is a no-op.
func (s *TranscriptStore) Close() error {
	return nil
}
