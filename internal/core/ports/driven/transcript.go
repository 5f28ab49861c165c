package driven

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// TranscriptStore persists completed conversation turns.
type TranscriptStore interface {
	// SaveTurn records one turn for a session.
	SaveTurn(ctx context.Context, sessionID string, turn domain.Turn) error

	// ListSessions returns stored sessions, newest first.
	ListSessions(ctx context.Context, limit int) ([]domain.SessionSummary, error)

	// GetTurns returns a session's turns in call order.
	GetTurns(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Close releases resources.
	Close() error
}
