package driving

import (
	"context"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// HistoryService reads persisted conversations.
type HistoryService interface {
	// Sessions lists stored conversations, newest first.
	Sessions(ctx context.Context, limit int) ([]domain.SessionSummary, error)

	// Turns returns the turns of one conversation.
	Turns(ctx context.Context, sessionID string) ([]domain.Turn, error)
}
