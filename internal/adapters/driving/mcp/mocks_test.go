package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// mockAssistant is a mock implementation of driving.AssistantService.
type mockAssistant struct {
	id        string
	answer    *domain.Answer
	err       error
	questions []string
}

func (m *mockAssistant) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	return m.answer, m.err
}

func (m *mockAssistant) History() []domain.Turn { return nil }

func (m *mockAssistant) SessionID() string {
	if m.id == "" {
		return "session-1"
	}
	return m.id
}

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	results []domain.RetrievedChunk
	err     error
	lastK   int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.lastK = k
	return m.results, m.err
}

// mockEngine is a mock implementation of driving.Engine.
type mockEngine struct {
	assistant  *mockAssistant
	retriever  *mockRetriever
	info       *domain.IndexInfo
	statusErr  error
	report     *domain.BuildReport
	rebuildErr error
	rebuilds   int

	conversations []*mockAssistant
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		assistant: &mockAssistant{answer: &domain.Answer{}},
		retriever: &mockRetriever{},
	}
}

func (m *mockEngine) Open(_ context.Context) (driven.VectorIndex, error) { return nil, nil }

func (m *mockEngine) Rebuild(_ context.Context) (driven.VectorIndex, error) {
	m.rebuilds++
	return nil, m.rebuildErr
}

func (m *mockEngine) Status(_ context.Context) (*domain.IndexInfo, error) {
	return m.info, m.statusErr
}

func (m *mockEngine) LastReport() *domain.BuildReport { return m.report }

// NewConversation hands out assistant first, then a fresh assistant per call.
func (m *mockEngine) NewConversation() driving.AssistantService {
	conv := m.assistant
	if len(m.conversations) > 0 {
		conv = &mockAssistant{
			id:     fmt.Sprintf("session-%d", len(m.conversations)+1),
			answer: m.assistant.answer,
		}
	}
	m.conversations = append(m.conversations, conv)
	return conv
}

func (m *mockEngine) Retriever() driving.Retriever { return m.retriever }

func (m *mockEngine) SourceDir() string { return "/docs" }

func (m *mockEngine) PersistDir() string { return "/index" }

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	sessions []domain.SessionSummary
	turns    []domain.Turn
	err      error
}

func (m *mockHistoryService) Sessions(_ context.Context, _ int) ([]domain.SessionSummary, error) {
	return m.sessions, m.err
}

func (m *mockHistoryService) Turns(_ context.Context, _ string) ([]domain.Turn, error) {
	return m.turns, m.err
}
