package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// MockAssistant implements driving.AssistantService for testing.
type MockAssistant struct {
	AskFunc func(ctx context.Context, question string) (*domain.Answer, error)
}

func (m *MockAssistant) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return &domain.Answer{Question: question, Text: "an answer"}, nil
}

func (m *MockAssistant) History() []domain.Turn { return nil }
func (m *MockAssistant) SessionID() string      { return "session-1" }

// MockEngine implements driving.Engine for testing.
type MockEngine struct {
	Conversation  *MockAssistant
	StatusFunc    func(ctx context.Context) (*domain.IndexInfo, error)
	conversations int
}

func (m *MockEngine) Open(_ context.Context) (driven.VectorIndex, error)    { return nil, nil }
func (m *MockEngine) Rebuild(_ context.Context) (driven.VectorIndex, error) { return nil, nil }
func (m *MockEngine) LastReport() *domain.BuildReport                      { return nil }
func (m *MockEngine) Retriever() driving.Retriever                         { return nil }
func (m *MockEngine) SourceDir() string                                    { return "/docs" }
func (m *MockEngine) PersistDir() string                                   { return "/index" }

func (m *MockEngine) Status(ctx context.Context) (*domain.IndexInfo, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx)
	}
	return &domain.IndexInfo{Generation: "gen-1", Chunks: 3}, nil
}

func (m *MockEngine) NewConversation() driving.AssistantService {
	m.conversations++
	if m.Conversation == nil {
		m.Conversation = &MockAssistant{}
	}
	return m.Conversation
}

// MockHistoryService implements driving.HistoryService for testing.
type MockHistoryService struct{}

func (m *MockHistoryService) Sessions(_ context.Context, _ int) ([]domain.SessionSummary, error) {
	return []domain.SessionSummary{{ID: "abc", StartedAt: time.Now(), Turns: 2}}, nil
}

func (m *MockHistoryService) Turns(_ context.Context, _ string) ([]domain.Turn, error) {
	return []domain.Turn{{Question: "q", Answer: "a"}}, nil
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing engine", &Ports{History: &MockHistoryService{}}, ErrMissingEngine},
		{"engine only", &Ports{Engine: &MockEngine{}}, nil},
		{
			"all ports",
			&Ports{Engine: &MockEngine{}, History: &MockHistoryService{}, VoiceName: "Alice", RecordFor: time.Second},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
