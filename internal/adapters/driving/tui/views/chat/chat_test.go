package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vox/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vox/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vox/internal/core/domain"
)

// MockAssistant implements driving.AssistantService for testing.
type MockAssistant struct {
	AskFunc func(ctx context.Context, question string) (*domain.Answer, error)
	turns   []domain.Turn
}

func (m *MockAssistant) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if m.AskFunc != nil {
		answer, err := m.AskFunc(ctx, question)
		if err == nil {
			m.turns = append(m.turns, domain.Turn{Question: question, Answer: answer.Text})
		}
		return answer, err
	}
	return &domain.Answer{Question: question}, nil
}

func (m *MockAssistant) History() []domain.Turn {
	return m.turns
}

func (m *MockAssistant) SessionID() string {
	return "session-1"
}

// MockVoice implements driving.VoiceService for testing.
type MockVoice struct {
	ListenFunc func(ctx context.Context, duration time.Duration) (string, error)
	SpeakFunc  func(ctx context.Context, text, voiceName string) (string, error)
}

func (m *MockVoice) Listen(ctx context.Context, duration time.Duration) (string, error) {
	if m.ListenFunc != nil {
		return m.ListenFunc(ctx, duration)
	}
	return "", nil
}

func (m *MockVoice) Speak(ctx context.Context, text, voiceName string) (string, error) {
	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text, voiceName)
	}
	return "", nil
}

func (m *MockVoice) Voices() []domain.Voice {
	return domain.AllVoices()
}

// Helper function to create a test answer.
func testAnswer(question string) *domain.Answer {
	return &domain.Answer{
		Question: question,
		Text:     "Refunds are issued within 30 days.",
		Sources: []domain.RetrievedChunk{
			{
				Chunk: domain.Chunk{
					ID:       "c1",
					Content:  "Refunds are issued within 30 days of purchase.",
					Position: 0,
					Metadata: map[string]any{"uri": "/docs/policy.md"},
				},
				Score: 0.91,
			},
			{
				Chunk: domain.Chunk{
					ID:       "c2",
					Content:  "Contact support to start a refund.",
					Position: 3,
					Metadata: map[string]any{"uri": "/docs/faq.txt"},
				},
				Score: 0.72,
			},
		},
	}
}

func answeringAssistant() *MockAssistant {
	return &MockAssistant{
		AskFunc: func(_ context.Context, question string) (*domain.Answer, error) {
			return testAnswer(question), nil
		},
	}
}

func TestNewView(t *testing.T) {
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	view := NewView(s, km, &MockAssistant{}, nil, Options{})

	require.NotNil(t, view)
	assert.False(t, view.Ready())
	assert.True(t, view.InputFocused())
	assert.Nil(t, view.LastAnswer())
	assert.Equal(t, domain.DefaultRecordSeconds*time.Second, view.opts.RecordFor)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keymap)
}

func TestView_WithContext(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	result := view.WithContext(ctx)

	assert.Equal(t, view, result)
	assert.Equal(t, ctx, view.ctx)
}

func TestView_Init(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})

	// Blink command from input
	assert.NotNil(t, view.Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.Ready())
	assert.Equal(t, 100, view.Width())
	assert.Equal(t, 40, view.Height())
}

func TestView_Update_KeyEnter_AsksQuestion(t *testing.T) {
	var asked string
	mock := &MockAssistant{
		AskFunc: func(_ context.Context, question string) (*domain.Answer, error) {
			asked = question
			return testAnswer(question), nil
		},
	}
	view := NewView(nil, nil, mock, nil, Options{})
	view.SetDimensions(80, 24)
	view.input.SetValue("  What is the refund policy?  ")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, view.Busy())
	assert.Equal(t, status.StateThinking, view.statusbar.State())

	result := cmd()
	require.IsType(t, messages.AnswerReceived{}, result)
	assert.Equal(t, "What is the refund policy?", asked)
	assert.Equal(t, "What is the refund policy?", result.(messages.AnswerReceived).Question)
}

func TestView_Update_KeyEnter_EmptyQuestion(t *testing.T) {
	view := NewView(nil, nil, &MockAssistant{}, nil, Options{})
	view.input.SetValue("   ")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, view.Busy())
}

func TestView_Ask_NoAssistant(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})
	view.input.SetValue("hello")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	result, ok := cmd().(messages.AnswerReceived)
	require.True(t, ok)
	assert.ErrorIs(t, result.Err, ErrNoAssistant)
}

func TestView_Update_AnswerReceived(t *testing.T) {
	view := NewView(nil, nil, answeringAssistant(), nil, Options{})
	view.SetDimensions(80, 24)

	answer := testAnswer("refunds?")
	updated, cmd := view.Update(messages.AnswerReceived{Question: "refunds?", Answer: answer})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.False(t, view.Busy())
	assert.False(t, view.InputFocused())
	assert.Equal(t, answer, view.LastAnswer())
	assert.Equal(t, 2, view.sources.Count())
	assert.Equal(t, 2, view.statusbar.SourceCount())
	assert.Equal(t, status.StateAnswered, view.statusbar.State())
}

func TestView_Update_AnswerReceived_WithError(t *testing.T) {
	view := NewView(nil, nil, &MockAssistant{}, nil, Options{})
	view.SetDimensions(80, 24)

	err := domain.ErrKnowledgeBaseNotReady
	_, _ = view.Update(messages.AnswerReceived{Question: "refunds?", Err: err})

	assert.ErrorIs(t, view.Err(), domain.ErrKnowledgeBaseNotReady)
	assert.True(t, view.InputFocused())
	assert.Nil(t, view.LastAnswer())
	assert.Equal(t, "refunds?", view.input.Value())
	assert.Equal(t, status.StateError, view.statusbar.State())
}

func TestView_Update_ErrorOccurred(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})

	updated, cmd := view.Update(messages.ErrorOccurred{Err: errors.New("something went wrong")})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.Error(t, view.Err())
}

func TestView_Update_KeyEsc(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, msg.View)
}

func TestView_Update_IgnoresKeysWhileBusy(t *testing.T) {
	view := NewView(nil, nil, answeringAssistant(), nil, Options{})
	view.busy = true
	view.input.SetValue("question")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_AnswerMode_Navigation(t *testing.T) {
	view := NewView(nil, nil, answeringAssistant(), nil, Options{})
	view.SetDimensions(80, 24)
	_, _ = view.Update(messages.AnswerReceived{Question: "q", Answer: testAnswer("q")})

	_, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.sources.Selected())

	_, _ = view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.sources.Selected())

	_, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, view.expanded)
	assert.Contains(t, view.View(), "Refunds are issued within 30 days of purchase.")
}

func TestView_AnswerMode_NewQuestion(t *testing.T) {
	view := NewView(nil, nil, answeringAssistant(), nil, Options{})
	_, _ = view.Update(messages.AnswerReceived{Question: "q", Answer: testAnswer("q")})
	require.False(t, view.InputFocused())

	_, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	assert.True(t, view.InputFocused())
	assert.Equal(t, "", view.input.Value())
}

func TestView_Speak_NoVoice(t *testing.T) {
	view := NewView(nil, nil, answeringAssistant(), nil, Options{})
	_, _ = view.Update(messages.AnswerReceived{Question: "q", Answer: testAnswer("q")})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, view.Err(), ErrNoVoice)
}

func TestView_Speak_RemovesAudioFile(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "answer.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("mp3"), 0o600))

	var spokenWith, spokenText string
	voice := &MockVoice{
		SpeakFunc: func(_ context.Context, text, voiceName string) (string, error) {
			spokenText = text
			spokenWith = voiceName
			return audio, nil
		},
	}
	view := NewView(nil, nil, answeringAssistant(), voice, Options{VoiceName: "Brian"})
	_, _ = view.Update(messages.AnswerReceived{Question: "q", Answer: testAnswer("q")})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateSpeaking, view.statusbar.State())

	result, ok := cmd().(messages.SpeechFinished)
	require.True(t, ok)
	assert.NoError(t, result.Err)
	assert.Equal(t, "Brian", spokenWith)
	assert.Equal(t, "Refunds are issued within 30 days.", spokenText)
	assert.NoFileExists(t, audio)

	_, _ = view.Update(result)
	assert.False(t, view.Busy())
	assert.Equal(t, status.StateAnswered, view.statusbar.State())
}

func TestView_Update_SpeechFinished_WithError(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})
	view.busy = true

	_, _ = view.Update(messages.SpeechFinished{Err: domain.ErrSpeechUnavailable})

	assert.False(t, view.Busy())
	assert.ErrorIs(t, view.Err(), domain.ErrSpeechUnavailable)
}

func TestView_Listen_CtrlR(t *testing.T) {
	var recorded time.Duration
	voice := &MockVoice{
		ListenFunc: func(_ context.Context, duration time.Duration) (string, error) {
			recorded = duration
			return "what is the refund policy", nil
		},
	}
	view := NewView(nil, nil, answeringAssistant(), voice, Options{RecordFor: 3 * time.Second})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateListening, view.statusbar.State())

	result, ok := cmd().(messages.ListenFinished)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, recorded)
	assert.Equal(t, "what is the refund policy", result.Text)
}

func TestView_Listen_NoVoice(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, view.Err(), ErrNoVoice)
}

func TestView_ListenFinished_AsksAndSpeaks(t *testing.T) {
	spoken := false
	voice := &MockVoice{
		SpeakFunc: func(_ context.Context, _, _ string) (string, error) {
			spoken = true
			return "", nil
		},
	}
	view := NewView(nil, nil, answeringAssistant(), voice, Options{})
	view.SetDimensions(80, 24)

	_, cmd := view.Update(messages.ListenFinished{Text: "refunds?"})
	require.NotNil(t, cmd)

	answer, ok := cmd().(messages.AnswerReceived)
	require.True(t, ok)
	require.NoError(t, answer.Err)

	_, speakCmd := view.Update(answer)
	require.NotNil(t, speakCmd)
	assert.IsType(t, messages.SpeechFinished{}, speakCmd())
	assert.True(t, spoken)
}

func TestView_ListenFinished_WithError(t *testing.T) {
	view := NewView(nil, nil, answeringAssistant(), &MockVoice{}, Options{})
	view.busy = true

	_, cmd := view.Update(messages.ListenFinished{Err: errors.New("no microphone")})

	assert.Nil(t, cmd)
	assert.False(t, view.Busy())
	assert.EqualError(t, view.Err(), "no microphone")
}

func TestView_View_NotReady(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})

	assert.Equal(t, "Initialising...", view.View())
}

func TestView_View_ShowsTranscript(t *testing.T) {
	mock := answeringAssistant()
	view := NewView(nil, nil, mock, nil, Options{})
	view.SetDimensions(100, 40)

	answer, err := mock.Ask(context.Background(), "What is the refund policy?")
	require.NoError(t, err)
	_, _ = view.Update(messages.AnswerReceived{Question: "What is the refund policy?", Answer: answer})

	rendered := view.View()
	assert.Contains(t, rendered, "What is the refund policy?")
	assert.Contains(t, rendered, "Refunds are issued within 30 days.")
	assert.Contains(t, rendered, "Sources (2)")
}

func TestView_Reset(t *testing.T) {
	view := NewView(nil, nil, answeringAssistant(), nil, Options{})
	_, _ = view.Update(messages.AnswerReceived{Question: "q", Answer: testAnswer("q")})
	view.err = errors.New("stale")

	view.Reset()

	assert.True(t, view.InputFocused())
	assert.NoError(t, view.Err())
	assert.Equal(t, status.StateReady, view.statusbar.State())
}

func TestView_SetConversation(t *testing.T) {
	view := NewView(nil, nil, nil, nil, Options{})
	mock := &MockAssistant{}

	view.SetConversation(mock)

	assert.Equal(t, mock, view.conversation)
	assert.True(t, view.InputFocused())
}
