package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	saved       int
}

func newMockSettingsService() *mockSettingsService {
	settings := domain.DefaultAppSettings()
	settings.Ingest.SourceDir = "/docs"
	settings.Index.PersistDir = "/index"
	return &mockSettingsService{settings: settings}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	m.saved++
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetVoice(name string) error {
	voice, ok := domain.LookupVoice(name)
	if !ok {
		return domain.ErrUnknownVoice
	}
	m.settings.Voice.Name = voice.Name
	return nil
}

func (m *mockSettingsService) Validate() error                { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

// mockAssistant implements driving.AssistantService for testing.
type mockAssistant struct {
	answer    *domain.Answer
	err       error
	questions []string
	turns     []domain.Turn
}

func (m *mockAssistant) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return nil, m.err
	}
	answer := *m.answer
	answer.Question = question
	m.turns = append(m.turns, domain.Turn{Question: question, Answer: answer.Text, AskedAt: time.Now()})
	return &answer, nil
}

func (m *mockAssistant) History() []domain.Turn { return m.turns }
func (m *mockAssistant) SessionID() string      { return "session-1" }

// mockEngine implements driving.Engine for testing.
type mockEngine struct {
	conversation *mockAssistant
	report       *domain.BuildReport
	info         *domain.IndexInfo
	statusErr    error
	openErr      error
	rebuildErr   error
	sourceDir    string
	persistDir   string
	opens        int
	rebuilds     int
}

func (m *mockEngine) Open(_ context.Context) (driven.VectorIndex, error) {
	m.opens++
	return nil, m.openErr
}

func (m *mockEngine) Rebuild(_ context.Context) (driven.VectorIndex, error) {
	m.rebuilds++
	return nil, m.rebuildErr
}

func (m *mockEngine) Status(_ context.Context) (*domain.IndexInfo, error) {
	return m.info, m.statusErr
}

func (m *mockEngine) LastReport() *domain.BuildReport           { return m.report }
func (m *mockEngine) NewConversation() driving.AssistantService { return m.conversation }
func (m *mockEngine) Retriever() driving.Retriever               { return nil }
func (m *mockEngine) SourceDir() string                          { return m.sourceDir }
func (m *mockEngine) PersistDir() string                         { return m.persistDir }

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	sessions []domain.SessionSummary
	turns    map[string][]domain.Turn
	limit    int
}

func (m *mockHistoryService) Sessions(_ context.Context, limit int) ([]domain.SessionSummary, error) {
	m.limit = limit
	if len(m.sessions) == 0 {
		return nil, domain.ErrNotFound
	}
	return m.sessions, nil
}

func (m *mockHistoryService) Turns(_ context.Context, sessionID string) ([]domain.Turn, error) {
	turns, ok := m.turns[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return turns, nil
}

// mockVoiceService implements driving.VoiceService for testing.
type mockVoiceService struct {
	heard     []string
	listenErr error
	speakErr  error
	durations []time.Duration
	spoken    []string
	voices    []string
}

func (m *mockVoiceService) Listen(_ context.Context, duration time.Duration) (string, error) {
	m.durations = append(m.durations, duration)
	if m.listenErr != nil {
		return "", m.listenErr
	}
	if len(m.heard) == 0 {
		return "goodbye", nil
	}
	text := m.heard[0]
	m.heard = m.heard[1:]
	return text, nil
}

func (m *mockVoiceService) Speak(_ context.Context, text, voiceName string) (string, error) {
	m.spoken = append(m.spoken, text)
	m.voices = append(m.voices, voiceName)
	if m.speakErr != nil {
		return "", m.speakErr
	}
	return "/tmp/vox-test-answer.mp3", nil
}

func (m *mockVoiceService) Voices() []domain.Voice { return domain.AllVoices() }

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	settings *mockSettingsService
	history  *mockHistoryService
	voice    *mockVoiceService
	engine   *mockEngine

	// engineSettings is the settings the last engine was opened with.
	engineSettings *domain.AppSettings
	closed         int
}

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Text: "Refunds are issued within 30 days.",
		Sources: []domain.RetrievedChunk{
			{
				Chunk: domain.Chunk{
					ID:         "c1",
					DocumentID: "doc-1",
					Content:    "Refunds are issued within 30 days of purchase.",
					Position:   2,
					Metadata:   map[string]any{"uri": "policy.md"},
				},
				Score: 0.91,
			},
		},
	}
}

// setupTestServices installs mock services and returns them with a
// cleanup function restoring the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	oldSettings, oldHistory, oldVoice, oldFactory := settingsService, historyService, voiceService, engineFactory

	env := &testServices{
		settings: newMockSettingsService(),
		history:  &mockHistoryService{turns: map[string][]domain.Turn{}},
		voice:    &mockVoiceService{},
		engine: &mockEngine{
			conversation: &mockAssistant{answer: testAnswer()},
			sourceDir:    "/docs",
			persistDir:   "/index",
		},
	}

	SetServices(Services{
		Settings: env.settings,
		History:  env.history,
		Voice:    env.voice,
		NewEngine: func(_ context.Context, settings *domain.AppSettings) (driving.Engine, func(), error) {
			env.engineSettings = settings
			return env.engine, func() { env.closed++ }, nil
		},
	})

	return env, func() {
		settingsService, historyService, voiceService, engineFactory = oldSettings, oldHistory, oldVoice, oldFactory
		resetFlags()
	}
}

// resetFlags restores command flag variables between tests.
func resetFlags() {
	askK, askJSON, askSpeak, askVoice, askTimeout = 0, false, false, "", 0
	chatSpeak, chatVoice = false, ""
	talkOnce, talkSeconds, talkVoice = false, 0, ""
	ingestSource, ingestIndex, ingestForce = "", "", false
	historyLimit = 20
	versionShort = false
	watchDebounce = 2 * time.Second
}

// executeCommand runs the root command with args and stdin, returning
// everything written to stdout and stderr.
func executeCommand(stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
