package services

import (
	"context"
	"errors"
	"hash/fnv"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// --- Mock implementations ---

const testDims = 64

// countingEmbedder is a deterministic bag-of-words embedder that counts calls.
type countingEmbedder struct {
	mu         sync.Mutex
	calls      int
	texts      []string
	err        error
	model      string
	emptyEmbed bool
}

func newCountingEmbedder() *countingEmbedder {
	return &countingEmbedder{model: "test-embed"}
}

func (m *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	if m.emptyEmbed {
		return nil, nil
	}
	return bagOfWords(text), nil
}

func (m *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts = append(m.texts, texts...)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = bagOfWords(t)
	}
	return out, nil
}

func (m *countingEmbedder) Dimensions() int { return testDims }
func (m *countingEmbedder) ModelName() string { return m.model }
func (m *countingEmbedder) Ping(_ context.Context) error { return nil }
func (m *countingEmbedder) Close() error { return nil }

func (m *countingEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *countingEmbedder) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

// bagOfWords hashes lowercase words into a fixed-size count vector.
func bagOfWords(text string) []float32 {
	vec := make([]float32, testDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%testDims]++
	}
	if len(words) == 0 {
		vec[0] = 1
	}
	return vec
}

// mockLLM answers through generate and records every prompt.
type mockLLM struct {
	mu       sync.Mutex
	prompts  []string
	opts     []driven.GenerateOptions
	generate func(prompt string) (string, error)
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.generate == nil {
		return "ok", nil
	}
	return m.generate(prompt)
}

func (m *mockLLM) ModelName() string { return "test-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// groundedLLM answers only from facts present in the prompt.
func groundedLLM() *mockLLM {
	return &mockLLM{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Paris is the capital of France") {
			return "The capital of France is Paris.", nil
		}
		return "I don't know.", nil
	}}
}

// mockVectorIndex returns fixed results and records the requested k.
type mockVectorIndex struct {
	results  []domain.RetrievedChunk
	queryErr error
	lastK    int
	queries  int
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, k int) ([]domain.RetrievedChunk, error) {
	m.queries++
	m.lastK = k
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockVectorIndex) Len() int { return len(m.results) }
func (m *mockVectorIndex) Dimensions() int { return testDims }
func (m *mockVectorIndex) ModelName() string { return "test-embed" }
func (m *mockVectorIndex) Info() domain.IndexInfo { return domain.IndexInfo{Chunks: len(m.results)} }

func retrieved(texts ...string) []domain.RetrievedChunk {
	out := make([]domain.RetrievedChunk, len(texts))
	for i, t := range texts {
		out[i] = domain.RetrievedChunk{
			Chunk: domain.Chunk{ID: t, Content: t, Metadata: map[string]any{"uri": "/docs/" + t}},
			Score: 1 - float64(i)/10,
		}
	}
	return out
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("no prompt")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockTranscriptStore records saved turns.
type mockTranscriptStore struct {
	mu      sync.Mutex
	saved   map[string][]domain.Turn
	saveErr error
}

func newMockTranscriptStore() *mockTranscriptStore {
	return &mockTranscriptStore{saved: make(map[string][]domain.Turn)}
}

func (m *mockTranscriptStore) SaveTurn(_ context.Context, sessionID string, turn domain.Turn) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[sessionID] = append(m.saved[sessionID], turn)
	return nil
}

func (m *mockTranscriptStore) ListSessions(_ context.Context, limit int) ([]domain.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SessionSummary
	for id, turns := range m.saved {
		out = append(out, domain.SessionSummary{ID: id, Turns: len(turns), StartedAt: turns[0].AskedAt})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockTranscriptStore) GetTurns(_ context.Context, sessionID string) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[sessionID], nil
}

func (m *mockTranscriptStore) Close() error { return nil }

// mockLoader returns a fixed result for one kind.
type mockLoader struct {
	kind   domain.DocumentKind
	result driven.LoadResult
	err    error
	calls  int
}

func (m *mockLoader) Kind() domain.DocumentKind { return m.kind }

func (m *mockLoader) Load(ctx context.Context, _ string) (driven.LoadResult, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return driven.LoadResult{}, err
	}
	return m.result, m.err
}

// --- voice collaborators ---

type mockRecorder struct {
	dir      string
	err      error
	duration time.Duration
	clip     *domain.AudioClip
}

func (m *mockRecorder) Record(_ context.Context, duration time.Duration) (*domain.AudioClip, error) {
	m.duration = duration
	if m.err != nil {
		return nil, m.err
	}
	f, err := os.CreateTemp(m.dir, "rec-*.wav")
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	m.clip = &domain.AudioClip{
		Path:       f.Name(),
		SampleRate: domain.DefaultSampleRate,
		Channels:   1,
		Duration:   duration,
	}
	return m.clip, nil
}

type mockTranscriber struct {
	text string
	err  error
}

func (m *mockTranscriber) Transcribe(_ context.Context, _ *domain.AudioClip) (string, error) {
	return m.text, m.err
}

func (m *mockTranscriber) Name() string { return "mock" }

type mockSynthesizer struct {
	voices []domain.Voice
	err    error
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _ string, voice domain.Voice) (string, error) {
	m.voices = append(m.voices, voice)
	if m.err != nil {
		return "", m.err
	}
	return "/tmp/speech-" + voice.Name + ".mp3", nil
}

type mockPlayer struct {
	played []string
	err    error
}

func (m *mockPlayer) Play(_ context.Context, path string) error {
	m.played = append(m.played, path)
	return m.err
}
