package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
	"github.com/custodia-labs/vox/internal/logger"
)

// Ensure Answerer implements the interface.
var _ driving.Retriever = (*Answerer)(nil)

// DefaultK is the number of chunks retrieved per question.
const DefaultK = domain.DefaultK

var errEmptyAnswer = errors.New("empty answer")

// Answerer answers questions from a vector index and a language model,
// recording completed turns in the caller's session.
type Answerer struct {
	mu    sync.RWMutex
	index driven.VectorIndex

	embedder    driven.EmbeddingService
	llm         driven.LLMService
	prompts     driven.PromptStore
	transcripts driven.TranscriptStore

	k        int
	condense bool
	genOpts  driven.GenerateOptions
}

// AnswererOption configures an Answerer.
type AnswererOption func(*Answerer)

// WithK sets how many chunks are retrieved per question.
func WithK(k int) AnswererOption {
	return func(a *Answerer) {
		if k > 0 {
			a.k = k
		}
	}
}

// WithQuestionCondensing rewrites follow-up questions into standalone ones
// before retrieval when the session has history.
func WithQuestionCondensing(enabled bool) AnswererOption {
	return func(a *Answerer) {
		a.condense = enabled
	}
}

// WithGenerateOptions sets temperature and token limits for completions.
func WithGenerateOptions(opts driven.GenerateOptions) AnswererOption {
	return func(a *Answerer) {
		a.genOpts = opts
	}
}

// WithPromptStore loads the answer and condense templates from store.
func WithPromptStore(store driven.PromptStore) AnswererOption {
	return func(a *Answerer) {
		a.prompts = store
	}
}

// WithTranscriptStore records every completed turn in store.
func WithTranscriptStore(store driven.TranscriptStore) AnswererOption {
	return func(a *Answerer) {
		a.transcripts = store
	}
}

// NewAnswerer creates an answerer over index. A nil index is allowed;
// every question then fails with domain.ErrKnowledgeBaseNotReady until
// SetIndex is called.
func NewAnswerer(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	opts ...AnswererOption,
) *Answerer {
	a := &Answerer{
		index:    index,
		embedder: embedder,
		llm:      llm,
		k:        DefaultK,
		genOpts: driven.GenerateOptions{
			MaxTokens:   domain.DefaultMaxTokens,
			Temperature: 0,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetIndex swaps the index used for later questions.
// Questions already running keep the handle they started with.
func (a *Answerer) SetIndex(index driven.VectorIndex) {
	a.mu.Lock()
	a.index = index
	a.mu.Unlock()
}

// Index returns the current index handle, or nil.
func (a *Answerer) Index() driven.VectorIndex {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.index
}

// K returns the retrieval depth.
func (a *Answerer) K() int {
	return a.k
}

// Answer answers question and returns only the text.
func (a *Answerer) Answer(ctx context.Context, question string, session *Session) (string, error) {
	ans, err := a.Ask(ctx, question, session)
	if err != nil {
		return "", err
	}
	return ans.Text, nil
}

// Ask retrieves context for question, asks the language model and appends
// the turn to session. On any failure the session is left unchanged.
func (a *Answerer) Ask(ctx context.Context, question string, session *Session) (*domain.Answer, error) {
	logger.Section("Answer")

	index := a.Index()
	if index == nil {
		return nil, domain.ErrKnowledgeBaseNotReady
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: no session", domain.ErrInvalidInput)
	}
	if a.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if a.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	session.turn.Lock()
	defer session.turn.Unlock()

	history := session.History()
	logger.Debug("Question: %q (%d prior turns)", question, len(history))

	standalone := question
	if a.condense && len(history) > 0 {
		rewritten, err := a.condenseQuestion(ctx, question, history)
		if err != nil {
			return nil, err
		}
		standalone = rewritten
	}

	sources, err := a.retrieve(ctx, index, standalone, a.k)
	if err != nil {
		return nil, err
	}

	tmpl := loadPrompt(a.prompts, driven.PromptAnswer, fallbackAnswerPrompt)
	prompt := buildAnswerPrompt(tmpl, sources, history, standalone)

	text, err := a.llm.Generate(ctx, prompt, a.genOpts)
	if err != nil {
		return nil, &domain.LanguageModelError{Model: a.llm.ModelName(), Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.LanguageModelError{Model: a.llm.ModelName(), Err: errEmptyAnswer}
	}

	turn := session.Append(question, text)
	if a.transcripts != nil {
		if err := a.transcripts.SaveTurn(ctx, session.ID(), turn); err != nil {
			logger.Warn("could not save transcript: %v", err)
		}
	}

	return &domain.Answer{
		Text:     text,
		Question: standalone,
		Sources:  sources,
	}, nil
}

// Retrieve returns the k chunks most similar to query without calling
// the language model.
func (a *Answerer) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	index := a.Index()
	if index == nil {
		return nil, domain.ErrKnowledgeBaseNotReady
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if a.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if k <= 0 {
		k = a.k
	}
	return a.retrieve(ctx, index, query, k)
}

func (a *Answerer) retrieve(
	ctx context.Context, index driven.VectorIndex, query string, k int,
) ([]domain.RetrievedChunk, error) {
	vec, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &domain.EmbeddingProviderError{Op: "embed question", Err: err}
	}
	if len(vec) == 0 {
		return nil, &domain.EmbeddingProviderError{Op: "embed question", Err: errors.New("empty vector")}
	}

	sources, err := index.Query(ctx, vec, k)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, &domain.EmbeddingProviderError{Op: "embed question", Err: err}
		}
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(sources))
	for i, src := range sources {
		logger.Debug("  %d. %.4f %s", i+1, src.Score, src.Chunk.Source())
	}
	return sources, nil
}

// condenseQuestion asks the language model for a standalone rewrite of a
// follow-up. An empty rewrite keeps the original question.
func (a *Answerer) condenseQuestion(ctx context.Context, question string, history []domain.Turn) (string, error) {
	tmpl := loadPrompt(a.prompts, driven.PromptCondense, fallbackCondensePrompt)
	prompt := buildCondensePrompt(tmpl, history, question)

	rewritten, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return "", &domain.LanguageModelError{Model: a.llm.ModelName(), Err: fmt.Errorf("condense question: %w", err)}
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question, nil
	}
	logger.Debug("Condensed question: %q", rewritten)
	return rewritten, nil
}
