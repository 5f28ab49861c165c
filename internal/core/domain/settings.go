package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// TranscriberKind selects the speech-to-text backend.
type TranscriberKind string

// Available transcribers.
const (
	// TranscriberWhisper runs the local whisper CLI.
	TranscriberWhisper TranscriberKind = "whisper"

	// TranscriberOpenAI uses the OpenAI transcription API.
	TranscriberOpenAI TranscriberKind = "openai"
)

// IsValid returns true if the transcriber is recognised.
func (t TranscriberKind) IsValid() bool {
	return t == TranscriberWhisper || t == TranscriberOpenAI
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the sampling temperature. Zero keeps answers grounded.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int

	// Timeout bounds a single answer, including retrieval.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IngestSettings holds document loading and chunking configuration.
type IngestSettings struct {
	// SourceDir is the directory documents are loaded from.
	SourceDir string

	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by neighbouring chunks.
	ChunkOverlap int
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// PersistDir is the directory the index is stored in.
	PersistDir string
}

// RetrievalSettings holds question answering configuration.
type RetrievalSettings struct {
	// K is the number of chunks retrieved per question.
	K int

	// CondenseQuestion rewrites follow-ups into standalone questions before retrieval.
	CondenseQuestion bool
}

// VoiceSettings holds capture, transcription and synthesis configuration.
type VoiceSettings struct {
	// Name is the selected speech voice.
	Name string

	// RecordSeconds is the fixed capture length.
	RecordSeconds int

	// SampleRate is the capture sample rate.
	SampleRate int

	// Transcriber selects the speech-to-text backend.
	Transcriber TranscriberKind

	// WhisperModel is the local whisper model name.
	WhisperModel string

	// ElevenLabsAPIKey authenticates speech synthesis.
	ElevenLabsAPIKey string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Ingest    IngestSettings
	Index     IndexSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Voice     VoiceSettings
}

// Default values for settings.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultK            = 4
	DefaultMaxTokens    = 1024
	DefaultLLMTimeout   = 2 * time.Minute
	DefaultOllamaURL    = "http://localhost:11434"
	DefaultWhisperModel = "base"
)

// DefaultAppSettings returns settings with sensible defaults.
// Directories are left empty; callers resolve them against the vox home.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Ingest: IngestSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			K: DefaultK,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  DefaultOllamaURL,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultLLMModels()[AIProviderOllama],
			BaseURL:     DefaultOllamaURL,
			Temperature: 0,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     DefaultLLMTimeout,
		},
		Voice: VoiceSettings{
			Name:          DefaultVoiceName,
			RecordSeconds: DefaultRecordSeconds,
			SampleRate:    DefaultSampleRate,
			Transcriber:   TranscriberWhisper,
			WhisperModel:  DefaultWhisperModel,
		},
	}
}

// Validate checks the numeric bounds of the settings.
func (s AppSettings) Validate() error {
	if s.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, s.Ingest.ChunkSize)
	}
	if s.Ingest.ChunkOverlap < 0 || s.Ingest.ChunkOverlap >= s.Ingest.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidInput, s.Ingest.ChunkSize, s.Ingest.ChunkOverlap)
	}
	if s.Retrieval.K <= 0 {
		return fmt.Errorf("%w: retrieval k must be positive, got %d", ErrInvalidInput, s.Retrieval.K)
	}
	if s.Voice.RecordSeconds < MinRecordSeconds || s.Voice.RecordSeconds > MaxRecordSeconds {
		return fmt.Errorf("%w: record seconds must be between %d and %d, got %d",
			ErrInvalidInput, MinRecordSeconds, MaxRecordSeconds, s.Voice.RecordSeconds)
	}
	if s.Voice.Transcriber != "" && !s.Voice.Transcriber.IsValid() {
		return fmt.Errorf("%w: unknown transcriber %q", ErrInvalidInput, s.Voice.Transcriber)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
