package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/vox/internal/adapters/driven/ai"
	"github.com/custodia-labs/vox/internal/adapters/driven/audio"
	"github.com/custodia-labs/vox/internal/adapters/driven/command"
	"github.com/custodia-labs/vox/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vox/internal/adapters/driven/speech/elevenlabs"
	openaispeech "github.com/custodia-labs/vox/internal/adapters/driven/speech/openai"
	"github.com/custodia-labs/vox/internal/adapters/driven/speech/whisper"
	"github.com/custodia-labs/vox/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vox/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vox/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/vox/internal/adapters/driving/cli"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
	"github.com/custodia-labs/vox/internal/core/services"
	"github.com/custodia-labs/vox/internal/logger"
	"github.com/custodia-labs/vox/internal/normalisers/markdown"
	"github.com/custodia-labs/vox/internal/normalisers/pdf"
	"github.com/custodia-labs/vox/internal/normalisers/plaintext"
	"github.com/custodia-labs/vox/internal/postprocessors/chunker"
)

// version is overridden with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	home, err := file.DefaultHome()
	if err != nil {
		return err
	}
	if _, err := file.LoadEnv(home); err != nil {
		logger.Warn("reading .env: %v", err)
	}

	var configStore driven.ConfigStore
	if store, err := file.NewConfigStore(home); err != nil {
		logger.Warn("settings will not be saved: %v", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = store
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	transcripts := openTranscripts(filepath.Join(home, "data"))
	defer func() { _ = transcripts.Close() }()

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService.SetHomeDir(home)

	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("loading settings, using defaults: %v", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}
	effective := *settings
	file.ApplyEnvOverrides(&effective)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetServices(cli.Services{
		Settings:  settingsService,
		History:   services.NewHistoryService(transcripts),
		Voice:     newVoiceService(&effective.Voice, home),
		NewEngine: engineFactory(prompts, transcripts),
	})
	cli.SetVersion(version)

	return cli.Execute(ctx)
}

type transcriptStore interface {
	driven.TranscriptStore
	Close() error
}

// openTranscripts opens the SQLite transcript store, falling back to an
// in-memory store so questions can still be answered.
func openTranscripts(dataDir string) transcriptStore {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("transcripts will not be saved: %v", err)
		return memory.NewTranscriptStore()
	}
	return store
}

// newVoiceService assembles whichever voice adapters are available.
// Missing tools or keys leave the matching direction disabled.
func newVoiceService(settings *domain.VoiceSettings, home string) *services.VoiceService {
	runner := command.NewRunner()
	audioDir := filepath.Join(home, "audio")

	var recorder driven.AudioRecorder
	if r, err := audio.NewRecorder(runner, audio.RecorderConfig{
		SampleRate: settings.SampleRate,
		OutputDir:  audioDir,
	}); err != nil {
		logger.Debug("voice input disabled: %v", err)
	} else {
		recorder = r
	}

	var transcriber driven.Transcriber
	switch settings.Transcriber {
	case domain.TranscriberOpenAI:
		t, err := openaispeech.NewTranscriber(openaispeech.Config{
			APIKey: os.Getenv(file.EnvOpenAIAPIKey),
		})
		if err != nil {
			logger.Debug("OpenAI transcription disabled: %v", err)
		} else {
			transcriber = t
		}
	default:
		transcriber = whisper.NewTranscriber(runner, whisper.Config{Model: settings.WhisperModel})
	}

	var synthesizer driven.SpeechSynthesizer
	if settings.ElevenLabsAPIKey != "" {
		s, err := elevenlabs.NewSynthesizer(elevenlabs.Config{
			APIKey:    settings.ElevenLabsAPIKey,
			OutputDir: audioDir,
		})
		if err != nil {
			logger.Debug("speech output disabled: %v", err)
		} else {
			synthesizer = s
		}
	}

	var player driven.AudioPlayer
	if p, err := audio.NewPlayer(runner, ""); err != nil {
		logger.Debug("audio playback disabled: %v", err)
	} else {
		player = p
	}

	return services.NewVoiceService(recorder, transcriber, synthesizer, player)
}

// engineFactory returns the cli.EngineFactory that connects providers,
// index storage and loaders for the given settings.
func engineFactory(prompts driven.PromptStore, transcripts driven.TranscriptStore) cli.EngineFactory {
	return func(ctx context.Context, stored *domain.AppSettings) (driving.Engine, func(), error) {
		if stored == nil {
			return nil, nil, errors.New("settings are required")
		}
		settings := *stored
		file.ApplyEnvOverrides(&settings)

		embedder, err := ai.CreateEmbeddingService(ctx, &settings.Embedding)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding provider: %w", err)
		}
		providers := &ai.Services{Embedding: embedder}

		// Indexing works without an LLM; questions then fail on Ask.
		llm, err := ai.CreateLLMService(ctx, &settings.LLM)
		if err != nil {
			logger.Warn("LLM provider unavailable: %v", err)
		} else {
			providers.LLM = llm
		}

		splitter := chunker.New(
			chunker.WithChunkSize(settings.Ingest.ChunkSize),
			chunker.WithOverlap(settings.Ingest.ChunkOverlap),
		)
		kb := services.NewKnowledgeBaseService(
			flat.NewStore(embedder),
			splitter,
			plaintext.New(),
			markdown.New(),
			pdf.New(),
		)

		answerer := services.NewAnswerer(nil, embedder, providers.LLM,
			services.WithK(settings.Retrieval.K),
			services.WithQuestionCondensing(settings.Retrieval.CondenseQuestion),
			services.WithGenerateOptions(driven.GenerateOptions{
				MaxTokens:   settings.LLM.MaxTokens,
				Temperature: settings.LLM.Temperature,
			}),
			services.WithPromptStore(prompts),
			services.WithTranscriptStore(transcripts),
		)

		engine := services.NewEngine(kb, answerer, settings.Ingest.SourceDir, settings.Index.PersistDir)
		return engine, providers.Close, nil
	}
}
