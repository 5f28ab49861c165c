// Package elevenlabs provides a text-to-speech adapter for the ElevenLabs REST API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/logger"
)

// Ensure Synthesizer implements the interface.
var _ driven.SpeechSynthesizer = (*Synthesizer)(nil)

const (
	// DefaultBaseURL is the ElevenLabs API endpoint.
	DefaultBaseURL = "https://api.elevenlabs.io"

	// DefaultModel is the multilingual speech model.
	DefaultModel = "eleven_multilingual_v2"

	defaultTimeout = 60 * time.Second

	// defaultRPS keeps well inside the free tier's concurrency limit.
	defaultRPS = 2
)

// Config holds configuration for the ElevenLabs synthesizer.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// OutputDir receives the generated files. Defaults to os.TempDir().
	OutputDir string

	Timeout time.Duration

	// RequestsPerSecond limits API calls. Zero uses the default.
	RequestsPerSecond float64
}

// Synthesizer converts text to MP3 files with ElevenLabs.
type Synthesizer struct {
	client    *http.Client
	limiter   *rate.Limiter
	apiKey    string
	baseURL   string
	model     string
	outputDir string
}

// NewSynthesizer creates an ElevenLabs synthesizer.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: elevenlabs API key is required", domain.ErrSpeechUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.TempDir()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}

	return &Synthesizer{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		outputDir: cfg.OutputDir,
	}, nil
}

// ttsRequest is the text-to-speech request body.
type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// apiError is the error body ElevenLabs returns.
type apiError struct {
	Detail json.RawMessage `json:"detail"`
}

// Synthesize requests speech for text in voice and writes it to a new
// temporary .mp3 file. The caller owns the returned path.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice domain.Voice) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}
	if voice.ID == "" {
		return "", fmt.Errorf("%w: %q has no voice id", domain.ErrUnknownVoice, voice.Name)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("elevenlabs: %w", err)
	}

	body, err := json.Marshal(ttsRequest{Text: text, ModelID: s.model})
	if err != nil {
		return "", fmt.Errorf("elevenlabs: encode request: %w", err)
	}

	endpoint := s.baseURL + "/v1/text-to-speech/" + url.PathEscape(voice.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("elevenlabs: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("elevenlabs: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("elevenlabs: status %d: %s", resp.StatusCode, errorMessage(resp.Body))
	}

	path, err := s.writeAudio(resp.Body)
	if err != nil {
		return "", err
	}
	logger.Elapsed("elevenlabs synthesis ("+voice.Name+")", start)
	return path, nil
}

// writeAudio copies r into a new temporary file and removes it on failure.
func (s *Synthesizer) writeAudio(r io.Reader) (string, error) {
	f, err := os.CreateTemp(s.outputDir, "vox-*.mp3")
	if err != nil {
		return "", fmt.Errorf("elevenlabs: create audio file: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr == nil && n == 0 {
		copyErr = errors.New("empty audio response")
	}
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("elevenlabs: write audio: %w", err)
	}
	return f.Name(), nil
}

// errorMessage extracts a readable message from an error response.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var parsed apiError
	if json.Unmarshal(data, &parsed) == nil && len(parsed.Detail) > 0 {
		var detail struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if json.Unmarshal(parsed.Detail, &detail) == nil && detail.Message != "" {
			if detail.Status != "" {
				return detail.Status + ": " + detail.Message
			}
			return detail.Message
		}
		var msg string
		if json.Unmarshal(parsed.Detail, &msg) == nil && msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(data))
}
