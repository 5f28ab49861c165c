// Package openai transcribes recordings with the OpenAI audio API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultModel   = goopenai.Whisper1
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI transcriber.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

// Transcriber uploads recordings to the OpenAI transcription endpoint.
type Transcriber struct {
	client   *goopenai.Client
	model    string
	language string
}

// NewTranscriber creates an OpenAI transcriber.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Transcriber{
		client:   goopenai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

// Name identifies the backend.
func (t *Transcriber) Name() string {
	return "openai (" + t.model + ")"
}

// Transcribe returns the text spoken in clip.
func (t *Transcriber) Transcribe(ctx context.Context, clip *domain.AudioClip) (string, error) {
	if clip == nil || clip.Path == "" {
		return "", fmt.Errorf("%w: no recording", domain.ErrInvalidInput)
	}

	resp, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: clip.Path,
		Language: t.language,
		Format:   goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("openai: transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
