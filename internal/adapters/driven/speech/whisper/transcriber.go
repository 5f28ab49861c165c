// Package whisper transcribes recordings with the local whisper command line tool.
package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

const (
	// DefaultModel is the whisper model loaded for transcription.
	DefaultModel = "base"

	// DefaultBinary is the whisper executable name.
	DefaultBinary = "whisper"
)

// Config holds configuration for the whisper transcriber.
type Config struct {
	Binary string
	Model  string

	// Language skips detection when set, e.g. "en".
	Language string
}

// Transcriber runs whisper on a recorded clip and reads its text output.
type Transcriber struct {
	runner   driven.CommandRunner
	binary   string
	model    string
	language string
}

// NewTranscriber creates a whisper transcriber that executes through runner.
func NewTranscriber(runner driven.CommandRunner, cfg Config) *Transcriber {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Transcriber{
		runner:   runner,
		binary:   cfg.Binary,
		model:    cfg.Model,
		language: cfg.Language,
	}
}

// Name identifies the backend.
func (t *Transcriber) Name() string {
	return "whisper (" + t.model + ")"
}

// Transcribe runs whisper with text output into a scratch directory.
func (t *Transcriber) Transcribe(ctx context.Context, clip *domain.AudioClip) (string, error) {
	if clip == nil || clip.Path == "" {
		return "", fmt.Errorf("%w: no recording", domain.ErrInvalidInput)
	}

	outDir, err := os.MkdirTemp("", "vox-whisper-*")
	if err != nil {
		return "", fmt.Errorf("whisper: create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		clip.Path,
		"--model", t.model,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--fp16", "False",
		"--verbose", "False",
	}
	if t.language != "" {
		args = append(args, "--language", t.language)
	}

	if _, err := t.runner.Run(ctx, t.binary, args...); err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(clip.Path), filepath.Ext(clip.Path))
	data, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("whisper: read transcript: %w", err)
	}
	return strings.Join(strings.Fields(string(data)), " "), nil
}
