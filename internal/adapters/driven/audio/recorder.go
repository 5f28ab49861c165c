// Package audio records from the microphone and plays audio files through
// common command line tools.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/custodia-labs/vox/internal/adapters/driven/command"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.AudioRecorder = (*Recorder)(nil)

// RecorderBinaries are the supported recording tools, in order of preference.
var RecorderBinaries = []string{"rec", "arecord"}

// RecorderConfig holds configuration for the microphone recorder.
type RecorderConfig struct {
	// Binary is rec (sox) or arecord. Empty picks the first on PATH.
	Binary string

	SampleRate int
	Channels   int

	// OutputDir receives recordings. Defaults to os.TempDir().
	OutputDir string
}

// Recorder captures WAV recordings with rec or arecord.
type Recorder struct {
	runner     driven.CommandRunner
	binary     string
	sampleRate int
	channels   int
	outputDir  string
}

// NewRecorder creates a recorder that executes through runner.
func NewRecorder(runner driven.CommandRunner, cfg RecorderConfig) (*Recorder, error) {
	if cfg.Binary == "" {
		bin, ok := command.FirstAvailable(RecorderBinaries...)
		if !ok {
			return nil, fmt.Errorf("%w: no recorder found, install sox (rec) or alsa-utils (arecord)",
				domain.ErrSpeechUnavailable)
		}
		cfg.Binary = bin
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = domain.DefaultSampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.TempDir()
	}

	return &Recorder{
		runner:     runner,
		binary:     cfg.Binary,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		outputDir:  cfg.OutputDir,
	}, nil
}

// Binary returns the recording tool in use.
func (r *Recorder) Binary() string {
	return r.binary
}

// Record blocks for duration, rounded up to whole seconds, and returns the WAV clip.
// The caller owns the clip's file.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) (*domain.AudioClip, error) {
	seconds := int((duration + time.Second - 1) / time.Second)
	if seconds < 1 {
		return nil, fmt.Errorf("%w: recording length must be positive", domain.ErrInvalidInput)
	}

	f, err := os.CreateTemp(r.outputDir, "vox-rec-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create recording file: %w", err)
	}
	path := f.Name()
	_ = f.Close()

	args, err := r.args(path, seconds)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	if _, err := r.runner.Run(ctx, r.binary, args...); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("record with %s: %w", filepath.Base(r.binary), err)
	}

	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		_ = os.Remove(path)
		return nil, fmt.Errorf("record with %s: no audio captured", filepath.Base(r.binary))
	}

	return &domain.AudioClip{
		Path:       path,
		SampleRate: r.sampleRate,
		Channels:   r.channels,
		Duration:   time.Duration(seconds) * time.Second,
	}, nil
}

func (r *Recorder) args(path string, seconds int) ([]string, error) {
	rate := strconv.Itoa(r.sampleRate)
	channels := strconv.Itoa(r.channels)

	switch filepath.Base(r.binary) {
	case "rec":
		return []string{"-q", "-r", rate, "-c", channels, "-b", "16", path,
			"trim", "0", strconv.Itoa(seconds)}, nil
	case "arecord":
		return []string{"-q", "-f", "S16_LE", "-r", rate, "-c", channels,
			"-d", strconv.Itoa(seconds), path}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported recorder %q", domain.ErrSpeechUnavailable, r.binary)
	}
}
