package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// AudioRecorder captures a fixed-length microphone recording.
type AudioRecorder interface {
	// Record blocks for duration and returns the recorded clip.
	Record(ctx context.Context, duration time.Duration) (*domain.AudioClip, error)
}

// Transcriber converts recorded speech to text.
type Transcriber interface {
	// Transcribe returns the spoken text in clip.
	Transcribe(ctx context.Context, clip *domain.AudioClip) (string, error)

	// Name identifies the backend for diagnostics.
	Name() string
}

// SpeechSynthesizer converts text to a playable audio file.
type SpeechSynthesizer interface {
	// Synthesize writes speech for text in voice and returns the file path.
	Synthesize(ctx context.Context, text string, voice domain.Voice) (string, error)
}

// AudioPlayer plays an audio file to completion.
type AudioPlayer interface {
	// Play blocks until playback ends.
	Play(ctx context.Context, path string) error
}

// CommandRunner executes an external command and returns its standard output.
// Adapters that wrap command line tools accept one so tests can inject a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
