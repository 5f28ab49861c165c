package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// VoiceService turns speech into questions and answers into speech.
type VoiceService interface {
	// Listen records for duration and returns the transcribed text.
	Listen(ctx context.Context, duration time.Duration) (string, error)

	// Speak synthesises text in the named voice and plays it.
	// Unknown voice names fall back to the default voice.
	Speak(ctx context.Context, text, voiceName string) (string, error)

	// Voices lists the available voices.
	Voices() []domain.Voice
}
