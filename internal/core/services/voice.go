package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
	"github.com/custodia-labs/vox/internal/logger"
)

// Ensure VoiceService implements the interface.
var _ driving.VoiceService = (*VoiceService)(nil)

// VoiceService connects the microphone, transcription, synthesis and
// playback collaborators. Every collaborator is optional.
type VoiceService struct {
	recorder    driven.AudioRecorder
	transcriber driven.Transcriber
	synthesizer driven.SpeechSynthesizer
	player      driven.AudioPlayer
}

// NewVoiceService creates a voice service. Any argument may be nil.
func NewVoiceService(
	recorder driven.AudioRecorder,
	transcriber driven.Transcriber,
	synthesizer driven.SpeechSynthesizer,
	player driven.AudioPlayer,
) *VoiceService {
	return &VoiceService{
		recorder:    recorder,
		transcriber: transcriber,
		synthesizer: synthesizer,
		player:      player,
	}
}

// CanListen reports whether recording and transcription are configured.
func (s *VoiceService) CanListen() bool {
	return s.recorder != nil && s.transcriber != nil
}

// CanSpeak reports whether speech synthesis is configured.
func (s *VoiceService) CanSpeak() bool {
	return s.synthesizer != nil
}

// Listen records for duration and returns the transcribed question.
// The recording is removed afterwards.
func (s *VoiceService) Listen(ctx context.Context, duration time.Duration) (string, error) {
	if !s.CanListen() {
		return "", fmt.Errorf("%w: recording or transcription not configured", domain.ErrSpeechUnavailable)
	}
	seconds := int(duration / time.Second)
	if seconds < domain.MinRecordSeconds || seconds > domain.MaxRecordSeconds {
		return "", fmt.Errorf("%w: recording length must be %d to %d seconds, got %s",
			domain.ErrInvalidInput, domain.MinRecordSeconds, domain.MaxRecordSeconds, duration)
	}

	logger.Section("Listen")
	clip, err := s.recorder.Record(ctx, duration)
	if err != nil {
		return "", fmt.Errorf("record: %w", err)
	}
	defer func() {
		if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) {
			logger.Debug("remove recording %s: %v", clip.Path, err)
		}
	}()

	text, err := s.transcriber.Transcribe(ctx, clip)
	if err != nil {
		return "", fmt.Errorf("transcribe with %s: %w", s.transcriber.Name(), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no speech recognised", domain.ErrInvalidInput)
	}
	logger.Debug("Transcribed: %q", text)
	return text, nil
}

// Speak synthesises text and plays it when a player is configured.
// An unknown voice name falls back to the default voice with a warning.
// It returns the path of the audio file, which the caller owns.
func (s *VoiceService) Speak(ctx context.Context, text, voiceName string) (string, error) {
	if s.synthesizer == nil {
		return "", fmt.Errorf("%w: speech synthesis not configured", domain.ErrSpeechUnavailable)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: nothing to say", domain.ErrInvalidInput)
	}

	voice := s.ResolveVoice(voiceName)
	path, err := s.synthesizer.Synthesize(ctx, text, voice)
	if err != nil {
		return "", fmt.Errorf("synthesise speech: %w", err)
	}
	if s.player != nil {
		if err := s.player.Play(ctx, path); err != nil {
			return path, fmt.Errorf("play %s: %w", path, err)
		}
	}
	return path, nil
}

// ResolveVoice returns the named voice, falling back to the default.
func (s *VoiceService) ResolveVoice(name string) domain.Voice {
	voice, ok := domain.ResolveVoice(name)
	if !ok && strings.TrimSpace(name) != "" {
		logger.Warn("%v %q, using %s", domain.ErrUnknownVoice, name, voice.Name)
	}
	return voice
}

// Voices lists the available voices.
func (s *VoiceService) Voices() []domain.Voice {
	return domain.AllVoices()
}
