package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vox/internal/core/domain"
)

// fakeRunner records the call and writes transcript into --output_dir.
type fakeRunner struct {
	name       string
	args       []string
	transcript string
	err        error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	var outDir string
	for i, a := range args {
		if a == "--output_dir" && i+1 < len(args) {
			outDir = args[i+1]
		}
	}
	base := filepath.Base(args[0])
	base = base[:len(base)-len(filepath.Ext(base))]
	if f.transcript != "" {
		if err := os.WriteFile(filepath.Join(outDir, base+".txt"), []byte(f.transcript), 0o600); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func TestNewTranscriber_Defaults(t *testing.T) {
	tr := NewTranscriber(&fakeRunner{}, Config{})

	assert.Equal(t, DefaultBinary, tr.binary)
	assert.Equal(t, DefaultModel, tr.model)
	assert.Equal(t, "whisper (base)", tr.Name())
}

func TestTranscriber_Transcribe(t *testing.T) {
	runner := &fakeRunner{transcript: " What is\n the refund   policy?\n"}
	tr := NewTranscriber(runner, Config{Model: "small", Language: "en"})
	clip := &domain.AudioClip{Path: "/tmp/vox-rec-123.wav"}

	text, err := tr.Transcribe(context.Background(), clip)

	require.NoError(t, err)
	assert.Equal(t, "What is the refund policy?", text)
	assert.Equal(t, "whisper", runner.name)
	assert.Equal(t, "/tmp/vox-rec-123.wav", runner.args[0])
	assert.Contains(t, runner.args, "small")
	assert.Contains(t, runner.args, "--language")
	assert.Contains(t, runner.args, "txt")
}

func TestTranscriber_Transcribe_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *fakeRunner
		clip    *domain.AudioClip
		wantErr string
	}{
		{name: "nil clip", runner: &fakeRunner{}, clip: nil, wantErr: "no recording"},
		{name: "empty path", runner: &fakeRunner{}, clip: &domain.AudioClip{}, wantErr: "no recording"},
		{
			name:    "command fails",
			runner:  &fakeRunner{err: errors.New("exit status 1: model not found")},
			clip:    &domain.AudioClip{Path: "/tmp/a.wav"},
			wantErr: "model not found",
		},
		{
			name:    "no transcript written",
			runner:  &fakeRunner{},
			clip:    &domain.AudioClip{Path: "/tmp/a.wav"},
			wantErr: "read transcript",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranscriber(tt.runner, Config{})

			_, err := tr.Transcribe(context.Background(), tt.clip)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
