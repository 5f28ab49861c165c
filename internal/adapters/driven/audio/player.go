package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/vox/internal/adapters/driven/command"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driven"
)

// Ensure Player implements the interface.
var _ driven.AudioPlayer = (*Player)(nil)

// PlayerBinaries are the supported playback tools, in order of preference.
var PlayerBinaries = []string{"afplay", "ffplay", "mpg123"}

// Player plays audio files with afplay, ffplay or mpg123.
type Player struct {
	runner driven.CommandRunner
	binary string
}

// NewPlayer creates a player. An empty binary picks the first on PATH.
func NewPlayer(runner driven.CommandRunner, binary string) (*Player, error) {
	if binary == "" {
		bin, ok := command.FirstAvailable(PlayerBinaries...)
		if !ok {
			return nil, fmt.Errorf("%w: no audio player found, install ffmpeg (ffplay) or mpg123",
				domain.ErrSpeechUnavailable)
		}
		binary = bin
	}
	return &Player{runner: runner, binary: binary}, nil
}

// Binary returns the playback tool in use.
func (p *Player) Binary() string {
	return p.binary
}

// Play blocks until the file has played.
func (p *Player) Play(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	var args []string
	switch filepath.Base(p.binary) {
	case "afplay":
		args = []string{path}
	case "ffplay":
		args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	case "mpg123":
		args = []string{"-q", path}
	default:
		return fmt.Errorf("%w: unsupported player %q", domain.ErrSpeechUnavailable, p.binary)
	}

	if _, err := p.runner.Run(ctx, p.binary, args...); err != nil {
		return fmt.Errorf("play with %s: %w", filepath.Base(p.binary), err)
	}
	return nil
}
