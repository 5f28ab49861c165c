package cli

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/adapters/driving/tui"
	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for vox.

The TUI keeps one conversation open: type questions or record them,
read or hear the answers, and browse the sources behind each answer.
It also lists past conversations and shows and rebuilds the index.

Controls:
  Enter    - Ask / Select
  Ctrl+R   - Record a spoken question
  n / s    - New question / Speak the answer
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	settings, err := currentSettings()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	engine, closeEngine, err := openEngine(ctx, settings)
	if err != nil {
		return err
	}
	defer closeEngine()

	// The index view can still build the index, so a failed open is not fatal.
	if _, err := engine.Open(ctx); err != nil {
		logger.Warn("knowledge base not loaded: %v", err)
	}

	voice, _ := domain.ResolveVoice(settings.Voice.Name)
	ports := &tui.Ports{
		Engine:    engine,
		Voice:     voiceService,
		History:   historyService,
		VoiceName: voice.Name,
		RecordFor: time.Duration(settings.Voice.RecordSeconds) * time.Second,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
