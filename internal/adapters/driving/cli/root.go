// Package cli provides the vox command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
	"github.com/custodia-labs/vox/internal/logger"
)

// version is set at build time through SetVersion.
var version = "dev"

var verbose bool

// EngineFactory connects the knowledge base for settings. The returned
// function releases the AI providers.
type EngineFactory func(ctx context.Context, settings *domain.AppSettings) (driving.Engine, func(), error)

// Services holds the dependencies the commands run against.
type Services struct {
	Settings  driving.SettingsService
	History   driving.HistoryService
	Voice     driving.VoiceService
	NewEngine EngineFactory
}

var (
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	voiceService    driving.VoiceService
	engineFactory   EngineFactory
)

var rootCmd = &cobra.Command{
	Use:   "vox",
	Short: "Talk to your documents",
	Long: `Vox answers questions about a folder of PDF, Markdown and text documents.

Documents are split into chunks, embedded and stored in a local vector index.
Questions are answered by a language model from the most similar chunks, and
can be asked and answered by voice.

Get started:
  vox settings wizard     # choose embedding, LLM and voice providers
  vox ingest              # build the knowledge base
  vox chat                # ask questions by text
  vox talk                # ask questions by voice`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug output")
}

// SetServices wires the services used by every command.
func SetServices(s Services) {
	settingsService = s.Settings
	historyService = s.History
	voiceService = s.Voice
	engineFactory = s.NewEngine
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentSettings returns the stored settings.
func currentSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// openEngine connects the knowledge base for settings.
func openEngine(ctx context.Context, settings *domain.AppSettings) (driving.Engine, func(), error) {
	if engineFactory == nil {
		return nil, nil, errors.New("knowledge base not configured")
	}
	engine, closeFn, err := engineFactory(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() {}
	}
	return engine, closeFn, nil
}

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
