package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/connectors/filesystem"
	"github.com/custodia-labs/vox/internal/logger"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the knowledge base when documents change",
	Long: `Watch the source directory and rebuild the index after documents are
added, changed or removed. Changes arriving close together trigger a
single rebuild. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "wait this long after the last change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
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

	if _, err := engine.Open(ctx); err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	printReport(cmd, engine.LastReport(), engine.SourceDir(), engine.PersistDir())

	connector := filesystem.New(engine.SourceDir())
	defer connector.Close()

	changes, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", engine.SourceDir(), err)
	}
	cmd.Printf("Watching %s for changes...\n", engine.SourceDir())

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	pending := 0

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("%s %s", change.Type, filesystem.DisplayPath(engine.SourceDir(), change.Path))
			pending++
			timer.Reset(watchDebounce)

		case <-timer.C:
			cmd.Printf("%d changes, rebuilding...\n", pending)
			pending = 0
			if _, err := engine.Rebuild(ctx); err != nil {
				cmd.PrintErrf("Rebuild failed: %v\n", err)
				continue
			}
			printReport(cmd, engine.LastReport(), engine.SourceDir(), engine.PersistDir())

		case <-ctx.Done():
			return nil
		}
	}
}
