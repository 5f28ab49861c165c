package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Describe the knowledge base",
	Long:  `Show the persisted vector index and the configured providers.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
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

	cmd.Printf("Source:    %s\n", engine.SourceDir())
	cmd.Printf("Index:     %s\n", engine.PersistDir())
	cmd.Printf("Embedding: %s (%s)\n", settings.Embedding.Provider, settings.Embedding.Model)
	cmd.Printf("LLM:       %s (%s)\n", settings.LLM.Provider, settings.LLM.Model)
	cmd.Printf("Voice:     %s\n", settings.Voice.Name)
	cmd.Println()

	info, err := engine.Status(ctx)
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		cmd.Println("No index yet. Run 'vox ingest' to build one.")
		return nil
	case errors.Is(err, domain.ErrIndexCorrupt):
		cmd.Printf("Index is unusable: %v\n", err)
		cmd.Println("Run 'vox ingest --force' to rebuild it.")
		return nil
	case err != nil:
		return fmt.Errorf("failed to read index: %w", err)
	}

	cmd.Printf("Generation: %s\n", info.Generation)
	cmd.Printf("Model:      %s (%d dimensions)\n", info.ModelName, info.Dimensions)
	cmd.Printf("Documents:  %d\n", info.Documents)
	cmd.Printf("Chunks:     %d\n", info.Chunks)
	if !info.CreatedAt.IsZero() {
		cmd.Printf("Built:      %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
