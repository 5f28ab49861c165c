package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/core/domain"
)

var (
	ingestSource string
	ingestIndex  string
	ingestForce  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the knowledge base",
	Long: `Load the documents in the source directory, split them into chunks,
embed the chunks and persist the vector index.

An existing index is reused without embedding anything. Use --force to
rebuild it from the source directory.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "directory to load documents from")
	ingestCmd.Flags().StringVarP(&ingestIndex, "index", "i", "", "directory to persist the index in")
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "rebuild even if an index exists")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if ingestSource != "" {
		settings.Ingest.SourceDir = ingestSource
	}
	if ingestIndex != "" {
		settings.Index.PersistDir = ingestIndex
	}

	ctx := commandContext(cmd)
	engine, closeEngine, err := openEngine(ctx, settings)
	if err != nil {
		return err
	}
	defer closeEngine()

	if ingestForce {
		_, err = engine.Rebuild(ctx)
	} else {
		_, err = engine.Open(ctx)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printReport(cmd, engine.LastReport(), engine.SourceDir(), engine.PersistDir())
	return nil
}

// printReport writes a build report in human-readable form.
func printReport(cmd *cobra.Command, report *domain.BuildReport, sourceDir, persistDir string) {
	if report == nil {
		return
	}
	if report.Reused {
		cmd.Printf("Loaded existing index from %s\n", persistDir)
		cmd.Println("Use --force to rebuild it.")
		return
	}

	cmd.Printf("Indexed %d documents from %s\n", report.Documents, sourceDir)
	kinds := make([]string, 0, len(report.PerKind))
	for kind := range report.PerKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		cmd.Printf("  %-9s %d\n", kind+":", report.PerKind[domain.DocumentKind(kind)])
	}
	cmd.Printf("Chunks: %d\n", report.Chunks)
	cmd.Printf("Index:  %s\n", persistDir)
	cmd.Printf("Took:   %s\n", report.Duration.Round(time.Millisecond))

	if len(report.Failures) > 0 {
		cmd.Printf("\n%d load failures:\n", len(report.Failures))
		for _, failure := range report.Failures {
			cmd.Printf("  - %v\n", failure)
		}
	}
}
