package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the turns of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of conversations")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	sessions, err := historyService.Sessions(commandContext(cmd), historyLimit)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(sessions) == 0 {
		cmd.Println("No conversations yet.")
		return nil
	}

	cmd.Println("Conversations:")
	for _, s := range sessions {
		cmd.Printf("  %s  %s  %d turns\n", s.ID, s.StartedAt.Format("2006-01-02 15:04"), s.Turns)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	turns, err := historyService.Turns(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	for i, turn := range turns {
		cmd.Printf("[%d] %s\n", i+1, turn.AskedAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("Q: %s\n", turn.Question)
		cmd.Printf("A: %s\n\n", turn.Answer)
	}
	return nil
}
