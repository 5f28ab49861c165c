package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/core/domain"
)

var (
	talkOnce    bool
	talkSeconds int
	talkVoice   string
)

var talkCmd = &cobra.Command{
	Use:   "talk",
	Short: "Talk to the knowledge base",
	Long: `Ask questions by voice and hear the answers.

Each round records for a fixed number of seconds, transcribes the
recording, answers it from the knowledge base and speaks the answer.
Say 'exit' or 'goodbye', or press Ctrl+C, to stop.`,
	Args: cobra.NoArgs,
	RunE: runTalk,
}

func init() {
	talkCmd.Flags().BoolVar(&talkOnce, "once", false, "answer a single question and exit")
	talkCmd.Flags().IntVar(&talkSeconds, "seconds", 0,
		fmt.Sprintf("recording length, %d to %d (default from settings)", domain.MinRecordSeconds, domain.MaxRecordSeconds))
	talkCmd.Flags().StringVar(&talkVoice, "voice", "", "voice to speak with (default from settings)")
	rootCmd.AddCommand(talkCmd)
}

func runTalk(cmd *cobra.Command, _ []string) error {
	if voiceService == nil {
		return errors.New("voice service not configured")
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	seconds := settings.Voice.RecordSeconds
	if talkSeconds != 0 {
		seconds = talkSeconds
	}
	if seconds < domain.MinRecordSeconds || seconds > domain.MaxRecordSeconds {
		return fmt.Errorf("%w: --seconds must be %d to %d", domain.ErrInvalidInput,
			domain.MinRecordSeconds, domain.MaxRecordSeconds)
	}
	voice := talkVoice
	if voice == "" {
		voice = settings.Voice.Name
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

	conversation := engine.NewConversation()
	for ctx.Err() == nil {
		cmd.Printf("Listening for %d seconds...\n", seconds)
		question, err := voiceService.Listen(ctx, time.Duration(seconds)*time.Second)
		switch {
		case errors.Is(err, domain.ErrSpeechUnavailable):
			return err
		case err != nil:
			cmd.PrintErrf("Error: %v\n", err)
			if talkOnce {
				return err
			}
			continue
		}

		cmd.Printf("You: %s\n", question)
		if isExitCommand(question) {
			break
		}

		answer := askInConversation(ctx, cmd, conversation, question)
		if answer != nil {
			path, err := speak(ctx, answer.Text, voice)
			if err != nil {
				cmd.PrintErrf("Error: %v\n", err)
			}
			if path != "" {
				_ = os.Remove(path)
			}
		}
		if talkOnce {
			break
		}
	}

	cmd.Printf("Session %s: %d turns\n", conversation.SessionID(), len(conversation.History()))
	return nil
}
