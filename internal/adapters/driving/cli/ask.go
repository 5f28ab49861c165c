package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/core/ports/driving"
)

var (
	askK       int
	askJSON    bool
	askSpeak   bool
	askVoice   string
	askTimeout time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the knowledge base a question",
	Long: `Answer a single question from the documents in the knowledge base.

The index is built first if it does not exist yet. Use --speak to hear
the answer in the selected voice.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askK, "k", 0, "number of chunks to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askSpeak, "speak", false, "speak the answer")
	askCmd.Flags().StringVar(&askVoice, "voice", "", "voice to speak with (default from settings)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 0, "give up after this long (0 = no limit)")
	rootCmd.AddCommand(askCmd)
}

// answerJSON is the --json output of ask.
type answerJSON struct {
	SessionID string       `json:"session_id"`
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
	Sources   []sourceJSON `json:"sources"`
}

type sourceJSON struct {
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if askK > 0 {
		settings.Retrieval.K = askK
	}

	ctx := commandContext(cmd)
	if askTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, askTimeout)
		defer cancel()
	}

	engine, closeEngine, err := openEngine(ctx, settings)
	if err != nil {
		return err
	}
	defer closeEngine()

	if _, err := engine.Open(ctx); err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}

	conversation := engine.NewConversation()
	answer, err := conversation.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		if err := outputAnswerJSON(cmd, conversation.SessionID(), question, answer); err != nil {
			return err
		}
	} else {
		outputAnswer(cmd, answer)
	}

	if askSpeak {
		voice := askVoice
		if voice == "" {
			voice = settings.Voice.Name
		}
		path, err := speak(ctx, answer.Text, voice)
		if err != nil {
			return err
		}
		if !askJSON {
			cmd.Printf("Audio: %s\n", path)
		}
	}
	return nil
}

func outputAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if len(answer.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, sourceName(src.Chunk), src.Chunk.Position, src.Score)
	}
}

func outputAnswerJSON(cmd *cobra.Command, sessionID, question string, answer *domain.Answer) error {
	out := answerJSON{
		SessionID: sessionID,
		Question:  question,
		Answer:    answer.Text,
		Sources:   make([]sourceJSON, 0, len(answer.Sources)),
	}
	for _, src := range answer.Sources {
		out.Sources = append(out.Sources, sourceJSON{
			Source:   sourceName(src.Chunk),
			Position: src.Chunk.Position,
			Score:    src.Score,
			Content:  src.Chunk.Content,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// sourceName returns the chunk's file, or its document ID when unknown.
func sourceName(chunk domain.Chunk) string {
	if src := chunk.Source(); src != "" {
		return src
	}
	return chunk.DocumentID
}

// speak synthesises text with the voice service.
func speak(ctx context.Context, text, voice string) (string, error) {
	if voiceService == nil {
		return "", errors.New("voice service not configured")
	}
	path, err := voiceService.Speak(ctx, text, voice)
	if err != nil {
		return path, fmt.Errorf("speak failed: %w", err)
	}
	return path, nil
}

// isExitCommand reports whether input ends a conversation.
func isExitCommand(input string) bool {
	input = strings.ToLower(strings.Trim(strings.TrimSpace(input), ".!?"))
	switch input {
	case "exit", "quit", "bye", "goodbye":
		return true
	}
	return false
}

// askInConversation asks and prints one turn. Errors are printed, not
// returned, so the conversation can continue.
func askInConversation(ctx context.Context, cmd *cobra.Command, conv driving.AssistantService, question string) *domain.Answer {
	answer, err := conv.Ask(ctx, question)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return nil
	}
	cmd.Printf("\n%s\n\n", answer.Text)
	return answer
}
