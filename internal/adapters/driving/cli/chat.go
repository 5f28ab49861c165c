package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	chatSpeak bool
	chatVoice string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the knowledge base",
	Long: `Start a conversation with the knowledge base. Follow-up questions
see the earlier turns of the conversation.

Type 'exit' or 'quit', or press Ctrl+D, to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatSpeak, "speak", false, "speak each answer")
	chatCmd.Flags().StringVar(&chatVoice, "voice", "", "voice to speak with (default from settings)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
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

	voice := chatVoice
	if voice == "" {
		voice = settings.Voice.Name
	}

	conversation := engine.NewConversation()
	cmd.Printf("Chatting with %s. Type 'exit' to leave.\n\n", engine.SourceDir())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if isExitCommand(question) {
			break
		}

		answer := askInConversation(ctx, cmd, conversation, question)
		if answer != nil && chatSpeak {
			if path, err := speak(ctx, answer.Text, voice); err != nil {
				cmd.PrintErrf("Error: %v\n", err)
			} else {
				_ = os.Remove(path)
			}
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	cmd.Printf("Session %s: %d turns\n", conversation.SessionID(), len(conversation.History()))
	return nil
}
