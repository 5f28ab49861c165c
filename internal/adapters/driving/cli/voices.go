package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vox/internal/core/domain"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the available voices",
	Args:  cobra.NoArgs,
	RunE:  runVoices,
}

var voicesSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Select the voice answers are spoken with",
	Args:  cobra.ExactArgs(1),
	RunE:  runVoicesSet,
}

func init() {
	voicesCmd.AddCommand(voicesSetCmd)
	rootCmd.AddCommand(voicesCmd)
}

func runVoices(cmd *cobra.Command, _ []string) error {
	voices := domain.AllVoices()
	if voiceService != nil {
		voices = voiceService.Voices()
	}

	selected := domain.DefaultVoiceName
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			voice, _ := domain.ResolveVoice(settings.Voice.Name)
			selected = voice.Name
		}
	}

	cmd.Println("Voices:")
	for _, voice := range voices {
		var tags []string
		if voice.Name == selected {
			tags = append(tags, "selected")
		}
		if voice.Name == domain.DefaultVoiceName {
			tags = append(tags, "default")
		}
		line := "  " + voice.Name
		if len(tags) > 0 {
			line += " (" + strings.Join(tags, ", ") + ")"
		}
		cmd.Println(line)
	}
	return nil
}

func runVoicesSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetVoice(args[0]); err != nil {
		return fmt.Errorf("failed to set voice: %w", err)
	}
	voice, _ := domain.LookupVoice(args[0])
	cmd.Printf("Voice set to: %s\n", voice.Name)
	return nil
}
