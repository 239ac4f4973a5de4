package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geulmoi/geulssaem/internal/model"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

var flagChatUtterance string

var promptCmd = &cobra.Command{
	Use:   "prompt [file|-]",
	Short: "Print the prompt that would be sent to the model",
	Long: `Print the exact evaluation prompt for a text file (or stdin with "-")
without calling the model.

With --chat, print the conversation prompt for the given student
utterance instead; no file argument is needed.

This is pure transport inspection — no model call is made.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		settings := settingsFromConfig(cfg)

		if flagChatUtterance != "" {
			transcript := tutor.FormatTranscript([]model.Turn{model.StudentTurn(flagChatUtterance)})
			fmt.Fprint(os.Stdout, tutor.BuildConversationPrompt(settings, transcript, flagChatUtterance))
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("requires a file argument (or \"-\" for stdin) unless --chat is given")
		}
		text, err := readSubmission(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, tutor.BuildEvaluationPrompt(settings, text))
		return nil
	},
}

func init() {
	promptCmd.Flags().StringVar(&flagChatUtterance, "chat", "", "print the conversation prompt for this utterance instead")
	rootCmd.AddCommand(promptCmd)
}
