package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/geulmoi/geulssaem/internal/tutor"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <file|->",
	Short: "Evaluate one piece of student writing",
	Long: `Evaluate a single text file (or stdin with "-") and print the scored
result as JSON.

The result always carries a score: replies the model garbles degrade to
fixed fallback scores instead of errors. Submissions under 10 characters
are scored 0 without calling the model.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSubmission(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		gen, err := newGenerator(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeGenerator(gen)

		tut := &tutor.Tutor{
			Gen:            gen,
			AttemptTimeout: cfg.AttemptTimeoutDuration,
		}
		result := tut.Evaluate(cmd.Context(), tutor.EvaluateRequest{
			Text:     text,
			Settings: settingsFromConfig(cfg),
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// readSubmission reads the text to evaluate from a file, or stdin for "-".
func readSubmission(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
