package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geulmoi/geulssaem/internal/model"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

var flagBatchParallel int

// batchItem pairs a result with the file it came from.
type batchItem struct {
	File   string                 `json:"file"`
	Result model.EvaluationResult `json:"result"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file...>",
	Short: "Evaluate many files with bounded parallelism",
	Long: `Evaluate each file and print a JSON array of per-file results, in the
order the files were given.

A file that cannot be read or evaluated degrades to that file's fallback
result; the batch itself never fails. Use --parallel to evaluate several
files concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		gen, err := newGenerator(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeGenerator(gen)

		settings := settingsFromConfig(cfg)
		reqs := make([]tutor.EvaluateRequest, len(args))
		for i, path := range args {
			text, err := os.ReadFile(path)
			if err != nil {
				// An unreadable file still gets a result: the empty
				// submission takes the too-short path.
				fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
			}
			reqs[i] = tutor.EvaluateRequest{
				Text:     string(text),
				Settings: settings,
			}
		}

		parallel := flagBatchParallel
		if parallel < 1 {
			parallel = cfg.Parallel
		}

		tut := &tutor.Tutor{
			Gen:            gen,
			AttemptTimeout: cfg.AttemptTimeoutDuration,
		}
		results := tut.EvaluateBatch(cmd.Context(), reqs, parallel)

		items := make([]batchItem, len(results))
		for i, result := range results {
			items[i] = batchItem{File: args[i], Result: result}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	},
}

func init() {
	batchCmd.Flags().IntVar(&flagBatchParallel, "parallel", 0, "number of files to evaluate concurrently (default: from config)")
	rootCmd.AddCommand(batchCmd)
}
