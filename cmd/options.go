package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geulmoi/geulssaem/internal/model"
)

var flagOptionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the accepted study setting labels",
	Long: `List the grade, subject, and writing type labels the tutor prompts are
written for. The defaults are marked with an asterisk.

Labels are carried as opaque strings: any value is accepted by evaluate
and chat, but these are the ones the rubric was tuned on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagOptionsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"grades":        model.Grades(),
				"subjects":      model.Subjects(),
				"writing_types": model.WritingTypes(),
				"defaults": map[string]string{
					"grade":        model.DefaultGrade,
					"subject":      model.DefaultSubject,
					"writing_type": model.DefaultWritingType,
				},
			})
		}

		printLabels("grades", model.Grades(), model.DefaultGrade)
		printLabels("subjects", model.Subjects(), model.DefaultSubject)
		printLabels("writing_types", model.WritingTypes(), model.DefaultWritingType)
		return nil
	},
}

func printLabels(heading string, labels []string, defaultLabel string) {
	fmt.Println(heading + ":")
	for _, label := range labels {
		marker := " "
		if label == defaultLabel {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, label)
	}
}

func init() {
	optionsCmd.Flags().BoolVar(&flagOptionsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(optionsCmd)
}
