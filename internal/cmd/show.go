package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/podium/internal/transcript"
)

var showAs string

var showCmd = &cobra.Command{
	Use:   "show <transcript>",
	Short: "Print a saved transcript",
	Long: `Print a transcript saved as JSON or YAML, by default as Markdown.
Use --as to convert it to another format.`,
	Example: `  podium show debate.json
  podium show --as yaml debate.json > debate.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showAs, "as", "markdown", "output format: markdown, json, yaml")
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := transcript.ParseFormat(showAs)
	if err != nil {
		return err
	}
	t, err := transcript.Load(args[0])
	if err != nil {
		return err
	}
	return transcript.Write(cmd.OutOrStdout(), t, format)
}
