package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/tui/styles"
)

var formatsOrder string

var formatsCmd = &cobra.Command{
	Use:   "formats [format]",
	Short: "Show the speech schedule of each debate format",
	Long: `Show who speaks when in each debate format, with speech labels, rounds
and budgets. Pass a format name to show only that format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
	formatsCmd.Flags().StringVar(&formatsOrder, "order", "a_first", "speaking order: a_first, b_first (Public Forum only)")
}

func runFormats(cmd *cobra.Command, args []string) error {
	order, err := debate.ParseSpeakingOrder(formatsOrder)
	if err != nil {
		return err
	}

	formats := debate.Formats()
	if len(args) == 1 {
		f, err := debate.ParseFormat(args[0])
		if err != nil {
			return err
		}
		formats = []debate.Format{f}
	}

	for i, f := range formats {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := printSchedule(cmd.OutOrStdout(), f, order); err != nil {
			return err
		}
	}
	return nil
}

// printSchedule renders one format's speech schedule as a table.
func printSchedule(w io.Writer, f debate.Format, order debate.SpeakingOrder) error {
	p, err := debate.PolicyFor(f, order)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, p.TotalSpeeches())
	for i := range p.TotalSpeeches() {
		md, err := p.Metadata(i)
		if err != nil {
			return err
		}
		side, _ := p.SideFor(i)
		words, minutes := "-", "-"
		if md.WordBudget > 0 {
			words = strconv.Itoa(md.WordBudget)
		}
		if md.TimeBudget > 0 {
			minutes = strconv.Itoa(int(md.TimeBudget.Minutes()))
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			md.Label,
			debate.SideName(f, side),
			strconv.Itoa(md.Round),
			words,
			minutes,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.BorderColor)).
		Headers("#", "SPEECH", "SIDE", "ROUND", "WORDS", "MINUTES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 2 && row >= 0 && row < len(rows) {
				side, _ := p.SideFor(row)
				return s.Foreground(styles.SideColor(string(side)))
			}
			return s
		})

	title := styles.Primary.Bold(true).Render(f.DisplayName())
	_, err = fmt.Fprintf(w, "%s  %s\n%s\n", title, styles.Muted.Render(fmt.Sprintf("%d speeches", p.TotalSpeeches())), t.Render())
	return err
}
