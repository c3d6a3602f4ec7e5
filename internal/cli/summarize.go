package cli

import (
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/swamp-dev/boardstats/internal/chart"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize FILE",
	Short: "Print the column totals of a CSV summary",
	Long: `Summarize adds up every numeric column of a CSV file. Use it to check that
an exported summary accounts for every student in its range.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	sums, err := chart.SummarizeFile(args[0])
	if err != nil {
		return err
	}
	printSums(os.Stdout, sums)
	return nil
}

func printSums(w io.Writer, sums []chart.ColumnSum) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Sum"})
	for _, s := range sums {
		if !s.Numeric {
			continue
		}
		table.Append([]string{truncate(s.Name, 40), strconv.FormatFloat(s.Sum, 'f', -1, 64)})
	}
	table.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
