package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swamp-dev/boardstats/internal/chart"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a pie or scatter chart from an exported CSV",
	Long: `Chart plots one CSV summary written by export.

Pie charts read a label column (gameboards, range or labels) and a size
column (count or sizes). Scatter charts read percentage/x against count/y and
plot the number of students on a log scale, highlighting the first and last
rows.

The title comes from the input file name, so count/last-academic-year.csv is
titled "Last Academic Year".

Examples:
  boardstats chart --graph pie --input out/gameboard_completion/all-time.csv --output charts
  boardstats chart --graph scatter --input out/percentage/all-time.csv --output charts --format svg`,
	RunE: runChart,
}

var (
	chartGraph  string
	chartInput  string
	chartOutput string
	chartFormat string
)

func init() {
	chartCmd.Flags().StringVarP(&chartGraph, "graph", "g", "", "chart type (scatter, pie)")
	chartCmd.Flags().StringVarP(&chartInput, "input", "f", "", "input CSV file")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", ".", "output directory")
	chartCmd.Flags().StringVar(&chartFormat, "format", "", "image format (png, svg; default from config)")

	chartCmd.MarkFlagRequired("graph")
	chartCmd.MarkFlagRequired("input")
}

func runChart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	graph, err := chart.ParseGraph(chartGraph)
	if err != nil {
		return err
	}

	format := cfg.Chart.Format
	if chartFormat != "" {
		format = chartFormat
	}
	output := chart.OutputPath(chartOutput, chartInput, graph, chart.Format(format))

	r := chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height, logger)
	if err := r.RenderFile(graph, chartInput, output); err != nil {
		return err
	}

	fmt.Println(output)
	return nil
}
