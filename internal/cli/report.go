package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/swamp-dev/boardstats/internal/config"
	"github.com/swamp-dev/boardstats/internal/stats"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute engagement statistics for a date range",
	Long: `Report runs every engagement query for one date range and prints the
results.

The range is either a named range from boardstats.yaml or an explicit
--start/--end pair. Without either, the configured default range is used.

Examples:
  boardstats report
  boardstats report --range "Last Academic Year"
  boardstats report --start 2023-09-01 --end 2023-10-01 --json
  boardstats report --driver sqlite --dsn snapshot.db --range "All Time"`,
	RunE: runReport,
}

var (
	reportRange string
	reportStart string
	reportEnd   string
	reportJSON  bool
)

func init() {
	reportCmd.Flags().StringVarP(&reportRange, "range", "r", "", "named date range from the config")
	reportCmd.Flags().StringVar(&reportStart, "start", "", "range start (YYYY-MM-DD, inclusive)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "range end (YYYY-MM-DD, exclusive)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r, err := resolveRange(cfg, reportRange, reportStart, reportEnd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, engine, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	rep, err := engine.Run(ctx, r)
	if err != nil {
		return err
	}

	if reportJSON {
		return printReportJSON(os.Stdout, rep)
	}
	printReport(os.Stdout, rep)
	return nil
}

// resolveRange picks the reporting window: explicit bounds first, then a
// named range, then the configured default.
func resolveRange(cfg *config.Config, name, start, end string) (stats.DateRange, error) {
	if start != "" || end != "" {
		if start == "" || end == "" {
			return stats.DateRange{}, fmt.Errorf("--start and --end must be given together")
		}
		return stats.ParseDateRange(name, start, end)
	}

	rc := cfg.DefaultRange
	if name != "" {
		var ok bool
		if rc, ok = cfg.FindRange(name); !ok {
			return stats.DateRange{}, fmt.Errorf("unknown range %q", name)
		}
	}
	return stats.ParseDateRange(rc.Name, rc.Start, rc.End)
}

// reportDocument is the --json output: the report plus its breakdown.
type reportDocument struct {
	*stats.Report
	Complete   bool             `json:"complete"`
	NoProgress int64            `json:"no_progress"`
	Breakdown  []stats.Category `json:"breakdown,omitempty"`
}

func printReportJSON(w io.Writer, rep *stats.Report) error {
	doc := reportDocument{Report: rep, Complete: rep.Complete(), NoProgress: rep.NoProgress()}
	doc.Breakdown, _ = rep.Breakdown()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func printReport(w io.Writer, rep *stats.Report) {
	heading := color.New(color.FgCyan, color.Bold)
	section := color.New(color.FgYellow)

	heading.Fprintf(w, "=== %s ===\n", rep.Range.String())

	section.Fprintln(w, "\nStudents")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Students"})
	table.Append([]string{"Active", rep.ActiveStudents.String()})
	table.Append([]string{"With gameboards", rep.StudentsWithGameboards.String()})
	table.Append([]string{"Completing all parts of a gameboard", rep.StudentsCompletingAll.String()})
	table.Render()

	categories, ok := rep.Breakdown()
	if !ok {
		color.New(color.FgRed).Fprintln(w, "\none of the queries failed, breakdown unavailable")
	} else {
		section.Fprintln(w, "\nBreakdown")
		total := rep.ActiveStudents.Value
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Category", "Students", "Share"})
		for _, c := range categories {
			var pct float64
			if total > 0 {
				pct = float64(c.Students) / float64(total) * 100
			}
			table.Append([]string{c.Label, strconv.FormatInt(c.Students, 10), fmt.Sprintf("%s %5.1f%%", renderProgressBar(pct, 20), pct)})
		}
		table.Render()
		fmt.Fprintf(w, "%d students made no attempt at their own gameboards\n", rep.NoProgress())
	}

	printDistribution(w, section, "Gameboards owned", "Gameboards", rep.OwnedGameboards)
	printDistribution(w, section, "Gameboards fully completed", "Gameboards", rep.CompletedGameboards)
	printDistribution(w, section, "Average completion", "Percent", rep.AverageCompletion)
}

func printDistribution(w io.Writer, section *color.Color, title, keyName string, d stats.Distribution) {
	section.Fprintf(w, "\n%s\n", title)
	if len(d) == 0 {
		fmt.Fprintln(w, "  (no students)")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{keyName, "Students"})
	for _, b := range d.Sorted() {
		table.Append([]string{stats.FormatKey(b.Key), strconv.FormatInt(b.Students, 10)})
	}
	table.SetFooter([]string{"Total", strconv.FormatInt(d.Total(), 10)})
	table.Render()
}

func renderProgressBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + bar + "]"
}
