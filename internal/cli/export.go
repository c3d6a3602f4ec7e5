package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swamp-dev/boardstats/internal/config"
	"github.com/swamp-dev/boardstats/internal/export"
	"github.com/swamp-dev/boardstats/internal/stats"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write CSV summaries for every configured range",
	Long: `Export runs the engine once per named range in boardstats.yaml and writes
the summaries the chart command plots:

  gameboard_count/<range>.csv       gameboards owned per student
  gameboard_completion/<range>.csv  gameboards fully completed per student
  count/<range>.csv                 breakdown of active students
  percentage/<range>.csv            average completion per student

With --xlsx all ranges are also written to one workbook, boardstats.xlsx.

Examples:
  boardstats export
  boardstats export --out reports --xlsx`,
	RunE: runExport,
}

var (
	exportDir  string
	exportXLSX bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "output directory (default from config)")
	exportCmd.Flags().BoolVar(&exportXLSX, "xlsx", false, "also write an xlsx workbook")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ranges, err := exportRanges(cfg)
	if err != nil {
		return err
	}

	dir := cfg.Export.Dir
	if exportDir != "" {
		dir = exportDir
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, engine, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	exp := export.New(dir, cfg.Export.BucketCap, logger)
	reports := make([]*stats.Report, 0, len(ranges))
	for _, r := range ranges {
		rep, err := engine.Run(ctx, r)
		if err != nil {
			return fmt.Errorf("range %q: %w", r.Name, err)
		}
		written, err := exp.WriteReport(rep)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Println(path)
		}
		reports = append(reports, rep)
	}

	if exportXLSX || cfg.Export.Workbook {
		path, err := exp.WriteWorkbook(reports)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}

	fmt.Printf("\n✓ Exported %d range(s) to %s\n", len(reports), dir)
	return nil
}

// exportRanges parses the configured named ranges, or the default range when
// none are configured.
func exportRanges(cfg *config.Config) ([]stats.DateRange, error) {
	configured := cfg.Ranges
	if len(configured) == 0 {
		configured = []config.RangeConfig{cfg.DefaultRange}
	}

	ranges := make([]stats.DateRange, 0, len(configured))
	for _, rc := range configured {
		r, err := stats.ParseDateRange(rc.Name, rc.Start, rc.End)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", rc.Name, err)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
