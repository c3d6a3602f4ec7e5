// Package export writes engine reports as CSV summaries and an xlsx workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/swamp-dev/boardstats/internal/stats"
)

// Summary directories under the export root.
const (
	DirGameboardCount      = "gameboard_count"
	DirGameboardCompletion = "gameboard_completion"
	DirCount               = "count"
	DirPercentage          = "percentage"
)

// Exporter writes report files below Dir.
type Exporter struct {
	Dir       string
	BucketCap int
	Logger    *slog.Logger
}

// New creates an exporter. Owned-gameboard keys above bucketCap are collapsed
// into a single "N+" row.
func New(dir string, bucketCap int, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{Dir: dir, BucketCap: bucketCap, Logger: logger}
}

type summaryFile struct {
	dir    string
	header []string
	rows   [][]string
}

// WriteReport writes the CSV summaries for rep and returns the paths written.
// The breakdown file is skipped when a count is absent.
func (e *Exporter) WriteReport(rep *stats.Report) ([]string, error) {
	base := rep.Range.Slug() + ".csv"
	var written []string

	files := []summaryFile{
		{DirGameboardCount, []string{"gameboards", "count"}, OwnedRows(rep.OwnedGameboards, e.BucketCap)},
		{DirGameboardCompletion, []string{"gameboards", "count"}, DistributionRows(rep.CompletedGameboards)},
		{DirPercentage, []string{"percentage", "count"}, DistributionRows(rep.AverageCompletion)},
	}

	if categories, ok := rep.Breakdown(); ok {
		files = append(files, summaryFile{DirCount, []string{"range", "count"}, BreakdownRows(categories)})
	} else {
		e.Logger.Warn("one of the queries failed, skipping breakdown", "range", rep.Range.Name)
	}

	for _, f := range files {
		path := filepath.Join(e.Dir, f.dir, base)
		if err := writeCSV(path, f.header, f.rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	e.Logger.Info("report exported", "range", rep.Range.Name, "files", len(written))
	return written, nil
}

// OwnedRows lists owned-gameboard buckets in ascending order, merging every
// key above bucketCap into a final "5+" style row. A bucketCap of zero keeps
// every key.
func OwnedRows(d stats.Distribution, bucketCap int) [][]string {
	var rows [][]string
	var overflow int64
	for _, b := range d.Sorted() {
		if bucketCap > 0 && b.Key > float64(bucketCap) {
			overflow += b.Students
			continue
		}
		rows = append(rows, []string{stats.FormatKey(b.Key), strconv.FormatInt(b.Students, 10)})
	}
	if overflow > 0 {
		rows = append(rows, []string{fmt.Sprintf("%d+", bucketCap+1), strconv.FormatInt(overflow, 10)})
	}
	return rows
}

// DistributionRows lists every bucket of d in ascending key order.
func DistributionRows(d stats.Distribution) [][]string {
	rows := make([][]string, 0, len(d))
	for _, b := range d.Sorted() {
		rows = append(rows, []string{stats.FormatKey(b.Key), strconv.FormatInt(b.Students, 10)})
	}
	return rows
}

// BreakdownRows lists the breakdown categories in their fixed order.
func BreakdownRows(categories []stats.Category) [][]string {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Label, strconv.FormatInt(c.Students, 10)})
	}
	return rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
