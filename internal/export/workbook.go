package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/swamp-dev/boardstats/internal/stats"
)

// WorkbookName is the file name of the combined workbook.
const WorkbookName = "boardstats.xlsx"

const (
	defaultSheet = "Sheet1"
	maxSheetName = 31
)

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// SheetName makes a range name safe for use as a worksheet name.
func SheetName(name string) string {
	s := sheetNameReplacer.Replace(strings.TrimSpace(name))
	if s == "" {
		s = "report"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

// WriteWorkbook writes one sheet per report to Dir/boardstats.xlsx. Each sheet
// starts with the scalar counts followed by the three distributions side by side.
func (e *Exporter) WriteWorkbook(reports []*stats.Report) (string, error) {
	if len(reports) == 0 {
		return "", fmt.Errorf("no reports to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, rep := range reports {
		sheet := SheetName(rep.Range.Name)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return "", fmt.Errorf("naming sheet %q: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("adding sheet %q: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, rep, e.BucketCap); err != nil {
			return "", fmt.Errorf("writing sheet %q: %w", sheet, err)
		}
	}

	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(e.Dir, WorkbookName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	e.Logger.Info("workbook exported", "path", path, "sheets", len(reports))
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, rep *stats.Report, bucketCap int) error {
	counts := [][]any{
		{"Range", rep.Range.Name},
		{"Start", rep.Range.Start.Format(stats.DateLayout)},
		{"End", rep.Range.End.Format(stats.DateLayout)},
		{"Active students", countCell(rep.ActiveStudents)},
		{"Students with gameboards", countCell(rep.StudentsWithGameboards)},
		{"Students completing all parts", countCell(rep.StudentsCompletingAll)},
	}
	for i, row := range counts {
		if err := setRow(f, sheet, 1, i+1, row); err != nil {
			return err
		}
	}

	tables := []struct {
		header []any
		rows   [][]string
	}{
		{[]any{"gameboards owned", "students"}, OwnedRows(rep.OwnedGameboards, bucketCap)},
		{[]any{"gameboards completed", "students"}, DistributionRows(rep.CompletedGameboards)},
		{[]any{"average completion %", "students"}, DistributionRows(rep.AverageCompletion)},
	}

	firstRow := len(counts) + 2
	for t, table := range tables {
		col := 1 + 3*t
		if err := setRow(f, sheet, col, firstRow, table.header); err != nil {
			return err
		}
		for i, row := range table.rows {
			if err := setRow(f, sheet, col, firstRow+1+i, []any{cellValue(row[0]), cellValue(row[1])}); err != nil {
				return err
			}
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, col, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func countCell(c stats.Count) any {
	if !c.Valid {
		return "n/a"
	}
	return c.Value
}

// cellValue stores numeric strings as numbers so spreadsheet formulas work.
func cellValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
