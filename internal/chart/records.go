// Package chart turns the CSV summaries written by export into pie and scatter
// charts.
package chart

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedInput is returned for CSV input that cannot be plotted.
var ErrMalformedInput = errors.New("malformed chart input")

// Column names accepted for each layout, in order of preference.
var (
	pieLabelColumns = []string{"gameboards", "range", "labels"}
	pieSizeColumns  = []string{"count", "sizes"}
	scatterXColumns = []string{"percentage", "x"}
	scatterYColumns = []string{"count", "y"}
)

// PieRecord is one row of a pie layout CSV.
type PieRecord struct {
	Label string
	Size  float64
}

// ScatterRecord is one row of a scatter layout CSV.
type ScatterRecord struct {
	X float64
	Y float64
}

// table is a parsed CSV with a header row.
type table struct {
	header []string
	rows   [][]string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedInput)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return &table{header: header, rows: records[1:]}, nil
}

// column returns the index of the first header matching one of names.
func (t *table) column(names ...string) (int, error) {
	for _, name := range names {
		for i, h := range t.header {
			if h == name {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: missing column %s", ErrMalformedInput, strings.Join(names, "|"))
}

func (t *table) float(row, col int) (float64, error) {
	raw := strings.TrimSpace(t.rows[row][col])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// row numbers are 1-based and count the header
		return 0, fmt.Errorf("%w: line %d: %s %q is not a number", ErrMalformedInput, row+2, t.header[col], raw)
	}
	return v, nil
}

// LoadPie reads a pie layout CSV.
func LoadPie(r io.Reader) ([]PieRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	labelCol, err := t.column(pieLabelColumns...)
	if err != nil {
		return nil, err
	}
	sizeCol, err := t.column(pieSizeColumns...)
	if err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedInput)
	}

	records := make([]PieRecord, 0, len(t.rows))
	for i, row := range t.rows {
		size, err := t.float(i, sizeCol)
		if err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: line %d: negative size %v", ErrMalformedInput, i+2, size)
		}
		records = append(records, PieRecord{Label: strings.TrimSpace(row[labelCol]), Size: size})
	}
	return records, nil
}

// LoadScatter reads a scatter layout CSV.
func LoadScatter(r io.Reader) ([]ScatterRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	xCol, err := t.column(scatterXColumns...)
	if err != nil {
		return nil, err
	}
	yCol, err := t.column(scatterYColumns...)
	if err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedInput)
	}

	records := make([]ScatterRecord, 0, len(t.rows))
	for i := range t.rows {
		x, err := t.float(i, xCol)
		if err != nil {
			return nil, err
		}
		y, err := t.float(i, yCol)
		if err != nil {
			return nil, err
		}
		records = append(records, ScatterRecord{X: x, Y: y})
	}
	return records, nil
}

// LoadPieFile reads a pie layout CSV from path.
func LoadPieFile(path string) ([]PieRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart input: %w", err)
	}
	defer f.Close()
	return LoadPie(f)
}

// LoadScatterFile reads a scatter layout CSV from path.
func LoadScatterFile(path string) ([]ScatterRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart input: %w", err)
	}
	defer f.Close()
	return LoadScatter(f)
}
