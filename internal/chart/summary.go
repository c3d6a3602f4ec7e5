package chart

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ColumnSum is the total of one CSV column. Numeric is false when any value in
// the column failed to parse, in which case Sum is meaningless.
type ColumnSum struct {
	Name    string
	Sum     float64
	Numeric bool
}

// Summarize sums every column of a CSV with a header row. It is used to check
// that exported summaries add up to the expected student totals.
func Summarize(r io.Reader) ([]ColumnSum, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}

	sums := make([]ColumnSum, len(t.header))
	for i, h := range t.header {
		sums[i] = ColumnSum{Name: h, Numeric: true}
	}
	for _, row := range t.rows {
		for i := range sums {
			if !sums[i].Numeric {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				sums[i].Numeric = false
				sums[i].Sum = 0
				continue
			}
			sums[i].Sum += v
		}
	}
	return sums, nil
}

// SummarizeFile runs Summarize over the CSV at path.
func SummarizeFile(path string) ([]ColumnSum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Summarize(f)
}
