package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/swamp-dev/boardstats/internal/stats"
)

func sampleReport(name string, complete bool) *stats.Report {
	rep := &stats.Report{
		Range: stats.DateRange{
			Name:  name,
			Start: time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		ActiveStudents:         stats.Some(10),
		StudentsWithGameboards: stats.Some(5),
		StudentsCompletingAll:  stats.Some(2),
		AverageCompletion:      stats.Distribution{100: 1, 0: 2, 50: 2},
		CompletedGameboards:    stats.Distribution{1: 2},
		OwnedGameboards:        stats.Distribution{1: 2, 2: 1, 6: 1, 9: 1},
	}
	if !complete {
		rep.StudentsCompletingAll = stats.Count{}
	}
	return rep
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOwnedRows(t *testing.T) {
	d := stats.Distribution{1: 2, 2: 1, 4: 3, 5: 1, 9: 2}

	assert.Equal(t, [][]string{
		{"1", "2"}, {"2", "1"}, {"4", "3"}, {"5+", "3"},
	}, OwnedRows(d, 4))

	assert.Equal(t, [][]string{
		{"1", "2"}, {"2", "1"}, {"4", "3"}, {"5", "1"}, {"9", "2"},
	}, OwnedRows(d, 0))

	assert.Equal(t, [][]string{{"1", "2"}, {"2", "1"}}, OwnedRows(stats.Distribution{1: 2, 2: 1}, 4))
}

func TestDistributionRowsOrdered(t *testing.T) {
	rows := DistributionRows(stats.Distribution{100: 1, 33.33: 4, 0: 7})
	assert.Equal(t, [][]string{{"0", "7"}, {"33.33", "4"}, {"100", "1"}}, rows)
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, 4, nil)

	written, err := e.WriteReport(sampleReport("Last Academic Year", true))
	require.NoError(t, err)
	assert.Len(t, written, 4)

	assert.Equal(t, "gameboards,count\n1,2\n2,1\n5+,2\n",
		readFile(t, filepath.Join(dir, DirGameboardCount, "last-academic-year.csv")))
	assert.Equal(t, "gameboards,count\n1,2\n",
		readFile(t, filepath.Join(dir, DirGameboardCompletion, "last-academic-year.csv")))
	assert.Equal(t, "percentage,count\n0,2\n50,2\n100,1\n",
		readFile(t, filepath.Join(dir, DirPercentage, "last-academic-year.csv")))
	assert.Equal(t, "range,count\nNo Gameboard,5\nNo Attempt,3\nComplete Some,1\nComplete All,1\n",
		readFile(t, filepath.Join(dir, DirCount, "last-academic-year.csv")))
}

func TestWriteReportIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, 4, nil)
	rep := sampleReport("All Time", true)

	_, err := e.WriteReport(rep)
	require.NoError(t, err)
	first := readFile(t, filepath.Join(dir, DirPercentage, "all-time.csv"))

	_, err = e.WriteReport(rep)
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, filepath.Join(dir, DirPercentage, "all-time.csv")))
}

func TestWriteReportSkipsBreakdownWhenIncomplete(t *testing.T) {
	dir := t.TempDir()

	written, err := New(dir, 4, nil).WriteReport(sampleReport("All Time", false))
	require.NoError(t, err)
	assert.Len(t, written, 3)

	_, err = os.Stat(filepath.Join(dir, DirCount, "all-time.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Last Academic Year", SheetName("Last Academic Year"))
	assert.Equal(t, "2023-09-01 to 2023-10-01", SheetName("2023-09-01 to 2023-10-01"))
	assert.Equal(t, "a-b (c)", SheetName("a/b [c]"))
	assert.Equal(t, "report", SheetName("  "))
	assert.Len(t, SheetName("A very long range name that keeps going"), 31)
}

func TestWriteWorkbook(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := New(dir, 4, nil)

	path, err := e.WriteWorkbook([]*stats.Report{
		sampleReport("Last Academic Year", true),
		sampleReport("All Time", false),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, WorkbookName), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Last Academic Year", "All Time"}, f.GetSheetList())

	active, err := f.GetCellValue("Last Academic Year", "B4")
	require.NoError(t, err)
	assert.Equal(t, "10", active)

	missing, err := f.GetCellValue("All Time", "B6")
	require.NoError(t, err)
	assert.Equal(t, "n/a", missing)

	header, err := f.GetCellValue("Last Academic Year", "A8")
	require.NoError(t, err)
	assert.Equal(t, "gameboards owned", header)

	overflow, err := f.GetCellValue("Last Academic Year", "A11")
	require.NoError(t, err)
	assert.Equal(t, "5+", overflow)

	pct, err := f.GetCellValue("Last Academic Year", "G10")
	require.NoError(t, err)
	assert.Equal(t, "50", pct)
}

func TestWriteWorkbookNeedsReports(t *testing.T) {
	_, err := New(t.TempDir(), 4, nil).WriteWorkbook(nil)
	assert.Error(t, err)
}
