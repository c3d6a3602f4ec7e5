package chart

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "last-academic-year.csv", want: "Last Academic Year"},
		{path: "/tmp/out/count/all-time.csv", want: "All Time"},
		{path: "ALL-TIME.csv", want: "All Time"},
		{path: "summary", want: "Summary"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromPath(tt.path))
		})
	}
}

func TestLoadPieAliases(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "export layout", body: "gameboards,count\ndone,3\nnot done,7\n"},
		{name: "breakdown layout", body: "range,count\ndone,3\nnot done,7\n"},
		{name: "renamed layout", body: "labels,sizes\ndone,3.0\nnot done,7.0\n"},
		{name: "index column", body: ",gameboards,count\n0,done,3\n1,not done,7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := LoadPie(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, []PieRecord{{Label: "done", Size: 3}, {Label: "not done", Size: 7}}, records)
		})
	}
}

func TestPieSlices(t *testing.T) {
	records, err := LoadPie(strings.NewReader("gameboards,count\ndone,3\nnot done,7\n"))
	require.NoError(t, err)

	slices, err := PieSlices(records)
	require.NoError(t, err)
	require.Len(t, slices, 2)

	assert.InDelta(t, 30.0, slices[0].Percent, 1e-9)
	assert.InDelta(t, 70.0, slices[1].Percent, 1e-9)
	assert.Equal(t, "done 30.0%", slices[0].Caption())
	assert.Equal(t, "not done 70.0%", slices[1].Caption())
}

func TestPieSlicesZeroTotal(t *testing.T) {
	_, err := PieSlices([]PieRecord{{Label: "a", Size: 0}, {Label: "b", Size: 0}})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		scatter bool
	}{
		{name: "empty file", body: ""},
		{name: "header only", body: "gameboards,count\n"},
		{name: "missing size column", body: "gameboards,total\na,1\n"},
		{name: "missing label column", body: "name,count\na,1\n"},
		{name: "not a number", body: "gameboards,count\na,many\n"},
		{name: "negative size", body: "gameboards,count\na,-1\n"},
		{name: "ragged row", body: "gameboards,count\na,1,2\n"},
		{name: "scatter missing x", body: "pct,count\n1,2\n", scatter: true},
		{name: "scatter bad y", body: "percentage,count\n1,two\n", scatter: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.scatter {
				_, err = LoadScatter(strings.NewReader(tt.body))
			} else {
				_, err = LoadPie(strings.NewReader(tt.body))
			}
			assert.True(t, errors.Is(err, ErrMalformedInput), "got %v", err)
		})
	}
}

func TestBuildScatter(t *testing.T) {
	records, err := LoadScatter(strings.NewReader("percentage,count\n0,120\n25,10\n50,100\n100,8\n"))
	require.NoError(t, err)

	s, err := BuildScatter(records)
	require.NoError(t, err)

	assert.Equal(t, []float64{25, 50}, s.X)
	require.Len(t, s.Y, 2)
	assert.InDelta(t, 1.0, s.Y[0], 1e-9)
	assert.InDelta(t, 2.0, s.Y[1], 1e-9)

	assert.Equal(t, "120 students attempt with little success.", s.Low.Caption)
	assert.Equal(t, 0.0, s.Low.X)
	assert.InDelta(t, math.Log10(120), s.Low.Y, 1e-9)

	assert.Equal(t, "8 students complete all their gameboards!", s.High.Caption)
	assert.Equal(t, 100.0, s.High.X)

	minX, maxX, minY, maxY := s.Bounds()
	assert.Equal(t, 0.0, minX)
	assert.Equal(t, 100.0, maxX)
	assert.InDelta(t, math.Log10(8), minY, 1e-9)
	assert.InDelta(t, math.Log10(120), maxY, 1e-9)
}

func TestBuildScatterRejects(t *testing.T) {
	_, err := BuildScatter([]ScatterRecord{{X: 0, Y: 1}, {X: 100, Y: 1}})
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = BuildScatter([]ScatterRecord{{X: 0, Y: 5}, {X: 50, Y: 0}, {X: 100, Y: 1}})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestParseGraph(t *testing.T) {
	g, err := ParseGraph("Scatter")
	require.NoError(t, err)
	assert.Equal(t, GraphScatter, g)

	_, err = ParseGraph("bar")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/all-time.SVG")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)

	f, err = FormatFromPath("out/all-time.png")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = FormatFromPath("out/all-time.jpg")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("charts", "all-time-complete.png"), OutputPath("charts", "data/all-time.csv", GraphPie, FormatPNG))
	assert.Equal(t, filepath.Join("charts", "all-time.svg"), OutputPath("charts", "data/all-time.csv", GraphScatter, FormatSVG))
}

func TestRenderPieToBuffer(t *testing.T) {
	r := NewRenderer(640, 480, nil)
	slices, err := PieSlices([]PieRecord{{Label: "done", Size: 3}, {Label: "not done", Size: 7}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Pie(&buf, FormatSVG, "All Time", slices))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "done 30.0%")
}

func TestRenderFilePie(t *testing.T) {
	input := writeCSV(t, "last-academic-year.csv", "gameboards,count\n1,12\n2,5\n5+,1\n")
	output := OutputPath(t.TempDir(), input, GraphPie, FormatPNG)

	require.NoError(t, NewRenderer(640, 480, nil).RenderFile(GraphPie, input, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "expected a PNG image")
}

func TestRenderFileScatter(t *testing.T) {
	input := writeCSV(t, "all-time.csv", "percentage,count\n0,40\n12.5,3\n50,9\n75,2\n100,6\n")
	output := filepath.Join(t.TempDir(), "charts", "all-time.svg")

	require.NoError(t, NewRenderer(800, 600, nil).RenderFile(GraphScatter, input, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), "6 students complete all their gameboards!")
}

func TestRenderFileMalformedLeavesNoOutput(t *testing.T) {
	input := writeCSV(t, "bad.csv", "percentage,count\n0,1\n100,1\n")
	output := filepath.Join(t.TempDir(), "bad.png")

	err := NewRenderer(640, 480, nil).RenderFile(GraphScatter, input, output)
	assert.ErrorIs(t, err, ErrMalformedInput)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSummarize(t *testing.T) {
	sums, err := Summarize(strings.NewReader("range,count\nNo Gameboard,5\nNo Attempt,3\nComplete Some,1\nComplete All,1\n"))
	require.NoError(t, err)
	require.Len(t, sums, 2)

	assert.Equal(t, "range", sums[0].Name)
	assert.False(t, sums[0].Numeric)
	assert.Equal(t, ColumnSum{Name: "count", Sum: 10, Numeric: true}, sums[1])
}
