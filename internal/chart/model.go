package chart

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// Chart headings.
const (
	PieHeading     = "Number of Student Made Gameboards Completed"
	ScatterHeading = "Number of Students Against Gameboard Completion"

	XAxisName = "Percentage Complete"
	YAxisName = "Log Number of Students"
)

// TitleFromPath derives a chart title from an input file name:
// "last-academic-year.csv" becomes "Last Academic Year".
func TitleFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.Fields(strings.ReplaceAll(base, "-", " "))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// Slice is one wedge of a pie chart.
type Slice struct {
	Label   string
	Size    float64
	Percent float64
}

// Caption is the wedge label, e.g. "done 30.0%".
func (s Slice) Caption() string {
	return fmt.Sprintf("%s %.1f%%", s.Label, s.Percent)
}

// PieSlices computes each record's share of the total.
func PieSlices(records []PieRecord) ([]Slice, error) {
	var total float64
	for _, r := range records {
		total += r.Size
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: sizes sum to zero", ErrMalformedInput)
	}

	slices := make([]Slice, 0, len(records))
	for _, r := range records {
		slices = append(slices, Slice{Label: r.Label, Size: r.Size, Percent: 100 * r.Size / total})
	}
	return slices, nil
}

// Marker is a highlighted scatter point with a caption.
type Marker struct {
	X        float64
	Y        float64 // log10 of Students
	Students float64
	Caption  string
}

// Scatter is the plotted form of a scatter CSV. X and Y hold the interior rows
// with y on a log10 scale. The first and last rows become markers.
type Scatter struct {
	X    []float64
	Y    []float64
	Low  Marker
	High Marker
}

// BuildScatter requires at least three rows, all with a positive y.
func BuildScatter(records []ScatterRecord) (*Scatter, error) {
	if len(records) < 3 {
		return nil, fmt.Errorf("%w: scatter needs at least 3 rows, got %d", ErrMalformedInput, len(records))
	}
	for i, r := range records {
		if r.Y <= 0 {
			return nil, fmt.Errorf("%w: row %d: count must be positive on a log scale", ErrMalformedInput, i+1)
		}
	}

	interior := records[1 : len(records)-1]
	s := &Scatter{
		X: make([]float64, 0, len(interior)),
		Y: make([]float64, 0, len(interior)),
	}
	for _, r := range interior {
		s.X = append(s.X, r.X)
		s.Y = append(s.Y, math.Log10(r.Y))
	}

	first, last := records[0], records[len(records)-1]
	s.Low = Marker{
		X:        first.X,
		Y:        math.Log10(first.Y),
		Students: first.Y,
		Caption:  formatStudents(first.Y) + " students attempt with little success.",
	}
	s.High = Marker{
		X:        last.X,
		Y:        math.Log10(last.Y),
		Students: last.Y,
		Caption:  formatStudents(last.Y) + " students complete all their gameboards!",
	}
	return s, nil
}

// Bounds returns the data extent over every point and marker.
func (s *Scatter) Bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = s.Low.X, s.Low.X
	minY, maxY = s.Low.Y, s.Low.Y
	xs := append(append([]float64{}, s.X...), s.High.X)
	ys := append(append([]float64{}, s.Y...), s.High.Y)
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	return minX, maxX, minY, maxY
}

func formatStudents(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
