package chart

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Graph selects the chart type.
type Graph string

const (
	GraphPie     Graph = "pie"
	GraphScatter Graph = "scatter"
)

// ParseGraph validates a graph name.
func ParseGraph(s string) (Graph, error) {
	switch g := Graph(strings.ToLower(s)); g {
	case GraphPie, GraphScatter:
		return g, nil
	default:
		return "", fmt.Errorf("invalid graph type: %s (must be scatter or pie)", s)
	}
}

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// FormatFromPath picks the image format from the output file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (must be png or svg)", ext)
	}
}

func (f Format) provider() gochart.RendererProvider {
	if f == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// OutputPath names the image for input inside dir. Pie charts get a
// "-complete" suffix.
func OutputPath(dir, input string, g Graph, f Format) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if g == GraphPie {
		base += "-complete"
	}
	return filepath.Join(dir, base+"."+string(f))
}

// Renderer draws charts with go-chart.
type Renderer struct {
	Width  int
	Height int
	Logger *slog.Logger
}

// NewRenderer creates a renderer producing images of the given size.
func NewRenderer(width, height int, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{Width: width, Height: height, Logger: logger}
}

// Pie renders slices as a pie chart.
func (r *Renderer) Pie(w io.Writer, f Format, title string, slices []Slice) error {
	values := make([]gochart.Value, 0, len(slices))
	for _, s := range slices {
		values = append(values, gochart.Value{Label: s.Caption(), Value: s.Size})
	}

	pie := gochart.PieChart{
		Title:  PieHeading + ": " + title,
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}
	if err := pie.Render(f.provider(), w); err != nil {
		return fmt.Errorf("rendering pie chart: %w", err)
	}
	return nil
}

func markerStyle(c drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    6,
		DotColor:    c,
	}
}

// Scatter renders s with completion percentage on x and log10 students on y.
func (r *Renderer) Scatter(w io.Writer, f Format, title string, s *Scatter) error {
	minX, maxX, minY, maxY := s.Bounds()
	padX := pad(minX, maxX)
	padY := pad(minY, maxY)

	series := []gochart.Series{
		gochart.ContinuousSeries{
			Name: "students",
			Style: gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotWidth:    4,
				DotColor:    gochart.ColorBlue,
			},
			XValues: s.X,
			YValues: s.Y,
		},
		gochart.ContinuousSeries{
			Name:    "little success",
			Style:   markerStyle(gochart.ColorRed),
			XValues: []float64{s.Low.X},
			YValues: []float64{s.Low.Y},
		},
		gochart.ContinuousSeries{
			Name:    "all complete",
			Style:   markerStyle(gochart.ColorGreen),
			XValues: []float64{s.High.X},
			YValues: []float64{s.High.Y},
		},
		gochart.AnnotationSeries{
			Annotations: []gochart.Value2{
				{XValue: s.Low.X, YValue: s.Low.Y, Label: s.Low.Caption},
				{XValue: s.High.X, YValue: s.High.Y, Label: s.High.Caption},
			},
		},
	}

	ch := gochart.Chart{
		Title:  ScatterHeading + ": " + title,
		Width:  r.Width,
		Height: r.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:  XAxisName,
			Range: &gochart.ContinuousRange{Min: minX - padX, Max: maxX + padX},
		},
		YAxis: gochart.YAxis{
			Name:  YAxisName,
			Range: &gochart.ContinuousRange{Min: minY - padY, Max: maxY + padY},
		},
		Series: series,
	}
	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("rendering scatter chart: %w", err)
	}
	return nil
}

// pad widens an axis by 5% each side, or by 1 when all values coincide.
func pad(min, max float64) float64 {
	if max == min {
		return 1
	}
	return (max - min) * 0.05
}

// RenderFile loads input, builds the requested chart and writes it to output.
// The output format follows the output file extension.
func (r *Renderer) RenderFile(g Graph, input, output string) error {
	f, err := FormatFromPath(output)
	if err != nil {
		return err
	}
	title := TitleFromPath(input)

	var draw func(io.Writer) error
	switch g {
	case GraphPie:
		records, err := LoadPieFile(input)
		if err != nil {
			return err
		}
		slices, err := PieSlices(records)
		if err != nil {
			return err
		}
		draw = func(w io.Writer) error { return r.Pie(w, f, title, slices) }
	case GraphScatter:
		records, err := LoadScatterFile(input)
		if err != nil {
			return err
		}
		s, err := BuildScatter(records)
		if err != nil {
			return err
		}
		draw = func(w io.Writer) error { return r.Scatter(w, f, title, s) }
	default:
		return fmt.Errorf("invalid graph type: %s", g)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := draw(out); err != nil {
		out.Close()
		os.Remove(output)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	r.Logger.Info("chart written", "graph", string(g), "title", title, "output", output)
	return nil
}
