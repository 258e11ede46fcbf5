// Package chartexport renders the dashboard series to a PNG image.
package chartexport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"netmonlabs/netmon/internal/aggregate"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when every series is empty.
var ErrNoData = errors.New("chartexport: no telemetry to plot")

// Default image size in pixels.
const (
	DefaultWidth  = 1200
	DefaultHeight = 600
)

// maxTicks bounds the number of x-axis labels so they stay readable.
const maxTicks = 10

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  int
	Height int
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotWidth:    3,
		DotColor:    col,
	}
}

// Render draws the status and performance series on the primary axis and
// the anomaly count on the secondary axis, writing a PNG to w.
func Render(w io.Writer, res aggregate.Result, opts Options) error {
	if len(res.Status) == 0 && len(res.Anomalies) == 0 && len(res.Performance) == 0 {
		return ErrNoData
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	anomalies := continuous("Anomalies", res.Anomalies, chart.ColorRed)
	anomalies.YAxis = chart.YAxisSecondary

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Time", Ticks: ticks(longest(res))},
		YAxis: chart.YAxis{
			Name:  "Value",
			Range: &chart.ContinuousRange{Min: 0, Max: max(100, peak(res.Status), peak(res.Performance))},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Anomalies",
			Range: &chart.ContinuousRange{Min: 0, Max: max(1, peak(res.Anomalies))},
		},
		Series: []chart.Series{
			continuous("Status (avg)", res.Status, chart.ColorBlue),
			continuous("Performance (max)", res.Performance, chart.ColorGreen),
			anomalies,
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chartexport: render failed: %w", err)
	}
	return nil
}

// WriteFile renders to path, creating the parent directory.
func WriteFile(path string, res aggregate.Result, opts Options) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("chartexport: failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chartexport: failed to create %s: %w", path, err)
	}
	if err := Render(f, res, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// continuous maps a series onto x = bucket index. go-chart needs two x
// values to form a range, so a single point is repeated.
func continuous(name string, s aggregate.Series, col drawing.Color) chart.ContinuousSeries {
	xs := make([]float64, 0, len(s)+1)
	ys := make([]float64, 0, len(s)+1)
	for i, p := range s {
		xs = append(xs, float64(i))
		ys = append(ys, p.Value)
	}
	switch len(s) {
	case 0:
		xs, ys = []float64{0, 1}, []float64{0, 0}
	case 1:
		xs = append(xs, 1)
		ys = append(ys, ys[0])
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: lineStyle(col)}
}

// peak is the largest value in s, or 0. Fixed axis ranges keep go-chart from
// rejecting flat series.
func peak(s aggregate.Series) float64 {
	var m float64
	for _, p := range s {
		m = max(m, p.Value)
	}
	return m
}

func longest(res aggregate.Result) aggregate.Series {
	out := res.Status
	for _, s := range []aggregate.Series{res.Anomalies, res.Performance} {
		if len(s) > len(out) {
			out = s
		}
	}
	return out
}

// ticks labels the x axis with bucket keys, thinned to at most maxTicks.
func ticks(s aggregate.Series) []chart.Tick {
	if len(s) < 2 {
		return nil
	}
	step := (len(s) + maxTicks - 1) / maxTicks
	var out []chart.Tick
	for i := 0; i < len(s); i += step {
		out = append(out, chart.Tick{Value: float64(i), Label: s[i].Time})
	}
	return out
}
