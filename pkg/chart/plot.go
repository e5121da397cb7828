package chart

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotRenderer is the default Renderer. Axis charts are drawn with gonum/plot, pies with
// go-chart and word clouds with gg.
type PlotRenderer struct {
	// MaxWords caps the words placed in a word cloud (default: 100)
	MaxWords int
}

// NewPlotRenderer returns a renderer with default settings.
func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{MaxWords: 100}
}

func newPlot(fig Figure) *plot.Plot {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, fig Figure) error {
	w, h := fig.Width, fig.Height
	if w <= 0 {
		w = 6
	}
	if h <= 0 {
		h = 3.5
	}
	if err := p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, fig.Path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", fig.Path, err)
	}
	return nil
}

func finite(values []float64) plotter.Values {
	out := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Line draws a time series with markers.
func (r *PlotRenderer) Line(fig Figure, xs []time.Time, ys []float64) error {
	n := min(len(xs), len(ys))
	if n == 0 {
		return ErrEmptySeries
	}

	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = float64(xs[i].Unix())
		pts[i].Y = ys[i]
	}

	p := newPlot(fig)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("failed to build line: %w", err)
	}
	line.Color = paletteColor(0)
	points.Color = paletteColor(0)
	p.Add(line, points)
	return save(p, fig)
}

// Bars draws one bar per label.
func (r *PlotRenderer) Bars(fig Figure, labels []string, values []float64) error {
	n := min(len(labels), len(values))
	if n == 0 {
		return ErrEmptySeries
	}

	width := vg.Length(fig.Width) * vg.Inch * 0.6 / vg.Length(n)
	if width <= 0 {
		width = vg.Points(20)
	}
	bars, err := plotter.NewBarChart(plotter.Values(values[:n]), width)
	if err != nil {
		return fmt.Errorf("failed to build bars: %w", err)
	}
	bars.Color = paletteColor(0)
	bars.LineStyle.Width = vg.Length(0)

	p := newPlot(fig)
	p.Add(bars)
	p.NominalX(labels[:n]...)
	p.Y.Min = 0
	return save(p, fig)
}

// Histogram draws the distribution of values over the given number of bins.
func (r *PlotRenderer) Histogram(fig Figure, values []float64, bins int) error {
	vs := finite(values)
	if len(vs) == 0 {
		return ErrEmptySeries
	}
	if bins < 1 {
		bins = 1
	}

	h, err := plotter.NewHist(vs, bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	h.FillColor = paletteColor(0)

	p := newPlot(fig)
	p.Add(h)
	return save(p, fig)
}

// BoxPlot draws one box per non-empty group.
func (r *PlotRenderer) BoxPlot(fig Figure, groups []Group) error {
	p := newPlot(fig)
	var names []string
	for _, g := range groups {
		vs := finite(g.Values)
		if len(vs) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(len(names)), vs)
		if err != nil {
			return fmt.Errorf("failed to build box for %s: %w", g.Label, err)
		}
		box.FillColor = paletteColor(len(names))
		p.Add(box)
		names = append(names, g.Label)
	}
	if len(names) == 0 {
		return ErrEmptySeries
	}
	p.NominalX(names...)
	return save(p, fig)
}
