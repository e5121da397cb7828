package chart

import (
	"fmt"
	"os"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const pixelsPerInch = 96

// Pie draws the positive slices as a pie chart with labels.
func (r *PlotRenderer) Pie(fig Figure, slices []Slice) error {
	values := make([]gochart.Value, 0, len(slices))
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		c := paletteColor(len(values))
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%.0f)", s.Label, s.Value),
			Value: s.Value,
			Style: gochart.Style{
				FillColor:   drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A},
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			},
		})
	}
	if len(values) == 0 {
		return ErrEmptySeries
	}

	side := fig.Width
	if fig.Height > 0 && fig.Height < side {
		side = fig.Height
	}
	if side <= 0 {
		side = 5
	}

	pie := gochart.PieChart{
		Title:  fig.Title,
		Width:  int(side * pixelsPerInch),
		Height: int(side * pixelsPerInch),
		Values: values,
	}

	f, err := os.Create(fig.Path)
	if err != nil {
		return fmt.Errorf("failed to create chart %s: %w", fig.Path, err)
	}
	if err := pie.Render(gochart.PNG, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render pie %s: %w", fig.Path, err)
	}
	return f.Close()
}
