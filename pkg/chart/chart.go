package chart

import (
	"errors"
	"image/color"
	"time"
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("chart series is empty")

// Figure describes the image to produce. Width and Height are in inches.
type Figure struct {
	Path   string
	Title  string
	XLabel string
	YLabel string
	Width  float64
	Height float64
}

// Slice is one pie segment.
type Slice struct {
	Label string
	Value float64
}

// Group is one box of a box plot.
type Group struct {
	Label  string
	Values []float64
}

// Word is one word cloud entry.
type Word struct {
	Text   string
	Weight float64
}

// Renderer draws the charts used in reports. Every method writes exactly one PNG to fig.Path.
type Renderer interface {
	Line(fig Figure, xs []time.Time, ys []float64) error
	Bars(fig Figure, labels []string, values []float64) error
	Histogram(fig Figure, values []float64, bins int) error
	Pie(fig Figure, slices []Slice) error
	BoxPlot(fig Figure, groups []Group) error
	WordCloud(fig Figure, words []Word) error
}

var palette = []color.RGBA{
	{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff},
	{R: 0xdd, G: 0x84, B: 0x52, A: 0xff},
	{R: 0x55, G: 0xa8, B: 0x68, A: 0xff},
	{R: 0xc4, G: 0x4e, B: 0x52, A: 0xff},
	{R: 0x81, G: 0x72, B: 0xb3, A: 0xff},
	{R: 0x93, G: 0x78, B: 0x60, A: 0xff},
	{R: 0xda, G: 0x8b, B: 0xc3, A: 0xff},
	{R: 0x8c, G: 0x8c, B: 0x8c, A: 0xff},
}

func paletteColor(i int) color.RGBA {
	return palette[i%len(palette)]
}
