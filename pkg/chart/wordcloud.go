package chart

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	minFontSize = 12.0
	maxFontSize = 64.0
	spiralSteps = 2000
)

type box struct{ x0, y0, x1, y1 float64 }

func (b box) overlaps(o box) bool {
	return b.x0 < o.x1 && o.x0 < b.x1 && b.y0 < o.y1 && o.y0 < b.y1
}

// WordCloud places the heaviest words first along an Archimedean spiral from the centre. Words
// that do not fit are skipped.
func (r *PlotRenderer) WordCloud(fig Figure, words []Word) error {
	ws := make([]Word, 0, len(words))
	for _, w := range words {
		if w.Text != "" && w.Weight > 0 {
			ws = append(ws, w)
		}
	}
	if len(ws) == 0 {
		return ErrEmptySeries
	}
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].Weight > ws[j].Weight })
	if r.MaxWords > 0 && len(ws) > r.MaxWords {
		ws = ws[:r.MaxWords]
	}

	ft, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse word cloud font: %w", err)
	}

	w, h := fig.Width*pixelsPerInch, fig.Height*pixelsPerInch
	if w <= 0 || h <= 0 {
		w, h = 800, 400
	}
	dc := gg.NewContext(int(w), int(h))
	dc.SetColor(color.White)
	dc.Clear()

	top := ws[0].Weight
	var placed []box
	for i, word := range ws {
		size := minFontSize + (maxFontSize-minFontSize)*math.Sqrt(word.Weight/top)
		dc.SetFontFace(truetype.NewFace(ft, &truetype.Options{Size: size}))
		tw, th := dc.MeasureString(word.Text)

		for step := 0; step < spiralSteps; step++ {
			angle := float64(step) * 0.1
			radius := 2 * angle
			cx := w/2 + radius*math.Cos(angle)
			cy := h/2 + radius*math.Sin(angle)*h/w
			b := box{x0: cx - tw/2 - 2, y0: cy - th/2 - 2, x1: cx + tw/2 + 2, y1: cy + th/2 + 2}
			if b.x0 < 0 || b.y0 < 0 || b.x1 > w || b.y1 > h || collides(b, placed) {
				continue
			}
			dc.SetColor(paletteColor(i))
			dc.DrawStringAnchored(word.Text, cx, cy, 0.5, 0.5)
			placed = append(placed, b)
			break
		}
	}

	if fig.Title != "" {
		dc.SetFontFace(truetype.NewFace(ft, &truetype.Options{Size: 16}))
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(fig.Title, w/2, 14, 0.5, 0.5)
	}

	if err := dc.SavePNG(fig.Path); err != nil {
		return fmt.Errorf("failed to save word cloud %s: %w", fig.Path, err)
	}
	return nil
}

func collides(b box, placed []box) bool {
	for _, p := range placed {
		if b.overlaps(p) {
			return true
		}
	}
	return false
}
