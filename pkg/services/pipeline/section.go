package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/report-atlas/pkg/chart"
	"github.com/de-tools/report-atlas/pkg/document"
	"github.com/rs/zerolog"
)

// Env is what a section may use while rendering.
type Env struct {
	// Charts is nil when the chart directory could not be created.
	Charts     *chart.Artifacts
	Renderer   chart.Renderer
	TableWidth float64
	Now        time.Time
}

// Section is one numbered part of a report.
type Section struct {
	// Title is added as a heading before the section's elements. An empty title adds none.
	Title  string
	Render func(ctx context.Context, env *Env) Result
}

// Result is the uniform output of a section: the elements to append and how many of them are
// placeholders.
type Result struct {
	Elements     []document.Element
	Placeholders int
}

// Degraded reports whether the section produced nothing but placeholders.
func (r Result) Degraded() bool {
	return len(r.Elements) > 0 && r.Placeholders == len(r.Elements)
}

// Unavailable is the result of a section whose precondition failed.
func Unavailable(format string, args ...any) Result {
	return Result{
		Elements:     []document.Element{document.Placeholder(fmt.Sprintf(format, args...))},
		Placeholders: 1,
	}
}

// Batch accumulates the elements of one section.
type Batch struct {
	ctx    context.Context
	env    *Env
	result Result
}

func NewBatch(ctx context.Context, env *Env) *Batch {
	return &Batch{ctx: ctx, env: env}
}

func (b *Batch) Add(elements ...document.Element) *Batch {
	for _, e := range elements {
		if e.Placeholder {
			b.result.Placeholders++
		}
		b.result.Elements = append(b.result.Elements, e)
	}
	return b
}

func (b *Batch) Paragraph(format string, args ...any) *Batch {
	return b.Add(document.Paragraph(fmt.Sprintf(format, args...)))
}

// Placeholder adds a placeholder and logs why the content is missing.
func (b *Batch) Placeholder(format string, args ...any) *Batch {
	text := fmt.Sprintf(format, args...)
	zerolog.Ctx(b.ctx).Warn().Str("placeholder", text).Msg("Section content unavailable")
	return b.Add(document.Placeholder(text))
}

func (b *Batch) Spacer(height float64) *Batch {
	return b.Add(document.Spacer(height))
}

// Table formats rows against the page width. Widths are in points.
func (b *Batch) Table(header []string, rows [][]any, widths []float64) *Batch {
	t, err := document.FormatTable(b.ctx, header, rows, widths, b.env.TableWidth)
	if err != nil {
		zerolog.Ctx(b.ctx).Warn().Err(err).Msg("Failed to format table")
		return b.Placeholder("[Table could not be generated]")
	}
	return b.Add(document.TableOf(t))
}

// Chart registers an artifact named name, draws it and adds the image. Width and height are in
// inches. Any failure adds a placeholder instead.
func (b *Batch) Chart(name string, width, height float64, draw func(fig chart.Figure) error) *Batch {
	if b.env.Charts == nil || b.env.Renderer == nil {
		return b.Placeholder("[Chart '%s' could not be generated]", name)
	}

	fig := chart.Figure{
		Path:   b.env.Charts.Path(name),
		Title:  name,
		Width:  width,
		Height: height,
	}
	if err := draw(fig); err != nil {
		zerolog.Ctx(b.ctx).Warn().Err(err).Str("chart", name).Msg("Failed to generate chart")
		return b.Placeholder("[Chart '%s' could not be generated]", name)
	}
	return b.Add(document.ImageOf(fig.Path, width*document.Inch, height*document.Inch))
}

func (b *Batch) Result() Result {
	return b.result
}
