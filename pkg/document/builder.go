package document

import (
	"context"

	"github.com/rs/zerolog"
)

// Builder owns the element sequence of one document until it is sealed.
type Builder struct {
	ctx context.Context

	elements []Element
	sealed   bool
}

func NewBuilder(ctx context.Context) *Builder {
	return &Builder{ctx: ctx}
}

// Add appends elements. Appends after Document are ignored.
func (b *Builder) Add(elements ...Element) *Builder {
	if b.sealed {
		zerolog.Ctx(b.ctx).Warn().Int("elements", len(elements)).Msg("Document already built, ignoring appended elements")
		return b
	}
	for _, e := range elements {
		b.elements = append(b.elements, e.clone())
	}
	return b
}

func (b *Builder) Title(text string) *Builder { return b.Add(Title(text)) }
func (b *Builder) Heading(text string) *Builder { return b.Add(Heading(text)) }
func (b *Builder) Paragraph(text string) *Builder { return b.Add(Paragraph(text)) }
func (b *Builder) Table(t Table) *Builder { return b.Add(TableOf(t)) }
func (b *Builder) PageBreak() *Builder { return b.Add(PageBreak()) }
func (b *Builder) Spacer(height float64) *Builder { return b.Add(Spacer(height)) }
func (b *Builder) Placeholder(text string) *Builder { return b.Add(Placeholder(text)) }

func (b *Builder) Image(path string, width, height float64) *Builder {
	return b.Add(ImageOf(path, width, height))
}

// Len returns the number of elements added so far.
func (b *Builder) Len() int {
	return len(b.elements)
}

// Elements returns a copy of the current sequence.
func (b *Builder) Elements() []Element {
	return cloneAll(b.elements)
}

// Document seals the builder and hands the sequence over.
func (b *Builder) Document() Document {
	b.sealed = true
	return Document{elements: cloneAll(b.elements)}
}

// Document is a sealed element sequence ready to be written.
type Document struct {
	elements []Element
}

// Elements returns a copy of the document's elements.
func (d Document) Elements() []Element {
	return cloneAll(d.elements)
}

func (d Document) Len() int {
	return len(d.elements)
}

func cloneAll(elements []Element) []Element {
	out := make([]Element, len(elements))
	for i, e := range elements {
		out[i] = e.clone()
	}
	return out
}
