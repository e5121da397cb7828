package document

import "strings"

// Kind tags the variant held by an Element.
type Kind int

const (
	KindTitle Kind = iota
	KindHeading
	KindParagraph
	KindTable
	KindImage
	KindPageBreak
	KindSpacer
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	case KindPageBreak:
		return "page_break"
	case KindSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Table is a formatted table. Every row has len(Header) cells and Widths are in points.
type Table struct {
	Header []string
	Rows   [][]string
	Widths []float64
}

// Image references a chart file. Width and Height bound the drawn size in points.
type Image struct {
	Path   string
	Width  float64
	Height float64
}

// Element is one block of the document. Text may carry <b>, <i> and <br> markup.
type Element struct {
	Kind        Kind
	Text        string
	Table       *Table
	Image       *Image
	Height      float64
	Placeholder bool
}

func Title(text string) Element {
	return Element{Kind: KindTitle, Text: text}
}

func Heading(text string) Element {
	return Element{Kind: KindHeading, Text: text}
}

func Paragraph(text string) Element {
	return Element{Kind: KindParagraph, Text: text}
}

// Placeholder stands in for content that could not be produced.
func Placeholder(text string) Element {
	return Element{Kind: KindParagraph, Text: text, Placeholder: true}
}

func TableOf(t Table) Element {
	return Element{Kind: KindTable, Table: &t}
}

func ImageOf(path string, width, height float64) Element {
	return Element{Kind: KindImage, Image: &Image{Path: path, Width: width, Height: height}}
}

func Spacer(height float64) Element {
	return Element{Kind: KindSpacer, Height: height}
}

func PageBreak() Element {
	return Element{Kind: KindPageBreak}
}

var markup = strings.NewReplacer("<", "‹", ">", "›")

// Plain neutralises markup characters in text that comes from the data.
func Plain(text string) string {
	return markup.Replace(text)
}

func (e Element) clone() Element {
	if e.Table != nil {
		t := Table{
			Header: append([]string(nil), e.Table.Header...),
			Widths: append([]float64(nil), e.Table.Widths...),
			Rows:   make([][]string, len(e.Table.Rows)),
		}
		for i, row := range e.Table.Rows {
			t.Rows[i] = append([]string(nil), row...)
		}
		e.Table = &t
	}
	if e.Image != nil {
		img := *e.Image
		e.Image = &img
	}
	return e
}
