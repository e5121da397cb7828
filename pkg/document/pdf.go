package document

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
)

// Inch in points.
const Inch = 72.0

// Layout is the fixed page geometry in points.
type Layout struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

// A4 portrait with half inch margins.
func DefaultLayout() Layout {
	return Layout{PageWidth: 595.28, PageHeight: 841.89, Margin: 0.5 * Inch}
}

// AvailableWidth is the width between the margins.
func (l Layout) AvailableWidth() float64 {
	return l.PageWidth - 2*l.Margin
}

// AvailableHeight is the height between the margins.
func (l Layout) AvailableHeight() float64 {
	return l.PageHeight - 2*l.Margin
}

// Writer turns a sealed document into a file.
type Writer interface {
	Write(ctx context.Context, doc Document, path string) error
}

const (
	fontFamily      = "Helvetica"
	bodySize        = 10.0
	lineHeight      = 13.0
	cellPadding     = 3.0
	tableFontSize   = 8.0
	tableLineHeight = 10.0
)

// PDFWriter renders documents with fpdf.
type PDFWriter struct {
	Layout Layout
}

func NewPDFWriter() *PDFWriter {
	return &PDFWriter{Layout: DefaultLayout()}
}

type pdfPage struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	layout Layout
	log    *zerolog.Logger
}

func (w *PDFWriter) Write(ctx context.Context, doc Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	l := w.Layout
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)
	pdf.SetAutoPageBreak(true, l.Margin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-l.Margin + 6)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	page := &pdfPage{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		layout: l,
		log:    zerolog.Ctx(ctx),
	}
	for _, e := range doc.Elements() {
		page.render(e)
		if pdf.Err() {
			return fmt.Errorf("failed to render %s element: %w", e.Kind, pdf.Error())
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}

func (p *pdfPage) render(e Element) {
	pdf := p.pdf
	pdf.SetTextColor(0, 0, 0)

	switch e.Kind {
	case KindTitle:
		pdf.SetFont(fontFamily, "B", 20)
		pdf.MultiCell(0, 26, p.tr(e.Text), "", "C", false)
		pdf.Ln(10)
	case KindHeading:
		pdf.Ln(6)
		pdf.SetFont(fontFamily, "B", 14)
		pdf.MultiCell(0, 18, p.tr(e.Text), "", "L", false)
		pdf.Ln(4)
	case KindParagraph:
		p.paragraph(e)
	case KindTable:
		if e.Table != nil {
			p.table(*e.Table)
		}
	case KindImage:
		if e.Image != nil {
			p.image(*e.Image)
		}
	case KindSpacer:
		pdf.Ln(e.Height)
	case KindPageBreak:
		pdf.AddPage()
	}
}

var lineBreaks = strings.NewReplacer("<br/>", "<br>", "<br />", "<br>", "\n", "<br>")

func (p *pdfPage) paragraph(e Element) {
	style := ""
	text := lineBreaks.Replace(e.Text)
	if e.Placeholder {
		style = "I"
		p.pdf.SetTextColor(110, 110, 110)
	}
	p.pdf.SetFont(fontFamily, style, bodySize)
	html := p.pdf.HTMLBasicNew()
	html.Write(lineHeight, p.tr(text))
	p.pdf.Ln(lineHeight + 4)
}

func (p *pdfPage) table(t Table) {
	pdf := p.pdf
	widths := t.Widths
	if len(widths) != len(t.Header) {
		widths = columnWidths(len(t.Header), nil, p.layout.AvailableWidth())
	}
	left := p.layout.Margin + math.Max(0, (p.layout.AvailableWidth()-sum(widths))/2)
	bottom := p.layout.PageHeight - p.layout.Margin

	drawRow := func(cells []string, fill bool) {
		lines := make([][]string, len(cells))
		rowLines := 1
		for i, c := range cells {
			lines[i] = pdf.SplitText(p.tr(c), widths[i]-2*cellPadding)
			rowLines = max(rowLines, len(lines[i]))
		}
		h := float64(rowLines)*tableLineHeight + 2*cellPadding

		if pdf.GetY()+h > bottom {
			pdf.AddPage()
			p.tableHeader(t.Header, widths, left)
			pdf.SetFont(fontFamily, "", tableFontSize)
			pdf.SetTextColor(0, 0, 0)
		}

		y := pdf.GetY()
		x := left
		for i := range cells {
			style := "D"
			if fill {
				style = "FD"
			}
			pdf.Rect(x, y, widths[i], h, style)
			for j, line := range lines[i] {
				pdf.SetXY(x+cellPadding, y+cellPadding+float64(j)*tableLineHeight)
				pdf.CellFormat(widths[i]-2*cellPadding, tableLineHeight, line, "", 0, "L", false, 0, "")
			}
			x += widths[i]
		}
		pdf.SetXY(p.layout.Margin, y+h)
	}

	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(0.5)
	p.tableHeader(t.Header, widths, left)
	pdf.SetFont(fontFamily, "", tableFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(242, 242, 242)
	for i, row := range t.Rows {
		drawRow(row, i%2 == 1)
	}
	pdf.Ln(8)
}

func (p *pdfPage) tableHeader(header []string, widths []float64, left float64) {
	pdf := p.pdf
	pdf.SetFont(fontFamily, "B", tableFontSize+1)
	pdf.SetFillColor(52, 73, 94)
	pdf.SetTextColor(255, 255, 255)

	lines := make([][]string, len(header))
	rowLines := 1
	for i, c := range header {
		lines[i] = pdf.SplitText(p.tr(c), widths[i]-2*cellPadding)
		rowLines = max(rowLines, len(lines[i]))
	}
	h := float64(rowLines)*tableLineHeight + 2*cellPadding
	if pdf.GetY()+h > p.layout.PageHeight-p.layout.Margin {
		pdf.AddPage()
	}

	y := pdf.GetY()
	x := left
	for i := range header {
		pdf.Rect(x, y, widths[i], h, "FD")
		for j, line := range lines[i] {
			pdf.SetXY(x+cellPadding, y+cellPadding+float64(j)*tableLineHeight)
			pdf.CellFormat(widths[i]-2*cellPadding, tableLineHeight, line, "", 0, "C", false, 0, "")
		}
		x += widths[i]
	}
	pdf.SetXY(p.layout.Margin, y+h)
	pdf.SetFillColor(242, 242, 242)
}

func (p *pdfPage) image(img Image) {
	pdf := p.pdf
	if _, err := os.Stat(img.Path); err != nil {
		p.log.Warn().Err(err).Str("image", img.Path).Msg("Chart image missing, writing note instead")
		pdf.SetFont(fontFamily, "I", bodySize)
		pdf.SetTextColor(110, 110, 110)
		pdf.MultiCell(0, lineHeight, p.tr(fmt.Sprintf("[Image not available: %s]", filepath.Base(img.Path))), "", "L", false)
		pdf.Ln(4)
		return
	}

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	info := pdf.RegisterImageOptions(img.Path, opts)
	if info == nil || pdf.Err() {
		return
	}

	maxW, maxH := img.Width, img.Height
	if maxW <= 0 || maxW > p.layout.AvailableWidth() {
		maxW = p.layout.AvailableWidth()
	}
	if maxH <= 0 || maxH > p.layout.AvailableHeight() {
		maxH = p.layout.AvailableHeight()
	}
	iw, ih := info.Width(), info.Height()
	if iw <= 0 || ih <= 0 {
		return
	}
	scale := math.Min(maxW/iw, maxH/ih)
	w, h := iw*scale, ih*scale

	x := p.layout.Margin + (p.layout.AvailableWidth()-w)/2
	pdf.ImageOptions(img.Path, x, -1, w, h, true, opts, 0, "")
	pdf.Ln(6)
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
