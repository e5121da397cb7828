package document

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestFormatTable(t *testing.T) {
	ctx := testContext(t)
	header := []string{"Device Type", "User Count", "Percentage"}

	t.Run("pads short and truncates long rows", func(t *testing.T) {
		rows := [][]any{
			{"mobile", 2},
			{"desktop", 1, "33.3%", "extra"},
		}

		tbl, err := FormatTable(ctx, header, rows, nil, 300)

		require.NoError(t, err)
		assert.Equal(t, [][]string{{"mobile", "2", ""}, {"desktop", "1", "33.3%"}}, tbl.Rows)
	})

	t.Run("stringifies values", func(t *testing.T) {
		rating := 4.5
		var missing *float64
		ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

		tbl, err := FormatTable(ctx, header, [][]any{{nil, 66.7, ts}, {&rating, missing, math.NaN()}}, nil, 300)

		require.NoError(t, err)
		assert.Equal(t, []string{"", "66.7", "2025-03-04 05:06:07"}, tbl.Rows[0])
		assert.Equal(t, []string{"4.5", "", ""}, tbl.Rows[1])
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := FormatTable(ctx, nil, [][]any{{"x"}}, nil, 300)
		assert.ErrorIs(t, err, ErrNoColumns)
	})

	t.Run("zero rows still formats", func(t *testing.T) {
		tbl, err := FormatTable(ctx, header, nil, nil, 300)
		require.NoError(t, err)
		assert.Empty(t, tbl.Rows)
		assert.Len(t, tbl.Widths, 3)
	})
}

func TestFormatTable_Widths(t *testing.T) {
	ctx := testContext(t)
	header := []string{"a", "b"}

	t.Run("even split when missing or mismatched", func(t *testing.T) {
		tbl, err := FormatTable(ctx, header, nil, []float64{100}, 300)
		require.NoError(t, err)
		assert.Equal(t, []float64{150, 150}, tbl.Widths)
	})

	t.Run("explicit widths within budget are kept", func(t *testing.T) {
		tbl, err := FormatTable(ctx, header, nil, []float64{100, 50}, 300)
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 50}, tbl.Widths)
	})

	t.Run("explicit widths over budget are scaled", func(t *testing.T) {
		tbl, err := FormatTable(ctx, header, nil, []float64{2.5 * Inch, 4.5 * Inch}, 360)
		require.NoError(t, err)
		assert.InDelta(t, 360, tbl.Widths[0]+tbl.Widths[1], 1e-9)
		assert.InDelta(t, 2.5/4.5, tbl.Widths[0]/tbl.Widths[1], 1e-9)
	})
}

func TestFormatTable_Idempotent(t *testing.T) {
	ctx := testContext(t)
	header := []string{"Service", "Avg Rating", "Reviews"}
	rows := [][]any{{"Hotel", 4.25, 12}, {"Flight", nil}}

	first, err := FormatTable(ctx, header, rows, []float64{300, 200, 100}, DefaultLayout().AvailableWidth())
	require.NoError(t, err)

	second, err := FormatStrings(ctx, first.Header, first.Rows, first.Widths, DefaultLayout().AvailableWidth())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuilder(t *testing.T) {
	ctx := testContext(t)

	t.Run("elements are copies", func(t *testing.T) {
		b := NewBuilder(ctx)
		b.Title("Report").Heading("1. Section").Table(Table{Header: []string{"a"}, Rows: [][]string{{"x"}}})

		elems := b.Elements()
		elems[2].Table.Rows[0][0] = "changed"

		assert.Equal(t, "x", b.Elements()[2].Table.Rows[0][0])
		assert.Equal(t, KindHeading, b.Elements()[1].Kind)
	})

	t.Run("sealing ignores later appends", func(t *testing.T) {
		b := NewBuilder(ctx)
		b.Paragraph("one")

		doc := b.Document()
		b.Paragraph("two")

		assert.Equal(t, 1, doc.Len())
		assert.Equal(t, 1, b.Len())
	})
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "‹b›bold‹/b› & more", Plain("<b>bold</b> & more"))
}

func TestPDFWriter_Write(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	chart := filepath.Join(dir, "chart.png")
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(chart)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	rows := make([][]any, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, []any{"Potential area with a fairly long description that wraps", i})
	}
	tbl, err := FormatTable(ctx, []string{"Area", "Count"}, rows, []float64{2.5 * Inch, 4.5 * Inch}, DefaultLayout().AvailableWidth())
	require.NoError(t, err)

	b := NewBuilder(ctx)
	b.Title("User Behavior Analysis Report").
		Paragraph("Generated on: 2025-05-01<br/><b>Total users:</b> 1,234").
		Heading("1. Funnel").
		Image(chart, 6*Inch, 3*Inch).
		Image(filepath.Join(dir, "missing.png"), 6*Inch, 3*Inch).
		Placeholder("No valid session durations found to analyze.").
		Table(tbl).
		Spacer(12).
		PageBreak().
		Paragraph(Plain("Café <script> naïve"))

	out := filepath.Join(dir, "out", "report.pdf")
	require.NoError(t, NewPDFWriter().Write(ctx, b.Document(), out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}
