package document

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoColumns is returned when a table has no header.
var ErrNoColumns = errors.New("table has no columns")

const widthTolerance = 1e-6

// FormatTable normalises rows to the header length, stringifies every cell and settles the
// column widths. Missing or mismatched widths are spread evenly over budget. Explicit widths
// wider than budget are scaled down proportionally. A budget <= 0 disables scaling.
func FormatTable(ctx context.Context, header []string, rows [][]any, widths []float64, budget float64) (Table, error) {
	if len(header) == 0 {
		return Table{}, ErrNoColumns
	}
	n := len(header)
	log := zerolog.Ctx(ctx)

	t := Table{
		Header: append([]string(nil), header...),
		Rows:   make([][]string, 0, len(rows)),
	}
	for i, row := range rows {
		switch {
		case len(row) < n:
			log.Warn().Int("row", i).Int("cells", len(row)).Int("columns", n).Msg("Padding short table row")
		case len(row) > n:
			log.Warn().Int("row", i).Int("cells", len(row)).Int("columns", n).Msg("Truncating long table row")
		}
		cells := make([]string, n)
		for j := 0; j < n && j < len(row); j++ {
			cells[j] = Cell(row[j])
		}
		t.Rows = append(t.Rows, cells)
	}

	t.Widths = columnWidths(n, widths, budget)
	return t, nil
}

// FormatStrings is FormatTable for rows that are already text.
func FormatStrings(ctx context.Context, header []string, rows [][]string, widths []float64, budget float64) (Table, error) {
	anyRows := make([][]any, len(rows))
	for i, row := range rows {
		anyRows[i] = make([]any, len(row))
		for j, c := range row {
			anyRows[i][j] = c
		}
	}
	return FormatTable(ctx, header, anyRows, widths, budget)
}

func columnWidths(n int, widths []float64, budget float64) []float64 {
	valid := len(widths) == n
	sum := 0.0
	for _, w := range widths {
		if w <= 0 {
			valid = false
		}
		sum += w
	}

	out := make([]float64, n)
	if !valid {
		if budget <= 0 {
			return nil
		}
		for i := range out {
			out[i] = budget / float64(n)
		}
		return out
	}

	copy(out, widths)
	if budget > 0 && sum > budget+widthTolerance {
		scale := budget / sum
		for i := range out {
			out[i] *= scale
		}
	}
	return out
}

// Cell renders one table value. Null renders as the empty string.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return Cell(float64(x))
	case *float64:
		if x == nil {
			return ""
		}
		return Cell(*x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.DateTime)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
