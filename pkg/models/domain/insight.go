package domain

// Insight is one row of a recommendations table: an observed area and what to do about it.
type Insight struct {
	Area   string
	Action string
}

// Row renders the insight as table cells.
func (i Insight) Row() []any {
	return []any{i.Area, i.Action}
}

// InsightRows converts insights to table rows.
func InsightRows(insights []Insight) [][]any {
	rows := make([][]any, 0, len(insights))
	for _, i := range insights {
		rows = append(rows, i.Row())
	}
	return rows
}
