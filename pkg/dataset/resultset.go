package dataset

import "strings"

// Row maps a column name to a scalar value: string, a numeric type, time.Time, bool or nil.
type Row map[string]any

// ResultSet is an in-memory table loaded from a single query.
type ResultSet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Empty returns a result set without columns or rows.
func Empty(name string) ResultSet {
	return ResultSet{Name: name}
}

func (rs ResultSet) Len() int {
	return len(rs.Rows)
}

func (rs ResultSet) IsEmpty() bool {
	return len(rs.Rows) == 0
}

func (rs ResultSet) HasColumn(col string) bool {
	for _, c := range rs.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// HasData reports whether the column exists and holds at least one non-null, non-blank value.
func (rs ResultSet) HasData(col string) bool {
	if !rs.HasColumn(col) {
		return false
	}
	for _, row := range rs.Rows {
		v := row[col]
		if IsNull(v) {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return true
	}
	return false
}
