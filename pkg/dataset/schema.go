package dataset

// Kind is the declared type of a schema field.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindTime
	// KindRaw keeps the loaded value as-is, e.g. free-form metadata.
	KindRaw
)

// Field declares one named column of a row schema.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema is the explicit row contract of one table as consumed by a report.
type Schema struct {
	Name   string
	Fields []Field
}

// Validation describes what Validate had to discard.
type Validation struct {
	MissingRequired []string
	MissingOptional []string
	Dropped         int
}

// Usable reports whether all required columns were present.
func (v Validation) Usable() bool {
	return len(v.MissingRequired) == 0
}

// Validate coerces every declared field and drops rows whose required fields fail to coerce.
// Null text becomes the empty string; optional fields that fail coercion become nil.
// A missing required column yields an empty result set.
func (s Schema) Validate(rs ResultSet) (ResultSet, Validation) {
	var v Validation
	for _, f := range s.Fields {
		if rs.HasColumn(f.Name) {
			continue
		}
		if f.Required {
			v.MissingRequired = append(v.MissingRequired, f.Name)
		} else {
			v.MissingOptional = append(v.MissingOptional, f.Name)
		}
	}

	columns := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		columns = append(columns, f.Name)
	}
	out := ResultSet{Name: rs.Name, Columns: columns}
	if !v.Usable() {
		v.Dropped = rs.Len()
		return out, v
	}

	for _, row := range rs.Rows {
		next := make(Row, len(s.Fields))
		keep := true
		for _, f := range s.Fields {
			value, ok := coerce(f.Kind, row[f.Name])
			if !ok && f.Required {
				keep = false
				break
			}
			next[f.Name] = value
		}
		if !keep {
			v.Dropped++
			continue
		}
		out.Rows = append(out.Rows, next)
	}
	return out, v
}

func coerce(kind Kind, raw any) (any, bool) {
	switch kind {
	case KindText:
		if IsNull(raw) {
			return "", false
		}
		return Text(raw), true
	case KindNumber:
		f, ok := Float(raw)
		if !ok {
			return nil, false
		}
		return f, true
	case KindTime:
		t, ok := Time(raw)
		if !ok {
			return nil, false
		}
		return t, true
	default:
		return raw, !IsNull(raw)
	}
}
