package table

import (
	"math"

	"listinglens/domain/core"
)

// Column holds one named field's values for every row
type Column struct {
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// Table is an ordered collection of named typed columns sharing a row count.
// Pipeline stages never mutate a table in place: Filter and WithColumn return
// new derived views so that each stage stays composable and testable.
type Table struct {
	cols  []Column
	index map[string]int
	nrows int
}

// New builds a table from columns. All columns must have the same length and
// distinct names.
func New(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, col := range cols {
		if i == 0 {
			t.nrows = len(col.Values)
		} else if len(col.Values) != t.nrows {
			return nil, core.NewValidationError(col.Name, "column length mismatch")
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, core.NewValidationError(col.Name, "duplicate column name")
		}
		t.index[col.Name] = i
		t.cols = append(t.cols, col)
	}
	return t, nil
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	return t.nrows
}

// ColumnNames returns column names in declaration order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a named column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column, or an ErrMissingField error
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, core.NewMissingFieldError(name)
	}
	return t.cols[i], nil
}

// Value returns a single cell
func (t *Table) Value(name string, row int) (Value, error) {
	col, err := t.Column(name)
	if err != nil {
		return Value{}, err
	}
	return col.Values[row], nil
}

// Numeric returns the named column as float64s, with NaN standing in for
// missing or non-numeric cells. Aggregates downstream must exclude NaN,
// never treat it as zero.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col.Values))
	for i, v := range col.Values {
		if v.IsNumeric() {
			out[i] = v.AsFloat64()
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// Labels returns the named column as strings, with "" for missing cells
func (t *Table) Labels(name string) ([]string, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(col.Values))
	for i, v := range col.Values {
		if v.IsString() {
			out[i] = v.AsString()
		}
	}
	return out, nil
}

// Filter returns a new table containing only rows for which keep is true
func (t *Table) Filter(keep func(row int) bool) *Table {
	retained := make([]int, 0, t.nrows)
	for row := 0; row < t.nrows; row++ {
		if keep(row) {
			retained = append(retained, row)
		}
	}

	out := &Table{index: make(map[string]int, len(t.cols)), nrows: len(retained)}
	for i, col := range t.cols {
		values := make([]Value, len(retained))
		for j, row := range retained {
			values[j] = col.Values[row]
		}
		out.index[col.Name] = i
		out.cols = append(out.cols, Column{Name: col.Name, Values: values})
	}
	return out
}

// WithColumn returns a new table with an extra column appended. The column
// must match the table's row count; an existing name is replaced.
func (t *Table) WithColumn(name string, values []Value) (*Table, error) {
	if len(values) != t.nrows {
		return nil, core.NewValidationError(name, "column length mismatch")
	}

	out := &Table{index: make(map[string]int, len(t.cols)+1), nrows: t.nrows}
	replaced := false
	for _, col := range t.cols {
		if col.Name == name {
			col = Column{Name: name, Values: values}
			replaced = true
		}
		out.index[col.Name] = len(out.cols)
		out.cols = append(out.cols, col)
	}
	if !replaced {
		out.index[name] = len(out.cols)
		out.cols = append(out.cols, Column{Name: name, Values: values})
	}
	return out, nil
}

// MapNumeric returns a new table with the named column replaced by the result
// of applying fn to each cell
func (t *Table) MapNumeric(name string, fn func(Value) Value) (*Table, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	values := make([]Value, len(col.Values))
	for i, v := range col.Values {
		values[i] = fn(v)
	}
	return t.WithColumn(name, values)
}
