// Package table holds the immutable Record Table and the pure filter, search
// and sort steps that derive a Current View from an Original Dataset.
package table

import (
	"fmt"
	"slices"
)

// Table is an ordered set of text rows with uniquely named columns.
// A Table is never mutated after construction; derived tables may share
// row storage with the table they were derived from.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a Table. Rows shorter than the header are padded with "";
// longer rows and duplicate column names are rejected.
func New(columns []string, rows [][]string) (*Table, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		idx[c] = i
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) > len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(r), len(columns))
		}
		row := make([]string, len(columns))
		copy(row, r)
		out[i] = row
	}
	return &Table{columns: slices.Clone(columns), index: idx, rows: out}, nil
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{index: map[string]int{}}
}

// derive shares the column layout of t with a new row order.
func (t *Table) derive(rows [][]string) *Table {
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) []string { return slices.Clone(t.rows[i]) }

// Value returns the cell of row i in the named column.
func (t *Table) Value(i int, column string) (string, bool) {
	j, ok := t.index[column]
	if !ok {
		return "", false
	}
	return t.rows[i][j], true
}

// Record returns row i as a column-name keyed map.
func (t *Table) Record(i int) map[string]string {
	m := make(map[string]string, len(t.columns))
	for j, c := range t.columns {
		m[c] = t.rows[i][j]
	}
	return m
}

// Records returns a deep copy of all rows.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// Clone returns a table with the same columns and rows.
func (t *Table) Clone() *Table { return t.derive(slices.Clone(t.rows)) }

// Equal reports whether both tables have the same columns and cell values in
// the same order.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if !slices.Equal(t.columns, o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.rows {
		if !slices.Equal(t.rows[i], o.rows[i]) {
			return false
		}
	}
	return true
}
