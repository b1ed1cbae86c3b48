package table

import (
	"fmt"
	"slices"
	"time"
)

// ColumnType is the in-memory type of a column.
type ColumnType string

const (
	ColumnString    ColumnType = "string"
	ColumnInt64     ColumnType = "int64"
	ColumnFloat64   ColumnType = "float64"
	ColumnTimestamp ColumnType = "timestamp"
)

// Column describes one column of a Table.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a row oriented, column named table. Each cell holds a string,
// int64, float64, time.Time or nil, matching the column type.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// New creates an empty table with the given columns.
func New(columns []Column) *Table {
	return &Table{
		Columns: slices.Clone(columns),
		Rows:    nil,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}

	return names
}

// ColumnIndex returns the position of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}

	return -1
}

// Value returns the cell at (row, column name).
func (t *Table) Value(row int, name string) (any, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}

	return t.Rows[row][idx], true
}

// AppendRow adds a row; it must have one cell per column.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}

	t.Rows = append(t.Rows, row)

	return nil
}

// AddColumn appends a column whose values are computed from each row.
func (t *Table) AddColumn(column Column, compute func(row []any) (any, error)) error {
	if t.ColumnIndex(column.Name) >= 0 {
		return fmt.Errorf("column %q already exists", column.Name)
	}

	for i, row := range t.Rows {
		v, err := compute(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		t.Rows[i] = append(row, v)
	}

	t.Columns = append(t.Columns, column)

	return nil
}

// Concat joins tables in order into a new table. Columns are matched by name;
// the result holds the union of columns in first-seen order, with nil where a
// table lacks a column. Types must agree.
func Concat(tables ...*Table) (*Table, error) {
	var columns []Column

	index := map[string]int{}

	for _, t := range tables {
		if t == nil {
			continue
		}

		for _, c := range t.Columns {
			if i, ok := index[c.Name]; ok {
				if columns[i].Type != c.Type {
					return nil, fmt.Errorf("column %q has type %s and %s", c.Name, columns[i].Type, c.Type)
				}

				continue
			}

			index[c.Name] = len(columns)
			columns = append(columns, c)
		}
	}

	out := New(columns)

	for _, t := range tables {
		if t == nil {
			continue
		}

		positions := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			positions[i] = index[c.Name]
		}

		for _, row := range t.Rows {
			merged := make([]any, len(columns))
			for i, v := range row {
				merged[positions[i]] = v
			}

			out.Rows = append(out.Rows, merged)
		}
	}

	return out, nil
}

// Time returns a timestamp cell as time.Time.
func Time(v any) (time.Time, bool) {
	t, ok := v.(time.Time)

	return t, ok
}
