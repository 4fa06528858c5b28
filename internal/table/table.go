/*
PURPOSE:
  A small in-memory table with a fixed column order. The flattener fills
  one and the output writers drain it, so every sink sees identical
  columns in identical order.

REQUIREMENTS:
  User-specified:
  - Column order must be deterministic run to run.
  - Reject rows that do not match the column count; a misaligned table
    is worse than no table.

  Implementation-discovered:
  - Fill columns are only known after the first record is read, so
    columns must be extendable while the table is still empty.

ARCHITECTURE INTEGRATION:
  - Used by: internal/flatten, internal/output
  - Depends on: stdlib only.

ERROR HANDLING:
  - Append and AddColumns return errors; they never panic on bad input.

IMPLEMENTATION RULES:
  - Row-major storage. Cells are plain any values (string, int, float64,
    bool, or nil); writers decide how to render them.

USAGE:
  t := table.New("index", "engine")
  err := t.Append(0, "davinci")

SELF-HEALING INSTRUCTIONS:
  - An "expected N cells" error points at a flattener bug, not at bad
    input data.

RELATED FILES:
  - internal/flatten/flatten.go
  - internal/output/csv.go

MAINTENANCE:
  - Keep this dependency-free; it sits below every output path.
*/

package table

import "fmt"

// Table holds rows under an ordered set of named columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New creates an empty table with the given columns, in order.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t
}

// AddColumns appends further columns on the right. It fails on a
// duplicate name and on a table that already holds rows, since earlier
// rows would be short.
func (t *Table) AddColumns(columns ...string) error {
	if len(t.rows) > 0 {
		return fmt.Errorf("cannot add columns to a table with %d rows", len(t.rows))
	}
	for _, c := range columns {
		if _, exists := t.index[c]; exists {
			return fmt.Errorf("duplicate column %q", c)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return nil
}

// Append adds one row. The cell count must match the column count.
func (t *Table) Append(cells ...any) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("expected %d cells, got %d", len(t.columns), len(cells))
	}
	t.rows = append(t.rows, cells)
	return nil
}

// Columns returns the column names in order. The slice is a copy.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the underlying rows. Callers must treat them as
// read-only.
func (t *Table) Rows() [][]any {
	return t.rows
}

// Column returns all values of one column, top to bottom.
func (t *Table) Column(name string) ([]any, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	out := make([]any, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row[i])
	}
	return out, nil
}
