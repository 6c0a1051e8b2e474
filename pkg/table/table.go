// Package table implements a wide-form table accumulator with a union column
// schema. Rows are appended as sparse cell maps; the column set is the union
// over all rows, ordered deterministically, and absent cells read as empty
// strings.
package table

import (
	"sort"

	"github.com/samber/lo"
)

// Row maps column name to cell value.
type Row map[string]string

// Table accumulates rows and derives a deterministic column ordering: the
// fixed leading columns in their declared order first, then every other
// observed column sorted by name.
type Table struct {
	leading []string
	rows    []Row
}

// New returns an empty table whose column ordering leads with the given
// columns.
func New(leading ...string) *Table {
	return &Table{leading: leading}
}

// Append adds one row. The map is retained; callers must not mutate it
// afterwards.
func (t *Table) Append(row Row) {
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the union column set in deterministic order.
func (t *Table) Columns() []string {
	present := make(map[string]bool)
	for _, row := range t.rows {
		for col := range row {
			present[col] = true
		}
	}

	cols := lo.Filter(t.leading, func(col string, _ int) bool { return present[col] })
	rest := lo.Filter(lo.Keys(present), func(col string, _ int) bool {
		return !lo.Contains(t.leading, col)
	})
	sort.Strings(rest)
	return append(cols, rest...)
}

// Cell returns the value at row i, column col; absent cells are empty.
func (t *Table) Cell(i int, col string) string {
	return t.rows[i][col]
}

// Rows returns the raw row slice. The table retains ownership.
func (t *Table) Rows() []Row {
	return t.rows
}
