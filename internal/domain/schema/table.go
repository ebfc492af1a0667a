package schema

import (
	"fmt"

	"github.com/leengari/tableconv/internal/domain/data"
)

// Table represents an in-memory table: a row index plus labelled columns.
// Every index level and every column holds exactly NumRows values.
type Table struct {
	Name       string
	Path       string // source file the table was loaded from (empty if derived)
	Index      []IndexLevel
	LevelNames []string // names of the column key levels, if known
	Columns    []Column
}

// NewTable validates that all vectors have the same length and builds a table.
// A table without index levels gets a RangeIndex.
func NewTable(name string, index []IndexLevel, columns []Column) (*Table, error) {
	rows := -1
	check := func(what string, n int) error {
		if rows == -1 {
			rows = n
			return nil
		}
		if n != rows {
			return fmt.Errorf("table %s: %s has %d values, expected %d", name, what, n, rows)
		}
		return nil
	}

	for _, lvl := range index {
		if err := check(fmt.Sprintf("index level %q", lvl.Name), len(lvl.Values)); err != nil {
			return nil, err
		}
	}
	for _, col := range columns {
		if err := check(fmt.Sprintf("column %s", col.Key), len(col.Values)); err != nil {
			return nil, err
		}
	}

	if len(index) == 0 {
		if rows < 0 {
			rows = 0
		}
		index = []IndexLevel{RangeIndex(rows)}
	}

	return &Table{
		Name:    name,
		Index:   index,
		Columns: columns,
	}, nil
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	if len(t.Index) > 0 {
		return len(t.Index[0].Values)
	}
	if len(t.Columns) > 0 {
		return len(t.Columns[0].Values)
	}
	return 0
}

// NumColumns returns the number of data columns, index levels excluded
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Shape returns (rows, columns)
func (t *Table) Shape() (int, int) {
	return t.NumRows(), t.NumColumns()
}

// Keys returns the column keys in table order
func (t *Table) Keys() []Key {
	keys := make([]Key, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}

// IndexNames returns the index level names in order
func (t *Table) IndexNames() []string {
	names := make([]string, len(t.Index))
	for i, lvl := range t.Index {
		names[i] = lvl.Name
	}
	return names
}

// Row returns the row at position i
func (t *Table) Row(i int) data.Row {
	index := make([]interface{}, len(t.Index))
	for j, lvl := range t.Index {
		index[j] = lvl.Values[i]
	}
	cells := make([]interface{}, len(t.Columns))
	for j, col := range t.Columns {
		cells[j] = col.Values[i]
	}
	return data.NewRow(i, index, cells)
}

// Head returns up to n leading rows
func (t *Table) Head(n int) []data.Row {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	if n < 0 {
		n = 0
	}
	rows := make([]data.Row, n)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// WithColumns returns a new table with a copy of t's index and the given columns.
// The caller hands ownership of columns to the new table.
func (t *Table) WithColumns(columns []Column) *Table {
	index := make([]IndexLevel, len(t.Index))
	for i, lvl := range t.Index {
		index[i] = lvl.Copy()
	}
	levelNames := make([]string, len(t.LevelNames))
	copy(levelNames, t.LevelNames)

	return &Table{
		Name:       t.Name,
		Index:      index,
		LevelNames: levelNames,
		Columns:    columns,
	}
}

// IsFlat reports whether every column key has exactly one part
func (t *Table) IsFlat() bool {
	for _, c := range t.Columns {
		if c.Key.Levels() != 1 {
			return false
		}
	}
	return true
}

// DuplicateColumnNames returns flattened column names that occur more than once,
// in order of first repetition
func (t *Table) DuplicateColumnNames() []string {
	seen := make(map[string]int, len(t.Columns))
	var dups []string
	for _, c := range t.Columns {
		name := c.Key.Join("_")
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}
