package testutil

import (
	"encoding/csv"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leengari/tableconv/internal/domain/schema"
)

// AssertShape checks the row and column counts of a table
func AssertShape(t *testing.T, table *schema.Table, rows, cols int, context string) {
	t.Helper()
	gotRows, gotCols := table.Shape()
	if gotRows != rows || gotCols != cols {
		t.Errorf("%s: expected shape (%d, %d), got (%d, %d)", context, rows, cols, gotRows, gotCols)
	}
}

// ColumnNames returns the flattened names of the table's columns
func ColumnNames(table *schema.Table) []string {
	names := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		names[i] = c.Key.Join("_")
	}
	return names
}

// ReadCSV reads every record of an uncompressed CSV file
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	return ParseCSV(t, f)
}

// ParseCSV reads every record from r
func ParseCSV(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	require.NoError(t, err)
	return records
}
