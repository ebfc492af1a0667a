package operations

import (
	"fmt"
	"strings"

	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
)

// FlattenSeparator joins the two key levels of a column into one name
const FlattenSeparator = "_"

// FlattenName joins a two-level key into a single column name.
// Surrounding whitespace is trimmed, so ("ltp", "") becomes "ltp".
func FlattenName(key schema.Key) string {
	return strings.TrimSpace(key.Join(FlattenSeparator))
}

// FlattenColumns collapses a two-level column index into single names of the
// form "<field>_<qualifier>". Values, index and row order are unchanged.
// Name collisions are kept as-is; see schema.Table.DuplicateColumnNames.
func FlattenColumns(table *schema.Table) (*schema.Table, error) {
	if table == nil {
		return nil, errors.NewStructuralError("flatten", "", "table is nil")
	}

	columns := make([]schema.Column, len(table.Columns))
	for i, col := range table.Columns {
		if col.Key.Levels() != 2 {
			return nil, errors.NewStructuralError("flatten", col.Key.String(),
				fmt.Sprintf("expected 2 key levels, found %d", col.Key.Levels()))
		}
		flat := col.Copy()
		flat.Key = schema.Key{FlattenName(col.Key)}
		columns[i] = flat
	}

	result := table.WithColumns(columns)
	result.LevelNames = nil
	return result, nil
}
