package operations

import (
	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/query/operations/projection"
)

// SelectSubset keeps the first maxColumns columns whose field is one of
// fields, then flattens their keys. The input table is not modified.
func SelectSubset(table *schema.Table, maxColumns int, fields ...string) (*schema.Table, error) {
	projected, err := projection.ProjectColumns(table, projection.NewCriterion(maxColumns, fields...))
	if err != nil {
		return nil, err
	}
	return FlattenColumns(projected)
}
