package projection

import (
	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
)

// DefaultMaxColumns bounds the size of a projected table
const DefaultMaxColumns = 100

// Criterion selects columns by their level-0 key.
// A column is kept iff its field name is in Fields; at most MaxColumns
// columns are kept, the first ones in table order.
type Criterion struct {
	Fields     []string
	MaxColumns int
}

// NewCriterion creates a criterion for the given fields
func NewCriterion(maxColumns int, fields ...string) Criterion {
	return Criterion{
		Fields:     fields,
		MaxColumns: maxColumns,
	}
}

// Matches reports whether a column key passes the field filter
func (c Criterion) Matches(key schema.Key) bool {
	field := key.Field()
	for _, f := range c.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ProjectColumns returns a new table holding copies of the columns of t that
// match the criterion, in original order, truncated to MaxColumns.
// No match yields a table with zero columns.
func ProjectColumns(t *schema.Table, c Criterion) (*schema.Table, error) {
	if t == nil {
		return nil, errors.NewStructuralError("select", "", "table is nil")
	}
	if err := ValidateCriterion(c); err != nil {
		return nil, err
	}

	selected := make([]schema.Column, 0, min(c.MaxColumns, len(t.Columns)))
	for _, col := range t.Columns {
		if len(selected) == c.MaxColumns {
			break
		}
		if col.Key.Levels() == 0 {
			return nil, errors.NewStructuralError("select", "", "column without key")
		}
		if !c.Matches(col.Key) {
			continue
		}
		selected = append(selected, col.Copy())
	}

	return t.WithColumns(selected), nil
}
