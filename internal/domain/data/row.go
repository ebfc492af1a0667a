package data

// Row represents a single table row
// Index holds one value per index level, Cells one value per column,
// both in table order. A nil entry is a null cell.
type Row struct {
	Position int
	Index    []interface{}
	Cells    []interface{}
}

// NewRow creates a new Row at the given position
func NewRow(position int, index, cells []interface{}) Row {
	return Row{
		Position: position,
		Index:    index,
		Cells:    cells,
	}
}

// Copy creates a copy of the row to prevent mutation
func (r Row) Copy() Row {
	index := make([]interface{}, len(r.Index))
	copy(index, r.Index)
	cells := make([]interface{}, len(r.Cells))
	copy(cells, r.Cells)
	return Row{
		Position: r.Position,
		Index:    index,
		Cells:    cells,
	}
}

// Values returns the index values followed by the cells, the layout of a CSV record
func (r Row) Values() []interface{} {
	out := make([]interface{}, 0, len(r.Index)+len(r.Cells))
	out = append(out, r.Index...)
	return append(out, r.Cells...)
}
