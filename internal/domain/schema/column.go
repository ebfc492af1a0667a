package schema

import "strings"

// Key identifies a column by its label parts, outermost level first.
// Loaded tables use two parts (field name, qualifier); flattened tables use one.
type Key []string

// Levels returns the number of label parts
func (k Key) Levels() int {
	return len(k)
}

// Field returns the level-0 label, or "" for an empty key
func (k Key) Field() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// Join concatenates the parts with sep
func (k Key) Join(sep string) string {
	return strings.Join(k, sep)
}

// String renders the key for diagnostics, e.g. (ltp, AAPL)
func (k Key) String() string {
	if len(k) == 1 {
		return k[0]
	}
	return "(" + strings.Join(k, ", ") + ")"
}

// Equal reports whether both keys have the same parts
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Column is a labelled vector of cells, one per row
type Column struct {
	Key    Key
	Values []interface{}
}

// Copy returns a column that shares no memory with c
func (c Column) Copy() Column {
	key := make(Key, len(c.Key))
	copy(key, c.Key)
	values := make([]interface{}, len(c.Values))
	copy(values, c.Values)
	return Column{Key: key, Values: values}
}

// IndexLevel is one level of the row index. An empty Name is an unnamed level.
type IndexLevel struct {
	Name   string
	Values []interface{}
}

// Copy returns an index level that shares no memory with l
func (l IndexLevel) Copy() IndexLevel {
	values := make([]interface{}, len(l.Values))
	copy(values, l.Values)
	return IndexLevel{Name: l.Name, Values: values}
}

// RangeIndex builds an unnamed 0..n-1 index level
func RangeIndex(n int) IndexLevel {
	values := make([]interface{}, n)
	for i := range values {
		values[i] = int64(i)
	}
	return IndexLevel{Values: values}
}
