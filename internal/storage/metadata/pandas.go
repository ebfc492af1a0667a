package metadata

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// PandasKey is the parquet key/value metadata entry written by pyarrow
const PandasKey = "pandas"

// IndexFieldPrefix names unnamed index columns, e.g. __index_level_0__
const IndexFieldPrefix = "__index_level_"

// IndexFieldName returns the storage name pyarrow uses for unnamed index level i
func IndexFieldName(level int) string {
	return fmt.Sprintf("%s%d__", IndexFieldPrefix, level)
}

// PandasMeta mirrors the "pandas" metadata document
type PandasMeta struct {
	IndexColumns  []IndexColumn  `json:"index_columns"`
	ColumnIndexes []ColumnIndex  `json:"column_indexes"`
	Columns       []PandasColumn `json:"columns"`
	Creator       *Creator       `json:"creator,omitempty"`
	PandasVersion string         `json:"pandas_version,omitempty"`
}

// Creator identifies the writing library
type Creator struct {
	Library string `json:"library"`
	Version string `json:"version"`
}

// ColumnIndex describes one level of the column index
type ColumnIndex struct {
	Name       Label          `json:"name"`
	FieldName  Label          `json:"field_name"`
	PandasType string         `json:"pandas_type"`
	NumpyType  string         `json:"numpy_type"`
	Metadata   map[string]any `json:"metadata"`
}

// PandasColumn describes one stored column (data or index)
type PandasColumn struct {
	Name       Label          `json:"name"`
	FieldName  string         `json:"field_name"`
	PandasType string         `json:"pandas_type"`
	NumpyType  string         `json:"numpy_type"`
	Metadata   map[string]any `json:"metadata"`
}

// Timezone returns the timezone recorded for a datetimetz column
func (c PandasColumn) Timezone() (string, bool) {
	if c.Metadata == nil {
		return "", false
	}
	tz, ok := c.Metadata["timezone"].(string)
	return tz, ok && tz != ""
}

// Label is a pandas name: a string, null, or any other JSON scalar kept as text
type Label struct {
	Value string
	Valid bool
}

// NewLabel returns a non-null label
func NewLabel(s string) Label {
	return Label{Value: s, Valid: true}
}

func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = Label{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = NewLabel(s)
		return nil
	}
	*l = NewLabel(string(b))
	return nil
}

func (l Label) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.Value)
}

// IndexColumn is either the field name of a stored index column or a
// serialized RangeIndex
type IndexColumn struct {
	Field string
	Range *RangeIndex
}

// RangeIndex is pandas' metadata-only index: start, start+step, ... < stop
type RangeIndex struct {
	Kind  string `json:"kind"`
	Name  Label  `json:"name"`
	Start int64  `json:"start"`
	Stop  int64  `json:"stop"`
	Step  int64  `json:"step"`
}

// Len returns the number of entries in the range
func (r RangeIndex) Len() int {
	if r.Step == 0 {
		return 0
	}
	n := (r.Stop - r.Start + r.Step - sign(r.Step)) / r.Step
	if n < 0 {
		return 0
	}
	return int(n)
}

// Values materializes the range as int64 values
func (r RangeIndex) Values() []interface{} {
	n := r.Len()
	values := make([]interface{}, n)
	for i := 0; i < n; i++ {
		values[i] = r.Start + int64(i)*r.Step
	}
	return values
}

func sign(v int64) int64 {
	if v < 0 {
		return -1
	}
	return 1
}

func (c *IndexColumn) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var r RangeIndex
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		if r.Kind != "range" {
			return fmt.Errorf("unsupported index kind %q", r.Kind)
		}
		*c = IndexColumn{Range: &r}
		return nil
	}
	var field string
	if err := json.Unmarshal(b, &field); err != nil {
		return err
	}
	*c = IndexColumn{Field: field}
	return nil
}

func (c IndexColumn) MarshalJSON() ([]byte, error) {
	if c.Range != nil {
		return json.Marshal(c.Range)
	}
	return json.Marshal(c.Field)
}

// DecodePandas parses the "pandas" metadata value
func DecodePandas(raw string) (*PandasMeta, error) {
	var meta PandasMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse pandas metadata: %w", err)
	}
	return &meta, nil
}

// EncodePandas serializes meta for storage as parquet key/value metadata
func EncodePandas(meta *PandasMeta) (string, error) {
	b, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pandas metadata: %w", err)
	}
	return string(b), nil
}

// ColumnByField returns the column entry stored under field
func (m *PandasMeta) ColumnByField(field string) (PandasColumn, bool) {
	for _, c := range m.Columns {
		if c.FieldName == field {
			return c, true
		}
	}
	return PandasColumn{}, false
}

// LevelNames returns the column index level names ("" for unnamed levels)
func (m *PandasMeta) LevelNames() []string {
	names := make([]string, len(m.ColumnIndexes))
	for i, ci := range m.ColumnIndexes {
		names[i] = ci.Name.Value
	}
	return names
}
