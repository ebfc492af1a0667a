package writer

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/multierr"

	"github.com/leengari/tableconv/internal/domain/data"
	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/storage/metadata"
)

const pandasVersion = "2.2.2"

// columnCodec maps the cells of one column to a parquet leaf
type columnCodec struct {
	node       parquet.Node
	encode     func(v interface{}) (parquet.Value, bool)
	pandasType string
	numpyType  string
	metadata   map[string]any
}

type storedColumn struct {
	field  string
	values []interface{}
	codec  columnCodec
	leaf   int
}

// WriteParquet stores t as a parquet file with pyarrow-compatible pandas
// metadata, so multi-level column keys and named index levels survive a
// round trip through the loader.
func WriteParquet(t *schema.Table, path string, logger *slog.Logger) error {
	if t == nil {
		return errors.NewStructuralError(opWrite, "", "cannot export nil table")
	}
	if logger == nil {
		logger = slog.Default()
	}

	levels := 1
	if len(t.Columns) > 0 {
		levels = t.Columns[0].Key.Levels()
	}
	for _, c := range t.Columns {
		if c.Key.Levels() != levels || levels == 0 {
			return errors.NewStructuralError(opWrite, c.Key.String(),
				fmt.Sprintf("all column keys must have %d levels", levels))
		}
	}

	meta := &metadata.PandasMeta{
		Creator:       &metadata.Creator{Library: "tableconv", Version: "1"},
		PandasVersion: pandasVersion,
	}
	for i := 0; i < levels; i++ {
		ci := metadata.ColumnIndex{PandasType: "unicode", NumpyType: "object"}
		if len(t.LevelNames) == levels && t.LevelNames[i] != "" {
			ci.Name = metadata.NewLabel(t.LevelNames[i])
			ci.FieldName = ci.Name
		}
		meta.ColumnIndexes = append(meta.ColumnIndexes, ci)
	}

	group := parquet.Group{}
	var stored []*storedColumn
	add := func(field string, label metadata.Label, values []interface{}) error {
		if _, dup := group[field]; dup {
			return errors.NewStructuralError(opWrite, field, "duplicate column")
		}
		codec, err := codecFor(field, values)
		if err != nil {
			return err
		}
		group[field] = parquet.Optional(codec.node)
		stored = append(stored, &storedColumn{field: field, values: values, codec: codec})
		meta.Columns = append(meta.Columns, metadata.PandasColumn{
			Name:       label,
			FieldName:  field,
			PandasType: codec.pandasType,
			NumpyType:  codec.numpyType,
			Metadata:   codec.metadata,
		})
		return nil
	}

	for _, c := range t.Columns {
		field := c.Key[0]
		if levels > 1 {
			field = metadata.FormatLabel(c.Key)
		}
		if err := add(field, metadata.NewLabel(field), c.Values); err != nil {
			return err
		}
	}
	for i, lvl := range t.Index {
		field := lvl.Name
		label := metadata.NewLabel(lvl.Name)
		if field == "" {
			field = metadata.IndexFieldName(i)
			label = metadata.Label{}
		}
		if err := add(field, label, lvl.Values); err != nil {
			return err
		}
		meta.IndexColumns = append(meta.IndexColumns, metadata.IndexColumn{Field: field})
	}

	name := t.Name
	if name == "" {
		name = "schema"
	}
	pqSchema := parquet.NewSchema(name, group)
	for _, sc := range stored {
		col, ok := pqSchema.Lookup(sc.field)
		if !ok {
			return errors.NewStructuralError(opWrite, sc.field, "column missing from parquet schema")
		}
		sc.leaf = col.ColumnIndex
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].leaf < stored[j].leaf })

	raw, err := metadata.EncodePandas(meta)
	if err != nil {
		return errors.NewIOError(opWrite, path, err)
	}

	rows := make([]parquet.Row, t.NumRows())
	for r := range rows {
		row := make(parquet.Row, len(stored))
		for _, sc := range stored {
			v := sc.values[r]
			if v == nil {
				row[sc.leaf] = parquet.NullValue().Level(0, 0, sc.leaf)
				continue
			}
			pv, ok := sc.codec.encode(v)
			if !ok {
				return errors.NewStructuralError(opWrite, sc.field,
					fmt.Sprintf("row %d: unexpected %T in %s column", r, v, sc.codec.pandasType))
			}
			row[sc.leaf] = pv.Level(0, 1, sc.leaf)
		}
		rows[r] = row
	}

	if err := writeAtomic(path, func(w io.Writer) error {
		pw := parquet.NewWriter(w, pqSchema, parquet.KeyValueMetadata(metadata.PandasKey, raw))
		_, err := pw.WriteRows(rows)
		return multierr.Append(err, pw.Close())
	}); err != nil {
		return err
	}

	numRows, numCols := t.Shape()
	logger.Info("table exported",
		slog.String("path", path),
		slog.String("format", "parquet"),
		slog.Int("rows", numRows),
		slog.Int("columns", numCols),
	)
	return nil
}

// codecFor picks a parquet type from the first non-null cell
func codecFor(field string, values []interface{}) (columnCodec, error) {
	var sample interface{}
	for _, v := range values {
		if v != nil {
			sample = v
			break
		}
	}

	switch s := sample.(type) {
	case nil:
		return columnCodec{
			node:       parquet.String(),
			encode:     func(interface{}) (parquet.Value, bool) { return parquet.Value{}, false },
			pandasType: "empty",
			numpyType:  "object",
		}, nil
	case bool:
		return columnCodec{
			node: parquet.Leaf(parquet.BooleanType),
			encode: func(v interface{}) (parquet.Value, bool) {
				b, ok := v.(bool)
				return parquet.BooleanValue(b), ok
			},
			pandasType: "bool",
			numpyType:  "bool",
		}, nil
	case int64, int:
		return columnCodec{
			node: parquet.Int(64),
			encode: func(v interface{}) (parquet.Value, bool) {
				switch n := v.(type) {
				case int64:
					return parquet.Int64Value(n), true
				case int:
					return parquet.Int64Value(int64(n)), true
				}
				return parquet.Value{}, false
			},
			pandasType: "int64",
			numpyType:  "int64",
		}, nil
	case float64:
		return columnCodec{
			node: parquet.Leaf(parquet.DoubleType),
			encode: func(v interface{}) (parquet.Value, bool) {
				f, ok := v.(float64)
				return parquet.DoubleValue(f), ok
			},
			pandasType: "float64",
			numpyType:  "float64",
		}, nil
	case string:
		return columnCodec{
			node: parquet.String(),
			encode: func(v interface{}) (parquet.Value, bool) {
				str, ok := v.(string)
				return parquet.ByteArrayValue([]byte(str)), ok
			},
			pandasType: "unicode",
			numpyType:  "object",
		}, nil
	case data.Timestamp:
		codec := columnCodec{
			node: parquet.Timestamp(parquet.Nanosecond),
			encode: func(v interface{}) (parquet.Value, bool) {
				ts, ok := v.(data.Timestamp)
				return parquet.Int64Value(ts.Time.UnixNano()), ok
			},
			pandasType: "datetime",
			numpyType:  "datetime64[ns]",
		}
		if s.Aware {
			codec.pandasType = "datetimetz"
			codec.metadata = map[string]any{"timezone": s.ZoneName()}
		}
		return codec, nil
	case data.Date:
		return columnCodec{
			node: parquet.Date(),
			encode: func(v interface{}) (parquet.Value, bool) {
				d, ok := v.(data.Date)
				return parquet.Int32Value(d.DaysSinceEpoch()), ok
			},
			pandasType: "date",
			numpyType:  "object",
		}, nil
	default:
		return columnCodec{}, errors.NewStructuralError(opWrite, field, fmt.Sprintf("unsupported cell type %T", sample))
	}
}
