package loader

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/parquet-go/parquet-go"

	"github.com/leengari/tableconv/internal/domain/data"
	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/storage/metadata"
)

const (
	opLoad        = "load"
	readBatchSize = 256
	columnLevels  = 2
)

// leaf is one stored parquet column
type leaf struct {
	name    string
	index   int
	decoder cellDecoder
}

// LoadTable reads a parquet file whose columns carry a two-level pandas
// column index and returns it as an in-memory table.
func LoadTable(path string, logger *slog.Logger) (*schema.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFound(opLoad, path, err)
		}
		return nil, errors.NewIOError(opLoad, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewIOError(opLoad, path, err)
	}

	pf, err := parquet.OpenFile(f, info.Size(),
		parquet.SkipBloomFilters(true),
		parquet.SkipPageIndex(true),
	)
	if err != nil {
		return nil, errors.NewFormatError(opLoad, path, "not a parquet file", err)
	}

	var meta *metadata.PandasMeta
	if raw, ok := pf.Lookup(metadata.PandasKey); ok {
		meta, err = metadata.DecodePandas(raw)
		if err != nil {
			return nil, errors.NewFormatError(opLoad, path, "invalid pandas metadata", err)
		}
	}

	leaves, err := collectLeaves(pf.Schema(), meta, path)
	if err != nil {
		return nil, err
	}

	cells, err := readCells(pf, leaves, path)
	if err != nil {
		return nil, err
	}

	layout, err := planLayout(leaves, meta, path)
	if err != nil {
		return nil, err
	}

	index := make([]schema.IndexLevel, 0, len(layout.index))
	for _, ix := range layout.index {
		if ix.rng != nil {
			index = append(index, schema.IndexLevel{Name: ix.name, Values: ix.rng.Values()})
			continue
		}
		index = append(index, schema.IndexLevel{Name: ix.name, Values: cells[ix.leaf]})
	}

	columns := make([]schema.Column, 0, len(layout.columns))
	for _, c := range layout.columns {
		columns = append(columns, schema.Column{Key: c.key, Values: cells[c.leaf]})
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := schema.NewTable(name, index, columns)
	if err != nil {
		return nil, errors.NewFormatError(opLoad, path, "inconsistent column lengths", err)
	}
	table.Path = path
	if meta != nil {
		table.LevelNames = meta.LevelNames()
	}

	rows, cols := table.Shape()
	logger.Info("table loaded",
		slog.String("table", table.Name),
		slog.String("path", path),
		slog.Int("rows", rows),
		slog.Int("columns", cols),
		slog.Int("index_levels", len(table.Index)),
		slog.Bool("pandas_metadata", meta != nil),
	)

	return table, nil
}

func collectLeaves(s *parquet.Schema, meta *metadata.PandasMeta, path string) ([]leaf, error) {
	paths := s.Columns()
	leaves := make([]leaf, 0, len(paths))
	for _, p := range paths {
		name := strings.Join(p, ".")
		if len(p) != 1 {
			return nil, errors.NewColumnFormatError(opLoad, path, name, "nested columns are not supported", nil)
		}

		col, ok := s.Lookup(p...)
		if !ok {
			return nil, errors.NewColumnFormatError(opLoad, path, name, "column missing from schema", nil)
		}
		if col.MaxRepetitionLevel > 0 {
			return nil, errors.NewColumnFormatError(opLoad, path, name, "repeated columns are not supported", nil)
		}

		var (
			described bool
			zone      *time.Location
		)
		if meta != nil {
			if pc, ok := meta.ColumnByField(name); ok {
				described = true
				if tz, aware := pc.Timezone(); aware {
					loc, err := data.LoadZone(tz)
					if err != nil {
						return nil, errors.NewColumnFormatError(opLoad, path, name, fmt.Sprintf("unknown timezone %q", tz), err)
					}
					zone = loc
				}
			}
		}

		leaves = append(leaves, leaf{
			name:    name,
			index:   col.ColumnIndex,
			decoder: newCellDecoder(col.Node, described, zone),
		})
	}
	return leaves, nil
}

// readCells reads every row and returns one value vector per leaf column index
func readCells(pf *parquet.File, leaves []leaf, path string) ([][]interface{}, error) {
	numRows := int(pf.NumRows())
	byIndex := make([]*leaf, len(leaves))
	cells := make([][]interface{}, len(leaves))
	for i := range leaves {
		l := &leaves[i]
		if l.index < 0 || l.index >= len(leaves) {
			return nil, errors.NewColumnFormatError(opLoad, path, l.name, "column index out of range", nil)
		}
		byIndex[l.index] = l
		cells[l.index] = make([]interface{}, 0, numRows)
	}

	reader := parquet.NewReader(pf)
	defer reader.Close()

	rows := make([]parquet.Row, readBatchSize)
	for {
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			for _, v := range row {
				col := v.Column()
				if col < 0 || col >= len(byIndex) {
					continue
				}
				cells[col] = append(cells[col], byIndex[col].decoder.decode(v))
			}
		}
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.NewFormatError(opLoad, path, "failed to read rows", err)
		}
		if n == 0 {
			break
		}
	}

	return cells, nil
}

type indexPlan struct {
	name string
	leaf int
	rng  *metadata.RangeIndex
}

type columnPlan struct {
	key  schema.Key
	leaf int
}

type layoutPlan struct {
	index   []indexPlan
	columns []columnPlan
}

// planLayout decides which stored columns form the row index and in which
// order the data columns appear, then decodes every data column label.
func planLayout(leaves []leaf, meta *metadata.PandasMeta, path string) (*layoutPlan, error) {
	byName := make(map[string]int, len(leaves))
	for _, l := range leaves {
		byName[l.name] = l.index
	}

	plan := &layoutPlan{}
	isIndex := make(map[string]bool)

	if meta != nil {
		if len(meta.ColumnIndexes) != columnLevels {
			return nil, errors.NewFormatError(opLoad, path,
				fmt.Sprintf("expected a %d-level column index, found %d levels", columnLevels, len(meta.ColumnIndexes)), nil)
		}

		for _, ic := range meta.IndexColumns {
			if ic.Range != nil {
				plan.index = append(plan.index, indexPlan{name: ic.Range.Name.Value, rng: ic.Range})
				continue
			}
			idx, ok := byName[ic.Field]
			if !ok {
				return nil, errors.NewColumnFormatError(opLoad, path, ic.Field, "index column missing from file", nil)
			}
			name := ""
			if pc, ok := meta.ColumnByField(ic.Field); ok && pc.Name.Valid {
				name = pc.Name.Value
			} else if !strings.HasPrefix(ic.Field, metadata.IndexFieldPrefix) {
				name = ic.Field
			}
			plan.index = append(plan.index, indexPlan{name: name, leaf: idx})
			isIndex[ic.Field] = true
		}

		ordered := make(map[string]bool, len(meta.Columns))
		for _, pc := range meta.Columns {
			if isIndex[pc.FieldName] {
				continue
			}
			idx, ok := byName[pc.FieldName]
			if !ok {
				return nil, errors.NewColumnFormatError(opLoad, path, pc.FieldName, "column missing from file", nil)
			}
			ordered[pc.FieldName] = true
			col, err := decodeColumn(pc.FieldName, idx, path)
			if err != nil {
				return nil, err
			}
			plan.columns = append(plan.columns, col)
		}

		// stored columns the metadata does not list keep file order
		for _, l := range leaves {
			if isIndex[l.name] || ordered[l.name] {
				continue
			}
			col, err := decodeColumn(l.name, l.index, path)
			if err != nil {
				return nil, err
			}
			plan.columns = append(plan.columns, col)
		}
		return plan, nil
	}

	for _, l := range leaves {
		if strings.HasPrefix(l.name, metadata.IndexFieldPrefix) {
			plan.index = append(plan.index, indexPlan{leaf: l.index})
			continue
		}
		col, err := decodeColumn(l.name, l.index, path)
		if err != nil {
			return nil, err
		}
		plan.columns = append(plan.columns, col)
	}
	return plan, nil
}

func decodeColumn(label string, leafIndex int, path string) (columnPlan, error) {
	parts, err := metadata.ParseLabel(label)
	if err != nil {
		return columnPlan{}, errors.NewColumnFormatError(opLoad, path, label, "column label is not a hierarchical key", err)
	}
	if len(parts) != columnLevels {
		return columnPlan{}, errors.NewColumnFormatError(opLoad, path, label,
			fmt.Sprintf("expected %d key levels, got %d", columnLevels, len(parts)), nil)
	}
	return columnPlan{key: schema.Key(parts), leaf: leafIndex}, nil
}
