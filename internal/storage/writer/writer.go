package writer

import (
	"bufio"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
)

const opWrite = "write"

// EncodeCSV writes t to w: a header of index names and flattened column
// names, then one record per row in table order.
func EncodeCSV(w io.Writer, t *schema.Table) error {
	if err := checkExportable(t); err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Index)+len(t.Columns))
	header = append(header, t.IndexNames()...)
	for _, c := range t.Columns {
		header = append(header, c.Key[0])
	}
	if err := writeRecord(cw, w, header); err != nil {
		return err
	}

	formatters := make([]func(interface{}) string, 0, len(header))
	for _, lvl := range t.Index {
		formatters = append(formatters, cellFormatter(lvl.Values))
	}
	for _, c := range t.Columns {
		formatters = append(formatters, cellFormatter(c.Values))
	}

	record := make([]string, len(header))
	for i := 0; i < t.NumRows(); i++ {
		values := t.Row(i).Values()
		for j, v := range values {
			record[j] = formatters[j](v)
		}
		if err := writeRecord(cw, w, record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSV exports t to path. The file is written to a temporary sibling and
// renamed into place only after every byte is flushed, so a failed export
// never leaves a truncated file. Compression is inferred from the extension.
func WriteCSV(t *schema.Table, path string, logger *slog.Logger) error {
	if err := checkExportable(t); err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}

	compression := InferCompression(path)
	if err := writeAtomic(path, func(w io.Writer) error {
		cw, err := compressWriter(w, compression)
		if err != nil {
			return err
		}
		err = EncodeCSV(cw, t)
		return multierr.Append(err, cw.Close())
	}); err != nil {
		return err
	}

	rows, cols := t.Shape()
	logger.Info("table exported",
		slog.String("path", path),
		slog.String("format", "csv"),
		slog.String("compression", string(compression)),
		slog.Int("rows", rows),
		slog.Int("columns", cols),
	)
	return nil
}

// writeRecord writes a single empty field as "" so the line is not blank;
// csv readers skip blank lines.
func writeRecord(cw *csv.Writer, w io.Writer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\"\"\n")
		return err
	}
	return cw.Write(record)
}

func checkExportable(t *schema.Table) error {
	if t == nil {
		return errors.NewStructuralError(opWrite, "", "cannot export nil table")
	}
	for _, c := range t.Columns {
		if c.Key.Levels() != 1 {
			return errors.NewStructuralError(opWrite, c.Key.String(), "columns must be flattened before export")
		}
	}
	return nil
}

// writeAtomic runs write against a buffered temp file in path's directory
// and renames it to path on success.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.NewIOError(opWrite, path, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	buf := bufio.NewWriter(tmp)
	werr := write(buf)
	if werr == nil {
		werr = buf.Flush()
	}
	if werr == nil {
		werr = tmp.Sync()
	}
	if werr = multierr.Append(werr, tmp.Close()); werr != nil {
		if errors.IsTableError(werr) {
			return werr
		}
		return errors.NewIOError(opWrite, path, werr)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return errors.NewIOError(opWrite, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.NewIOError(opWrite, path, err)
	}
	return nil
}
