package converter

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/storage/writer"
)

// Inspect prints a short summary of t: its shape, the first n index entries,
// the first n column keys and the first n rows.
func Inspect(w io.Writer, t *schema.Table, n int) error {
	rows, cols := t.Shape()
	if n < 0 {
		n = 0
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "table %s: %d rows x %d columns\n", t.Name, rows, cols)
	if len(t.LevelNames) > 0 {
		fmt.Fprintf(tw, "column levels: %s\n", strings.Join(t.LevelNames, ", "))
	}

	fmt.Fprintf(tw, "index (%s):", strings.Join(displayNames(t.IndexNames()), ", "))
	for _, row := range t.Head(n) {
		fmt.Fprintf(tw, " %s", formatIndex(row.Index))
	}
	fmt.Fprintln(tw)

	fmt.Fprint(tw, "columns:")
	for _, k := range t.Keys()[:min(n, cols)] {
		fmt.Fprintf(tw, " %s", k)
	}
	if cols > n {
		fmt.Fprintf(tw, " ... (%d more)", cols-n)
	}
	fmt.Fprintln(tw)

	// head, truncated to the same number of columns
	shown := min(n, cols)
	header := displayNames(t.IndexNames())
	for _, k := range t.Keys()[:shown] {
		header = append(header, k.String())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range t.Head(n) {
		fields := make([]string, 0, len(row.Index)+shown)
		for _, v := range row.Index {
			fields = append(fields, writer.FormatCell(v))
		}
		for _, v := range row.Cells[:shown] {
			fields = append(fields, displayCell(v))
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}

	return tw.Flush()
}

func displayNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = "-"
		}
		out[i] = n
	}
	return out
}

func displayCell(v interface{}) string {
	if f, ok := v.(float64); v == nil || (ok && math.IsNaN(f)) {
		return "NaN"
	}
	return writer.FormatCell(v)
}

func formatIndex(values []interface{}) string {
	if len(values) == 1 {
		return writer.FormatCell(values[0])
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = writer.FormatCell(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
