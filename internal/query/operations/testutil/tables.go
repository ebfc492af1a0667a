package testutil

import (
	"io"
	"log/slog"
	"time"

	"github.com/leengari/tableconv/internal/domain/data"
	"github.com/leengari/tableconv/internal/domain/schema"
)

// DiscardLogger returns a logger that drops every record
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestTable creates a hierarchical table with the given column keys
// and n rows; cell (r, c) holds float64(r*100 + c).
func CreateTestTable(name string, n int, keys ...schema.Key) *schema.Table {
	columns := make([]schema.Column, len(keys))
	for c, k := range keys {
		values := make([]interface{}, n)
		for r := range values {
			values[r] = float64(r*100 + c)
		}
		columns[c] = schema.Column{Key: k, Values: values}
	}
	table, err := schema.NewTable(name, nil, columns)
	if err != nil {
		panic(err)
	}
	return table
}

// CreatePricesTable creates a small market-data table indexed by timestamp:
// columns (ltp, AAPL), (vol, AAPL), (ltp, MSFT)
func CreatePricesTable() *schema.Table {
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	ts := make([]interface{}, 3)
	for i := range ts {
		ts[i] = data.Timestamp{Time: base.Add(time.Duration(i) * time.Minute)}
	}

	table, err := schema.NewTable("prices",
		[]schema.IndexLevel{{Name: "timestamp", Values: ts}},
		[]schema.Column{
			{Key: schema.Key{"ltp", "AAPL"}, Values: []interface{}{185.5, 185.75, nil}},
			{Key: schema.Key{"vol", "AAPL"}, Values: []interface{}{int64(1200), int64(800), int64(950)}},
			{Key: schema.Key{"ltp", "MSFT"}, Values: []interface{}{370.0, 371.25, 372.5}},
		})
	if err != nil {
		panic(err)
	}
	table.LevelNames = []string{"field", "ticker"}
	return table
}

// WideKeys returns n keys alternating between the given fields, e.g.
// (ltp, T0000), (vol, T0000), (ltp, T0001), ...
func WideKeys(n int, fields ...string) []schema.Key {
	keys := make([]schema.Key, 0, n)
	for i := 0; len(keys) < n; i++ {
		for _, f := range fields {
			if len(keys) == n {
				break
			}
			keys = append(keys, schema.Key{f, tickerName(i)})
		}
	}
	return keys
}

func tickerName(i int) string {
	const digits = "0123456789"
	b := []byte("T0000")
	for p := len(b) - 1; p > 0 && i > 0; p-- {
		b[p] = digits[i%10]
		i /= 10
	}
	return string(b)
}
