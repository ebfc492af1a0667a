package writer_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/tableconv/internal/domain/data"
	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/query/operations/testutil"
	"github.com/leengari/tableconv/internal/storage/writer"
)

func flatTable(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.NewTable("subset",
		[]schema.IndexLevel{{Name: "timestamp", Values: []interface{}{"t0", "t1"}}},
		[]schema.Column{
			{Key: schema.Key{"ltp_AAPL"}, Values: []interface{}{185.5, nil}},
			{Key: schema.Key{"ltp_MSFT"}, Values: []interface{}{370.0, 371.25}},
		})
	require.NoError(t, err)
	return tbl
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"null", nil, ""},
		{"nan", math.NaN(), ""},
		{"integral float", 370.0, "370.0"},
		{"fraction", 185.75, "185.75"},
		{"small", 0.00001, "1e-05"},
		{"large", 1e16, "1e+16"},
		{"negative inf", math.Inf(-1), "-inf"},
		{"int", int64(-42), "-42"},
		{"bool", true, "True"},
		{"string with comma", "a,b", "a,b"},
		{"naive timestamp", data.Timestamp{Time: ts}, "2024-01-02 09:15:00"},
		{"aware timestamp", data.Timestamp{Time: ts, Aware: true}, "2024-01-02 09:15:00+00:00"},
		{"fractional timestamp", data.Timestamp{Time: ts.Add(500 * time.Millisecond)}, "2024-01-02 09:15:00.500"},
		{"microsecond timestamp", data.Timestamp{Time: ts.Add(1500 * time.Microsecond)}, "2024-01-02 09:15:00.001500"},
		{"midnight timestamp", data.Timestamp{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, "2024-01-02"},
		{"zoned timestamp", data.Timestamp{Time: ts.In(time.FixedZone("+05:30", 19800)), Aware: true}, "2024-01-02 14:45:00+05:30"},
		{"zoned fraction", data.Timestamp{Time: ts.Add(2500 * time.Nanosecond).In(time.FixedZone("-04:00", -14400)), Aware: true}, "2024-01-02 05:15:00.000002500-04:00"},
		{"date", data.Date{Year: 2024, Month: time.March, Day: 5}, "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writer.FormatCell(tt.in))
		})
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writer.EncodeCSV(&buf, flatTable(t)))

	assert.Equal(t, "timestamp,ltp_AAPL,ltp_MSFT\nt0,185.5,370.0\nt1,,371.25\n", buf.String())
}

func TestEncodeCSV_TimestampResolutionIsPerColumn(t *testing.T) {
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	days := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	tbl, err := schema.NewTable("ticks",
		[]schema.IndexLevel{{Name: "ts", Values: []interface{}{
			data.Timestamp{Time: base},
			data.Timestamp{Time: base.Add(500 * time.Millisecond)},
			nil,
		}}},
		[]schema.Column{
			{Key: schema.Key{"day"}, Values: []interface{}{
				data.Timestamp{Time: days},
				data.Timestamp{Time: days.AddDate(0, 0, 1)},
				data.Timestamp{Time: days.AddDate(0, 0, 2)},
			}},
			{Key: schema.Key{"seen"}, Values: []interface{}{
				data.Timestamp{Time: days},
				data.Timestamp{Time: base},
				nil,
			}},
		})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writer.EncodeCSV(&buf, tbl))

	assert.Equal(t, "ts,day,seen\n"+
		"2024-01-02 09:15:00.000,2024-01-02,2024-01-02 00:00:00\n"+
		"2024-01-02 09:15:00.500,2024-01-03,2024-01-02 09:15:00\n"+
		",2024-01-04,\n", buf.String())
}

func TestEncodeCSV_AwareTimestampsKeepTheirZone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	at := time.Date(2024, 1, 2, 9, 15, 0, 0, kolkata)

	tbl, err := schema.NewTable("ist",
		[]schema.IndexLevel{{Name: "ts", Values: []interface{}{data.Timestamp{Time: at, Aware: true}}}},
		[]schema.Column{{Key: schema.Key{"ltp_AAPL"}, Values: []interface{}{185.5}}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writer.EncodeCSV(&buf, tbl))
	assert.Equal(t, "ts,ltp_AAPL\n2024-01-02 09:15:00+05:30,185.5\n", buf.String())
}

func TestWriteCSV_NilLoggerFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writer.WriteCSV(flatTable(t), path, nil))
	assert.FileExists(t, path)

	pq := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, writer.WriteParquet(testutil.CreatePricesTable(), pq, nil))
	assert.FileExists(t, pq)
}

func TestEncodeCSV_ZeroColumnsKeepsIndex(t *testing.T) {
	tbl := flatTable(t).WithColumns(nil)
	tbl.Index[0].Name = ""

	var buf bytes.Buffer
	require.NoError(t, writer.EncodeCSV(&buf, tbl))

	records := testutil.ParseCSV(t, &buf)
	assert.Equal(t, [][]string{{""}, {"t0"}, {"t1"}}, records)
}

func TestEncodeCSV_RejectsHierarchicalColumns(t *testing.T) {
	err := writer.EncodeCSV(&bytes.Buffer{}, testutil.CreatePricesTable())
	assert.ErrorIs(t, err, errors.ErrStructure)
}

func TestWriteCSV_CreatesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Set1_subset.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the export\n"), 0644))

	require.NoError(t, writer.WriteCSV(flatTable(t), path, testutil.DiscardLogger()))

	records := testutil.ReadCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"timestamp", "ltp_AAPL", "ltp_MSFT"}, records[0])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteCSV_UnwritableDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	err := writer.WriteCSV(flatTable(t), path, testutil.DiscardLogger())
	assert.ErrorIs(t, err, errors.ErrIO)
	assert.NoFileExists(t, path)
}

func TestWriteCSV_StructuralErrorLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := writer.WriteCSV(testutil.CreatePricesTable(), path, testutil.DiscardLogger())
	assert.ErrorIs(t, err, errors.ErrStructure)
	assert.NoFileExists(t, path)
}

func TestWriteCSV_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.gz")
	require.NoError(t, writer.WriteCSV(flatTable(t), path, testutil.DiscardLogger()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)

	records := testutil.ParseCSV(t, zr)
	assert.Len(t, records, 3)
	assert.Equal(t, []string{"t1", "", "371.25"}, records[2])
}

func TestWriteCSV_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.zst")
	require.NoError(t, writer.WriteCSV(flatTable(t), path, testutil.DiscardLogger()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	records := testutil.ParseCSV(t, zr)
	assert.Len(t, records, 3)
}

func TestInferCompression(t *testing.T) {
	assert.Equal(t, writer.CompressionGzip, writer.InferCompression("a.csv.gz"))
	assert.Equal(t, writer.CompressionZstd, writer.InferCompression("a.csv.ZST"))
	assert.Equal(t, writer.CompressionNone, writer.InferCompression("a.csv"))
}

func TestWriteParquet_RejectsMixedKeyLevels(t *testing.T) {
	tbl, err := schema.NewTable("mixed", nil, []schema.Column{
		{Key: schema.Key{"ltp", "AAPL"}, Values: []interface{}{1.0}},
		{Key: schema.Key{"ltp"}, Values: []interface{}{1.0}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mixed.parquet")
	err = writer.WriteParquet(tbl, path, testutil.DiscardLogger())
	assert.ErrorIs(t, err, errors.ErrStructure)
	assert.NoFileExists(t, path)
}

func TestWriteParquet_RejectsMixedCellTypes(t *testing.T) {
	tbl, err := schema.NewTable("mixed", nil, []schema.Column{
		{Key: schema.Key{"ltp", "AAPL"}, Values: []interface{}{1.0, "oops"}},
	})
	require.NoError(t, err)

	err = writer.WriteParquet(tbl, filepath.Join(t.TempDir(), "mixed.parquet"), testutil.DiscardLogger())
	assert.ErrorIs(t, err, errors.ErrStructure)
}
