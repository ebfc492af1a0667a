package loader

import (
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/leengari/tableconv/internal/domain/data"
)

// julianUnixEpoch is the Julian day number of 1970-01-01, used by INT96 timestamps
const julianUnixEpoch = 2440588

// cellDecoder converts parquet values of one leaf column into cell values.
// A non-nil loc marks a timezone-aware timestamp column.
type cellDecoder struct {
	logical *format.LogicalType
	loc     *time.Location
}

// newCellDecoder builds the decoder for node. When the pandas metadata
// describes the column, zone is authoritative (nil for naive); otherwise
// awareness follows the parquet isAdjustedToUTC flag.
func newCellDecoder(node parquet.Node, described bool, zone *time.Location) cellDecoder {
	var lt *format.LogicalType
	if node != nil && node.Type() != nil {
		lt = node.Type().LogicalType()
	}
	loc := zone
	if !described && lt != nil && lt.Timestamp != nil && lt.Timestamp.IsAdjustedToUTC {
		loc = time.UTC
	}
	return cellDecoder{logical: lt, loc: loc}
}

func (d cellDecoder) decode(v parquet.Value) interface{} {
	if v.IsNull() {
		return nil
	}

	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		if d.logical != nil && d.logical.Date != nil {
			return data.DateFromDays(v.Int32())
		}
		return int64(v.Int32())
	case parquet.Int64:
		if d.logical != nil && d.logical.Timestamp != nil {
			return d.instant(d.timestamp(v.Int64()))
		}
		return v.Int64()
	case parquet.Int96:
		i96 := v.Int96()
		nanos := int64(uint64(i96[1])<<32 | uint64(i96[0]))
		days := int64(i96[2]) - julianUnixEpoch
		return d.instant(time.Unix(days*86400, nanos).UTC())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

func (d cellDecoder) timestamp(raw int64) time.Time {
	unit := d.logical.Timestamp.Unit
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(raw).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(raw).UTC()
	default:
		return time.Unix(0, raw).UTC()
	}
}

// instant places a UTC instant in the column's zone
func (d cellDecoder) instant(t time.Time) data.Timestamp {
	if d.loc == nil {
		return data.Timestamp{Time: t}
	}
	return data.Timestamp{Time: t.In(d.loc), Aware: true}
}
