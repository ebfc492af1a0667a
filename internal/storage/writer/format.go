package writer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leengari/tableconv/internal/domain/data"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// FormatCell renders a cell the way pandas' to_csv does: nulls and NaN as
// empty strings, floats in shortest round-trip form, booleans as True/False.
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case data.Timestamp:
		if x.Aware {
			return formatAware(x.Time)
		}
		return formatNaive(x.Time, precisionOf(x.Time))
	case data.Date:
		return time.Date(x.Year, x.Month, x.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
	case time.Time:
		return formatNaive(x, precisionOf(x))
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat follows Python's float repr
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// precision is the number of fraction digits printed for naive timestamps.
// precisionDate prints the calendar date alone.
type precision int

const (
	precisionDate    precision = -1
	precisionSeconds precision = 0
	precisionMillis  precision = 3
	precisionMicros  precision = 6
	precisionNanos   precision = 9
)

// cellFormatter returns the formatter for one index level or column.
// pandas picks a single resolution for a column of naive timestamps, so such
// columns share the finest precision any of their values needs.
func cellFormatter(values []interface{}) func(interface{}) string {
	p, ok := columnPrecision(values)
	if !ok {
		return FormatCell
	}
	return func(v interface{}) string {
		if ts, isTS := v.(data.Timestamp); isTS {
			return formatNaive(ts.Time, p)
		}
		return FormatCell(v)
	}
}

// columnPrecision reports the precision for values, or false unless every
// non-null value is a naive timestamp
func columnPrecision(values []interface{}) (precision, bool) {
	p := precisionDate
	seen := false
	for _, v := range values {
		switch x := v.(type) {
		case nil:
		case data.Timestamp:
			if x.Aware {
				return 0, false
			}
			seen = true
			p = max(p, precisionOf(x.Time))
		default:
			return 0, false
		}
	}
	return p, seen
}

func precisionOf(t time.Time) precision {
	t = t.UTC()
	ns := t.Nanosecond()
	switch {
	case ns%1000 != 0:
		return precisionNanos
	case ns%1_000_000 != 0:
		return precisionMicros
	case ns != 0:
		return precisionMillis
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return precisionDate
	default:
		return precisionSeconds
	}
}

func formatNaive(t time.Time, p precision) string {
	t = t.UTC()
	if p == precisionDate {
		return t.Format(dateLayout)
	}
	s := t.Format(timestampLayout)
	if p > precisionSeconds {
		s += "." + fmt.Sprintf("%09d", t.Nanosecond())[:p]
	}
	return s
}

// formatAware prints t in its own zone with a ±HH:MM offset, like str(Timestamp)
func formatAware(t time.Time) string {
	s := t.Format(timestampLayout)
	switch ns := t.Nanosecond(); {
	case ns%1000 != 0:
		s += fmt.Sprintf(".%09d", ns)
	case ns != 0:
		s += fmt.Sprintf(".%06d", ns/1000)
	}
	return s + t.Format("-07:00")
}
