package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a point in time read from a timestamp column.
// Naive values are held in UTC with Aware unset; aware values keep the
// location of their column, so Time.Location() is the zone to print in.
type Timestamp struct {
	Time  time.Time
	Aware bool
}

// ZoneName returns the name stored in pandas metadata for an aware timestamp:
// an IANA name, "UTC", or a fixed "+HH:MM" offset
func (ts Timestamp) ZoneName() string {
	loc := ts.Time.Location()
	if loc == time.UTC {
		return "UTC"
	}
	if loc != time.Local && loc.String() != "" {
		return loc.String()
	}
	_, off := ts.Time.Zone()
	if off == 0 {
		return "UTC"
	}
	return FormatOffset(off)
}

// LoadZone resolves a pandas timezone name. Fixed offsets such as "+05:30"
// become fixed zones; anything else goes through the IANA database.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "" || strings.EqualFold(name, "UTC") || name == "Z":
		return time.UTC, nil
	case name[0] == '+' || name[0] == '-':
		off, err := parseOffset(name)
		if err != nil {
			return nil, err
		}
		return time.FixedZone(name, off), nil
	}
	return time.LoadLocation(name)
}

// FormatOffset renders a UTC offset in seconds as ±HH:MM
func FormatOffset(seconds int) string {
	sign := byte('+')
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, seconds%3600/60)
}

func parseOffset(s string) (int, error) {
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	hh, mm, ok := strings.Cut(s[1:], ":")
	if !ok && len(hh) == 4 {
		hh, mm = hh[:2], hh[2:]
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h > 23 {
		return 0, fmt.Errorf("invalid utc offset %q", s)
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m > 59 {
			return 0, fmt.Errorf("invalid utc offset %q", s)
		}
	}
	return sign * (h*3600 + m*60), nil
}

// Date is a calendar date without a time component
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DaysSinceEpoch returns the number of days between 1970-01-01 and d
func (d Date) DaysSinceEpoch() int32 {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return int32(t.Unix() / 86400)
}

// DateFromDays is the inverse of DaysSinceEpoch
func DateFromDays(days int32) Date {
	return DateOf(time.Unix(int64(days)*86400, 0).UTC())
}
