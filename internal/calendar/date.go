// Package calendar contains the date arithmetic behind the rental date picker:
// a civil Date type, month grids, the two-phase range selector, and the
// per-day classification the client uses to paint the calendar.
//
// Nothing here knows about HTTP or sessions. "Today" is always passed in by
// the caller so every function is deterministic under test.
package calendar

import (
	"fmt"
	"math"
	"time"
)

// isoLayout is the ISO-8601 calendar date format used on the wire.
const isoLayout = "2006-01-02"

// day is the length of one calendar day in the UTC representation used by Date.
const day = 24 * time.Hour

// Date is a calendar day with no time-of-day and no zone.
// Internally it is stored as midnight UTC so that differences between two
// Dates are always whole multiples of 24h, regardless of DST in the caller's zone.
// The zero value is not a valid day; use IsZero to detect it.
type Date struct {
	t time.Time
}

// NewDate returns the Date for the given year, month and day.
// Out-of-range values are normalised the same way time.Date does
// (e.g. January 32 becomes February 1).
func NewDate(year int, month time.Month, d int) Date {
	return Date{t: time.Date(year, month, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as observed in t's own location.
// Convert t with t.In(loc) first to pick the day in another zone.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses an ISO-8601 calendar date ("2025-01-10").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("calendar.ParseDate: %w", err)
	}
	return Date{t: t}, nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns d shifted by n days (n may be negative).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Year returns the year of d.
func (d Date) Year() int { return d.t.Year() }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of the month of d.
func (d Date) Day() int { return d.t.Day() }

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Time returns d as midnight UTC.
func (d Date) Time() time.Time { return d.t }

// String returns d in ISO-8601 form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(isoLayout)
}

// Format formats d with a time.Format layout.
func (d Date) Format(layout string) string { return d.t.Format(layout) }

// MarshalText implements encoding.TextMarshaler so Date encodes as "2025-01-10"
// in JSON and query strings.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DayCount returns the number of rental days covered by [start, end],
// counting both endpoints: ceil((end - start) / 1 day) + 1.
// A single-day rental (start == end) is 1.
func DayCount(start, end Date) int {
	diff := end.t.Sub(start.t)
	return int(math.Ceil(float64(diff)/float64(day))) + 1
}
