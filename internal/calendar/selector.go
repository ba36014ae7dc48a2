package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidDayCount is returned by QuickSelect when asked for fewer than one day.
var ErrInvalidDayCount = errors.New("day count must be at least 1")

// Range is a rental period. Either endpoint may be nil while the user is
// still picking; when both are set, Start is never after End.
type Range struct {
	Start *Date
	End   *Date
}

// Complete reports whether both endpoints are set.
func (r Range) Complete() bool {
	return r.Start != nil && r.End != nil
}

// DayCount returns the inclusive number of days in r, or false if r is incomplete.
func (r Range) DayCount() (int, bool) {
	if !r.Complete() {
		return 0, false
	}
	return DayCount(*r.Start, *r.End), true
}

// clone returns a copy of r that shares no pointers with the original.
func (r Range) clone() Range {
	var out Range
	if r.Start != nil {
		s := *r.Start
		out.Start = &s
	}
	if r.End != nil {
		e := *r.End
		out.End = &e
	}
	return out
}

// DayState is how one day of the grid is painted.
type DayState string

const (
	DayDefault  DayState = "default"
	DayDisabled DayState = "disabled"
	DaySelected DayState = "selected"
	DayInRange  DayState = "in_range"
)

// Classify returns the state of d, in priority order:
// disabled (before today) > selected (equals the start or end) >
// in range (between start and end, both set) > default.
func Classify(d, today Date, r Range) DayState {
	switch {
	case d.Before(today):
		return DayDisabled
	case r.Start != nil && d.Equal(*r.Start), r.End != nil && d.Equal(*r.End):
		return DaySelected
	case r.Complete() && !d.Before(*r.Start) && !d.After(*r.End):
		return DayInRange
	default:
		return DayDefault
	}
}

// QuickOption is a preset rental length offered next to the calendar.
type QuickOption struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// QuickOptions are the presets shown in the "Quick select" row.
var QuickOptions = []QuickOption{
	{Label: "Today", Days: 1},
	{Label: "3 days", Days: 3},
	{Label: "1 week", Days: 7},
	{Label: "2 weeks", Days: 14},
}

// Selector turns calendar clicks into a committed range using two-phase
// click capture: the first click picks the start, the second the end.
// The zero value is ready to use.
type Selector struct {
	rng          Range
	selectingEnd bool
}

// Range returns a copy of the current range.
func (s *Selector) Range() Range { return s.rng.clone() }

// SelectingEnd reports whether the next click picks the end date.
func (s *Selector) SelectingEnd() bool { return s.selectingEnd }

// Reset clears the range and returns to start selection.
func (s *Selector) Reset() {
	s.rng = Range{}
	s.selectingEnd = false
}

// Click applies one calendar click and reports whether it committed a
// complete range.
//
// Days before today are ignored in both phases. While selecting the end, a
// day before the provisional start restarts the range from that day and
// stays in end selection; any other day commits the range.
func (s *Selector) Click(d, today Date) bool {
	if d.Before(today) {
		return false
	}

	if !s.selectingEnd {
		s.rng = Range{Start: &d}
		s.selectingEnd = true
		return false
	}

	if s.rng.Start != nil && d.Before(*s.rng.Start) {
		s.rng = Range{Start: &d}
		return false
	}

	start := *s.rng.Start
	s.rng = Range{Start: &start, End: &d}
	s.selectingEnd = false
	return true
}

// QuickSelect sets the range to n days starting today, leaving end
// selection mode. It always commits, whatever the previous state was.
func (s *Selector) QuickSelect(n int, today Date) error {
	if n < 1 {
		return fmt.Errorf("calendar.Selector.QuickSelect: %w", ErrInvalidDayCount)
	}
	start := today
	end := today.AddDays(n - 1)
	s.rng = Range{Start: &start, End: &end}
	s.selectingEnd = false
	return nil
}
