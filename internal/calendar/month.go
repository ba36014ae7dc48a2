package calendar

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month identifies one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// ParseMonth parses a "2025-01" month string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("calendar.ParseMonth: %w", err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of m.
func (m Month) First() Date { return NewDate(m.Year, m.Month, 1) }

// Days returns the number of days in m.
func (m Month) Days() int {
	// Day 0 of the next month is the last day of this one.
	return NewDate(m.Year, m.Month+1, 0).Day()
}

// Add returns the month n months after m (n may be negative).
func (m Month) Add(n int) Month {
	return MonthOf(NewDate(m.Year, m.Month+time.Month(n), 1))
}

// String returns m as "2025-01".
func (m Month) String() string { return m.First().Format(monthLayout) }

// Title returns m as "January 2025", the heading shown above the grid.
func (m Month) Title() string { return m.First().Format("January 2006") }

// Cell is one slot in a month grid. Blank cells pad the first week so that
// the 1st lands under its weekday column; they carry no date.
type Cell struct {
	Date  Date
	Blank bool
	State DayState
}

// Grid returns the cells for m: one blank per weekday before the 1st (weeks
// start on Sunday) followed by one cell per day of the month. The last week
// is not padded. States are left at DayDefault; see Render for classified cells.
func Grid(m Month) []Cell {
	first := m.First()
	lead := int(first.Weekday()) // time.Sunday == 0
	n := m.Days()

	cells := make([]Cell, 0, lead+n)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for i := 0; i < n; i++ {
		cells = append(cells, Cell{Date: first.AddDays(i)})
	}
	return cells
}

// Render returns Grid(m) with every non-blank cell classified against today
// and the committed range r.
func Render(m Month, today Date, r Range) []Cell {
	cells := Grid(m)
	for i := range cells {
		if cells[i].Blank {
			continue
		}
		cells[i].State = Classify(cells[i].Date, today, r)
	}
	return cells
}

// WeekdayHeaders are the column labels for a Sunday-first grid.
var WeekdayHeaders = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}
