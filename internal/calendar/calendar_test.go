package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/riderent/backend/internal/calendar"
)

// today is the fixed "current day" used throughout these tests.
var today = calendar.NewDate(2025, time.January, 8)

func jan(d int) calendar.Date { return calendar.NewDate(2025, time.January, d) }

// ---- Date ------------------------------------------------------------------

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := calendar.ParseDate("2025-01-10")

	require.NoError(t, err)
	assert.Equal(t, jan(10), d)
	assert.Equal(t, "2025-01-10", d.String())
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := calendar.ParseDate("10/01/2025")

	assert.Error(t, err)
}

func TestDateOf_UsesCallerLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 20:00 UTC on Jan 9 is already Jan 10 in Jakarta.
	instant := time.Date(2025, time.January, 9, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, jan(9), calendar.DateOf(instant))
	assert.Equal(t, jan(10), calendar.DateOf(instant.In(jakarta)))
}

func TestDayCount(t *testing.T) {
	tests := []struct {
		name       string
		start, end calendar.Date
		want       int
	}{
		{"single day", jan(10), jan(10), 1},
		{"five days", jan(10), jan(14), 5},
		{"across month end", jan(30), calendar.NewDate(2025, time.February, 2), 4},
		{"across leap day", calendar.NewDate(2024, time.February, 28), calendar.NewDate(2024, time.March, 1), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.DayCount(tt.start, tt.end))
		})
	}
}

// ---- Month grid ------------------------------------------------------------

func TestGrid_LeadingBlanksAlignToSunday(t *testing.T) {
	// January 1st 2025 is a Wednesday: three blanks (Su, Mo, Tu).
	cells := calendar.Grid(calendar.Month{Year: 2025, Month: time.January})

	require.Len(t, cells, 3+31)
	for i := 0; i < 3; i++ {
		assert.True(t, cells[i].Blank, "cell %d should be blank", i)
	}
	assert.False(t, cells[3].Blank)
	assert.Equal(t, jan(1), cells[3].Date)
	assert.Equal(t, jan(31), cells[len(cells)-1].Date, "no trailing padding")
}

func TestGrid_MonthStartingOnSundayHasNoBlanks(t *testing.T) {
	// June 1st 2025 is a Sunday.
	cells := calendar.Grid(calendar.Month{Year: 2025, Month: time.June})

	require.Len(t, cells, 30)
	assert.False(t, cells[0].Blank)
}

func TestMonth_AddAndParse(t *testing.T) {
	m, err := calendar.ParseMonth("2025-01")
	require.NoError(t, err)

	assert.Equal(t, "2024-12", m.Add(-1).String())
	assert.Equal(t, "2025-02", m.Add(1).String())
	assert.Equal(t, 28, m.Add(1).Days())
	assert.Equal(t, "January 2025", m.Title())
}

func TestRender_ClassificationPriority(t *testing.T) {
	start, end := jan(10), jan(14)
	r := calendar.Range{Start: &start, End: &end}

	cells := calendar.Render(calendar.Month{Year: 2025, Month: time.January}, today, r)

	byDay := map[int]calendar.DayState{}
	for _, c := range cells {
		if !c.Blank {
			byDay[c.Date.Day()] = c.State
		}
	}
	assert.Equal(t, calendar.DayDisabled, byDay[7])
	assert.Equal(t, calendar.DayDefault, byDay[8], "today is selectable")
	assert.Equal(t, calendar.DaySelected, byDay[10])
	assert.Equal(t, calendar.DayInRange, byDay[12])
	assert.Equal(t, calendar.DaySelected, byDay[14])
	assert.Equal(t, calendar.DayDefault, byDay[15])
}

func TestClassify_DisabledBeatsSelected(t *testing.T) {
	past := jan(5)
	r := calendar.Range{Start: &past}

	assert.Equal(t, calendar.DayDisabled, calendar.Classify(past, today, r))
}

func TestClassify_NoInRangeUntilComplete(t *testing.T) {
	start := jan(10)
	r := calendar.Range{Start: &start}

	assert.Equal(t, calendar.DaySelected, calendar.Classify(jan(10), today, r))
	assert.Equal(t, calendar.DayDefault, calendar.Classify(jan(12), today, r))
}

// ---- Selector --------------------------------------------------------------

func TestSelector_PastClickIsNoOp(t *testing.T) {
	var s calendar.Selector

	for _, d := range []calendar.Date{jan(1), jan(7)} {
		completed := s.Click(d, today)

		assert.False(t, completed)
		assert.Nil(t, s.Range().Start)
		assert.False(t, s.SelectingEnd())
	}
}

func TestSelector_PastClickWhileSelectingEndIsNoOp(t *testing.T) {
	var s calendar.Selector
	s.Click(jan(10), today)

	s.Click(jan(3), today)

	require.NotNil(t, s.Range().Start)
	assert.Equal(t, jan(10), *s.Range().Start)
	assert.True(t, s.SelectingEnd())
}

func TestSelector_FirstClickStartsRange(t *testing.T) {
	var s calendar.Selector

	completed := s.Click(today, today)

	assert.False(t, completed)
	assert.True(t, s.SelectingEnd())
	require.NotNil(t, s.Range().Start)
	assert.Equal(t, today, *s.Range().Start)
	assert.Nil(t, s.Range().End)
}

func TestSelector_EarlierSecondClickRestarts(t *testing.T) {
	var s calendar.Selector
	s.Click(jan(14), today)

	completed := s.Click(jan(10), today)

	assert.False(t, completed)
	assert.True(t, s.SelectingEnd(), "still selecting the end")
	assert.Equal(t, jan(10), *s.Range().Start)
	assert.Nil(t, s.Range().End)
}

func TestSelector_SecondClickCommits(t *testing.T) {
	var s calendar.Selector
	s.Click(jan(10), today)

	completed := s.Click(jan(14), today)

	assert.True(t, completed)
	assert.False(t, s.SelectingEnd())
	r := s.Range()
	require.True(t, r.Complete())
	assert.Equal(t, jan(10), *r.Start)
	assert.Equal(t, jan(14), *r.End)
	n, ok := r.DayCount()
	assert.True(t, ok)
	assert.Equal(t, 5, n)
}

func TestSelector_SameDayTwiceIsSingleDayRental(t *testing.T) {
	var s calendar.Selector
	s.Click(jan(10), today)

	completed := s.Click(jan(10), today)

	assert.True(t, completed)
	n, _ := s.Range().DayCount()
	assert.Equal(t, 1, n)
}

func TestSelector_ClickAfterCommitStartsOver(t *testing.T) {
	var s calendar.Selector
	s.Click(jan(10), today)
	s.Click(jan(14), today)

	s.Click(jan(20), today)

	r := s.Range()
	assert.Equal(t, jan(20), *r.Start)
	assert.Nil(t, r.End)
	assert.True(t, s.SelectingEnd())
}

func TestSelector_QuickSelect(t *testing.T) {
	for _, opt := range calendar.QuickOptions {
		t.Run(opt.Label, func(t *testing.T) {
			var s calendar.Selector
			// Leave the selector mid-selection; quick select must override it.
			s.Click(jan(20), today)

			require.NoError(t, s.QuickSelect(opt.Days, today))

			r := s.Range()
			require.True(t, r.Complete())
			assert.Equal(t, today, *r.Start)
			assert.Equal(t, today.AddDays(opt.Days-1), *r.End)
			assert.False(t, s.SelectingEnd())
			n, _ := r.DayCount()
			assert.Equal(t, opt.Days, n)
		})
	}
}

func TestSelector_QuickSelectRejectsZero(t *testing.T) {
	var s calendar.Selector

	err := s.QuickSelect(0, today)

	assert.ErrorIs(t, err, calendar.ErrInvalidDayCount)
}

func TestSelector_RangeIsACopy(t *testing.T) {
	var s calendar.Selector
	s.Click(jan(10), today)

	r := s.Range()
	*r.Start = jan(25)

	assert.Equal(t, jan(10), *s.Range().Start)
}

func TestSelector_Reset(t *testing.T) {
	var s calendar.Selector
	s.Click(jan(10), today)

	s.Reset()

	assert.Nil(t, s.Range().Start)
	assert.False(t, s.SelectingEnd())
}
