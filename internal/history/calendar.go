package history

import (
	"time"

	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/timeutil"
)

// Day is one cell of a month grid.
type Day struct {
	Date     timeutil.Date
	IsToday  bool
	HasEntry bool
	Entry    mood.Entry
}

// Calendar is a month grid. Offset is the number of blank cells before day 1.
type Calendar struct {
	Year      int
	Month     time.Month
	WeekStart time.Weekday
	Offset    int
	Days      []Day
	Entries   map[timeutil.Date]mood.Entry
}

// Logged returns how many days of the month have an entry.
func (c Calendar) Logged() int {
	return len(c.Entries)
}

// Weeks returns the grid as rows of seven cells; nil cells are padding.
func (c Calendar) Weeks() [][]*Day {
	cells := make([]*Day, c.Offset, c.Offset+len(c.Days)+6)
	for i := range c.Days {
		cells = append(cells, &c.Days[i])
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}
	weeks := make([][]*Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Month returns the grid for year/month with entries looked up from the same
// keyed data the streak uses. Only dates inside the month appear.
func (h *History) Month(year int, month time.Month, weekStart time.Weekday) Calendar {
	first := timeutil.NewDate(year, month, 1)
	n := timeutil.DaysIn(first.Year, first.Month)

	cal := Calendar{
		Year:      first.Year,
		Month:     first.Month,
		WeekStart: weekStart,
		Offset:    timeutil.WeekdayOffset(first.Weekday(), weekStart),
		Days:      make([]Day, n),
		Entries:   make(map[timeutil.Date]mood.Entry),
	}
	for i := 0; i < n; i++ {
		d := first.AddDays(i)
		day := Day{Date: d, IsToday: d == h.today}
		if e, ok := h.byDate[d]; ok {
			day.HasEntry = true
			day.Entry = e
			cal.Entries[d] = e
		}
		cal.Days[i] = day
	}
	return cal
}
