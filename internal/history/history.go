// Package history derives trend, calendar and streak views from a snapshot of
// mood records. Everything here is a pure function of the snapshot and the
// reference date; nothing reads the clock or performs I/O, so a History can be
// built and queried from multiple goroutines on independent snapshots.
package history

import (
	"sort"

	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
)

// Skip describes a record excluded from every derived view.
type Skip struct {
	ID     string
	Reason string
}

// History is an immutable, date-keyed view of one user's mood entries.
type History struct {
	today      timeutil.Date
	entries    []mood.Entry // ascending by date, one per date
	byDate     map[timeutil.Date]mood.Entry
	skipped    []Skip
	duplicates int
}

// Aggregate validates raw store records and builds a History relative to today.
// Records that fail validation are reported by Skipped and never abort aggregation.
// The input slice is not modified.
func Aggregate(records []storage.Record, today timeutil.Date) *History {
	entries := make([]mood.Entry, 0, len(records))
	var skipped []Skip
	for _, r := range records {
		e, err := mood.FromRecord(r)
		if err != nil {
			skipped = append(skipped, Skip{ID: r.ID(), Reason: err.Error()})
			continue
		}
		entries = append(entries, e)
	}
	return FromEntries(entries, skipped, today)
}

// FromEntries builds a History from already validated entries.
// When several entries share a date, the most recently created one is kept and
// the rest are counted by Duplicates.
func FromEntries(entries []mood.Entry, skipped []Skip, today timeutil.Date) *History {
	sorted := make([]mood.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Date.Compare(sorted[j].Date); c != 0 {
			return c < 0
		}
		return sorted[i].CreatedDate.Before(sorted[j].CreatedDate)
	})

	h := &History{
		today:   today,
		entries: make([]mood.Entry, 0, len(sorted)),
		byDate:  make(map[timeutil.Date]mood.Entry, len(sorted)),
		skipped: append([]Skip(nil), skipped...),
	}
	for _, e := range sorted {
		if _, dup := h.byDate[e.Date]; dup {
			h.duplicates++
			h.entries[len(h.entries)-1] = e
		} else {
			h.entries = append(h.entries, e)
		}
		h.byDate[e.Date] = e
	}
	return h
}

// Today returns the reference date the History was built with.
func (h *History) Today() timeutil.Date {
	return h.today
}

// Len returns the number of dated entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns the entries in ascending date order.
func (h *History) Entries() []mood.Entry {
	return append([]mood.Entry(nil), h.entries...)
}

// On returns the entry logged for date.
func (h *History) On(date timeutil.Date) (mood.Entry, bool) {
	e, ok := h.byDate[date]
	return e, ok
}

// TodayEntry returns today's check-in, if any.
func (h *History) TodayEntry() (mood.Entry, bool) {
	return h.On(h.today)
}

// Skipped returns the records excluded because of malformed dates or scores.
func (h *History) Skipped() []Skip {
	return append([]Skip(nil), h.skipped...)
}

// Duplicates returns how many entries were dropped because another entry had the same date.
func (h *History) Duplicates() int {
	return h.duplicates
}
