package history

// Streak counts consecutive days with an entry, walking back from today.
// If today has no entry yet the walk starts at yesterday, so an unbroken run
// is not lost before the day's check-in.
func (h *History) Streak() int {
	day := h.today
	if _, ok := h.byDate[day]; !ok {
		day = day.AddDays(-1)
	}
	n := 0
	for {
		if _, ok := h.byDate[day]; !ok {
			return n
		}
		n++
		day = day.AddDays(-1)
	}
}

// LongestStreak returns the longest run of consecutive logged days.
func (h *History) LongestStreak() int {
	best, run := 0, 0
	for i, e := range h.entries {
		if i > 0 && h.entries[i-1].Date.AddDays(1) == e.Date {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
