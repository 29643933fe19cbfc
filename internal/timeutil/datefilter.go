package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// StartOfDay returns midnight (00:00:00) of the given day in the same timezone
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the given day (23:59:59.999999999)
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfMonth returns the first day of the month at 00:00:00 in the same timezone
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last nanosecond of the last day of the month (23:59:59.999999999)
func EndOfMonth(t time.Time) time.Time {
	// First day of next month minus one nanosecond handles 28-31 day months.
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// DaysIn returns the number of days in the given month, accounting for leap years.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekdayOffset returns how many cells precede day with the given weekday in a
// week that starts on weekStart. A Sunday-start grid with a Wednesday yields 3.
func WeekdayOffset(day, weekStart time.Weekday) int {
	return (int(day) - int(weekStart) + 7) % 7
}

// ParseWeekStart converts "sunday" or "monday" (case-insensitive) to a time.Weekday.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("invalid week start day %q (use \"sunday\" or \"monday\")", s)
	}
}

// WeekdayHeaders returns single-letter weekday headers starting at weekStart.
func WeekdayHeaders(weekStart time.Weekday) []string {
	letters := []string{"S", "M", "T", "W", "T", "F", "S"}
	headers := make([]string, 7)
	for i := 0; i < 7; i++ {
		headers[i] = letters[(int(weekStart)+i)%7]
	}
	return headers
}

// IsInRange checks if the given date falls within [start, end] (inclusive).
// A zero start or end leaves that side of the range open.
func IsInRange(d, start, end Date) bool {
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}
