package timeutil

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	tm := time.Date(2024, time.March, 4, 23, 30, 0, 0, loc)

	got := DateOf(tm)
	want := Date{Year: 2024, Month: time.March, Day: 4}
	if got != want {
		t.Errorf("DateOf(%v) = %v, want %v", tm, got, want)
	}

	// 23:30 UTC is already the next morning in UTC+9.
	late := time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC).In(loc)
	if got := DateOf(late); got != (Date{2024, time.March, 5}) {
		t.Errorf("DateOf(%v) = %v, want 2024-03-05", late, got)
	}
}

func TestNewDate_Normalizes(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  string
	}{
		{"regular", 2024, time.January, 15, "2024-01-15"},
		{"feb 30 in leap year", 2024, time.February, 30, "2024-03-01"},
		{"feb 29 in common year", 2023, time.February, 29, "2023-03-01"},
		{"day zero", 2024, time.March, 0, "2024-02-29"},
		{"month 13", 2024, 13, 1, "2025-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewDate(tt.year, tt.month, tt.day).String(); got != tt.want {
				t.Errorf("NewDate(%d, %d, %d) = %s, want %s", tt.year, tt.month, tt.day, got, tt.want)
			}
		})
	}
}

func TestDate_AddDays(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		want  Date
	}{
		{"forward", NewDate(2024, time.March, 1), 3, NewDate(2024, time.March, 4)},
		{"backward across month", NewDate(2024, time.March, 1), -1, NewDate(2024, time.February, 29)},
		{"backward across year", NewDate(2024, time.January, 1), -1, NewDate(2023, time.December, 31)},
		{"zero", NewDate(2024, time.June, 10), 0, NewDate(2024, time.June, 10)},
		{"across DST change", NewDate(2024, time.March, 9), 2, NewDate(2024, time.March, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.AddDays(tt.n); got != tt.want {
				t.Errorf("%v.AddDays(%d) = %v, want %v", tt.start, tt.n, got, tt.want)
			}
		})
	}
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2024, time.March, 1)
	b := NewDate(2024, time.March, 3)
	c := NewDate(2025, time.January, 1)

	if !a.Before(b) || b.Before(a) {
		t.Errorf("expected %v before %v", a, b)
	}
	if !c.After(b) || b.After(c) {
		t.Errorf("expected %v after %v", c, b)
	}
	if !a.Equal(NewDate(2024, time.March, 1)) {
		t.Errorf("expected %v to equal itself", a)
	}
	if a.Compare(a) != 0 {
		t.Errorf("Compare(self) = %d, want 0", a.Compare(a))
	}

	// Dates are compared as calendar dates, so "2024-10-01" sorts after "2024-9-30".
	oct := NewDate(2024, time.October, 1)
	sep := NewDate(2024, time.September, 30)
	if !sep.Before(oct) {
		t.Errorf("expected %v before %v", sep, oct)
	}
}

func TestDate_Weekday(t *testing.T) {
	// 2024-03-01 was a Friday.
	if got := NewDate(2024, time.March, 1).Weekday(); got != time.Friday {
		t.Errorf("Weekday() = %v, want Friday", got)
	}
}

func TestDate_FormatAndIsZero(t *testing.T) {
	d := NewDate(2024, time.January, 2)
	if got := d.Format("Jan 2"); got != "Jan 2" {
		t.Errorf("Format(\"Jan 2\") = %q", got)
	}
	if d.IsZero() {
		t.Error("expected non-zero date")
	}
	if !(Date{}).IsZero() {
		t.Error("expected zero date")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b Date
		want int
	}{
		{NewDate(2024, time.March, 1), NewDate(2024, time.March, 4), 3},
		{NewDate(2024, time.March, 4), NewDate(2024, time.March, 1), -3},
		{NewDate(2024, time.February, 28), NewDate(2024, time.March, 1), 2},
		{NewDate(2023, time.December, 31), NewDate(2024, time.January, 1), 1},
	}

	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
