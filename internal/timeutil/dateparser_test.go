package timeutil

import (
	"strings"
	"testing"
	"time"
)

func TestParseDate_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Date
	}{
		{"standard date", "2024-01-15", NewDate(2024, time.January, 15)},
		{"first day of year", "2024-01-01", NewDate(2024, time.January, 1)},
		{"last day of year", "2024-12-31", NewDate(2024, time.December, 31)},
		{"leap year feb 29", "2024-02-29", NewDate(2024, time.February, 29)},
		{"surrounding whitespace", "  2024-03-04 ", NewDate(2024, time.March, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		errContains string
	}{
		{"empty", "", "cannot be empty"},
		{"year only", "2024", "missing month and day"},
		{"missing day", "2024-01", "missing day"},
		{"missing year", "01-15", "missing year"},
		{"day first", "15/01/2024", "ambiguous"},
		{"timestamp", "2024-01-15T10:00:00Z", "no time component"},
		{"too many parts", "2024-01-15-01", "too many date parts"},
		{"not leap year", "2023-02-29", "invalid date format"},
		{"month 13", "2024-13-01", "invalid date format"},
		{"garbage", "yesterday-ish", "invalid date format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if err == nil {
				t.Fatalf("ParseDate(%q) expected error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ParseDate(%q) error = %q, want it to contain %q", tt.input, err, tt.errContains)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	year, month, err := ParseMonth("2024-03")
	if err != nil {
		t.Fatalf("ParseMonth() unexpected error: %v", err)
	}
	if year != 2024 || month != time.March {
		t.Errorf("ParseMonth() = %d-%v, want 2024-March", year, month)
	}

	for _, input := range []string{"", "2024", "2024-13", "03-2024", "2024-03-01"} {
		if _, _, err := ParseMonth(input); err == nil {
			t.Errorf("ParseMonth(%q) expected error", input)
		}
	}
}
