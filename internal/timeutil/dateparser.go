package timeutil

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	isoPartialRe    = regexp.MustCompile(`^\d{4}-\d{1,2}$`)          // YYYY-MM (missing day)
	yearOnlyRe      = regexp.MustCompile(`^\d{4}$`)                  // YYYY (year only)
	isoPartialDayRe = regexp.MustCompile(`^\d{1,2}-\d{1,2}$`)        // MM-DD (missing year)
	euroRe          = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)  // DD/MM/YYYY
	tooManyPartsRe  = regexp.MustCompile(`^\d+[-/]\d+[-/]\d+[-/]`)   // Too many separators
	timestampRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d`) // date with a time part
)

// ParseDate parses a calendar date in strict YYYY-MM-DD form.
//
// Valid inputs:
//   - "2024-01-15"
//   - "2024-02-29" (leap years are checked)
//
// Entry dates carry no time component, so timestamps such as
// "2024-01-15T10:00:00Z" are rejected rather than silently truncated.
func ParseDate(input string) (Date, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Date{}, fmt.Errorf("date cannot be empty (use format YYYY-MM-DD, e.g., 2024-01-15)")
	}

	t, err := time.Parse(DateLayout, input)
	if err == nil {
		return DateOf(t), nil
	}

	return Date{}, buildDateParseError(input)
}

// buildDateParseError creates a helpful error message based on the input pattern
func buildDateParseError(input string) error {
	switch {
	case yearOnlyRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing month and day (use format YYYY-MM-DD, e.g., %s-01-15)", input, input)
	case isoPartialRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing day (use format YYYY-MM-DD, e.g., %s-15)", input, input)
	case isoPartialDayRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing year (use format YYYY-MM-DD, e.g., 2024-%s)", input, input)
	case euroRe.MatchString(input):
		return fmt.Errorf("unsupported date '%s': day-first dates are ambiguous (use format YYYY-MM-DD)", input)
	case timestampRe.MatchString(input):
		return fmt.Errorf("invalid date '%s': entry dates have no time component (use format YYYY-MM-DD)", input)
	case tooManyPartsRe.MatchString(input):
		return fmt.Errorf("invalid date '%s': too many date parts (use format YYYY-MM-DD)", input)
	default:
		return fmt.Errorf("invalid date format '%s' (use YYYY-MM-DD, e.g., 2024-01-15)", input)
	}
}

// ParseMonth parses a month in YYYY-MM form, e.g. "2024-03".
func ParseMonth(input string) (int, time.Month, error) {
	input = strings.TrimSpace(input)
	t, err := time.Parse("2006-01", input)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month '%s' (use format YYYY-MM, e.g., 2024-03)", input)
	}
	return t.Year(), t.Month(), nil
}
