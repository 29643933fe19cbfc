package timeutil

import (
	"fmt"
)

// ParseDateRangeFlags parses date range flags relative to today.
// If lastDays > 0, it takes precedence over from/to.
// Returns an error if both lastDays and from/to are specified.
// Zero dates in the result mean that side of the range is open.
func ParseDateRangeFlags(fromStr, toStr string, lastDays int, today Date) (start, end Date, err error) {
	if lastDays > 0 && (fromStr != "" || toStr != "") {
		return Date{}, Date{}, fmt.Errorf("cannot use --last with --from or --to")
	}
	if lastDays < 0 {
		return Date{}, Date{}, fmt.Errorf("invalid number of days: must be positive, got %d", lastDays)
	}

	if lastDays > 0 {
		return today.AddDays(-(lastDays - 1)), today, nil
	}

	if fromStr != "" {
		start, err = ParseDate(fromStr)
		if err != nil {
			return Date{}, Date{}, fmt.Errorf("invalid --from date: %w", err)
		}
	}

	if toStr != "" {
		end, err = ParseDate(toStr)
		if err != nil {
			return Date{}, Date{}, fmt.Errorf("invalid --to date: %w", err)
		}
	}

	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return Date{}, Date{}, fmt.Errorf("--from date (%s) is after --to date (%s)", start, end)
	}

	return start, end, nil
}
