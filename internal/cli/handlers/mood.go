package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/history"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/timeutil"
)

// CheckIn records today's mood
func CheckIn(ctx context.Context, deps *cli.Deps, input, note string, tags []string) {
	entry, err := deps.Services.Mood.CheckIn(ctx, input, note, tags)
	if err != nil {
		switch {
		case errors.Is(err, mood.ErrUnknownMood):
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			_, _ = fmt.Fprintln(deps.Stderr, "Usage: haven checkin <mood> [--note text] [--tag name]")
			_, _ = fmt.Fprintln(deps.Stderr, "Example: haven checkin good --note 'slept well' --tag Sleep")
		case errors.Is(err, service.ErrAlreadyCheckedIn):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: You've already checked in today")
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Run 'haven moods delete 1' to remove today's check-in and try again")
		default:
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		}
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Checked in: %s for %s\n", cli.MoodBadge(entry.Mood), entry.Date)
	if entry.Note != "" {
		_, _ = fmt.Fprintf(deps.Stdout, "  Note: %s\n", entry.Note)
	}
	if tags := cli.FormatTags(entry.Tags); tags != "" {
		_, _ = fmt.Fprintf(deps.Stdout, "  Tags: %s\n", tags)
	}

	// The check-in is saved; a failed streak lookup only loses the extra line.
	if result, err := deps.Services.Mood.History(ctx); err == nil {
		h := result.History
		_, _ = fmt.Fprintln(deps.Stdout, cli.FormatStreak(h.Streak(), h.LongestStreak()))
	}
}

// ListMoods lists the most recent check-ins, newest first
func ListMoods(ctx context.Context, deps *cli.Deps, limit int) {
	result, err := deps.Services.Mood.List(ctx, limit)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}
	printWarnings(deps, result.Warnings)
	printSkipped(deps, result.Skipped)

	if len(result.Entries) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No check-ins yet")
		_, _ = fmt.Fprintln(deps.Stdout, "Hint: Check in with 'haven checkin good'")
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Mood check-ins:")
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	width := indexWidth(len(result.Entries))
	for _, ie := range result.Entries {
		_, _ = fmt.Fprintf(deps.Stdout, "[%*d] %s\n", width, ie.Index, cli.FormatMoodEntry(ie.Entry))
	}
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	_, _ = fmt.Fprintf(deps.Stdout, "Total: %d %s\n", len(result.Entries), cli.Pluralize("check-in", len(result.Entries)))
}

// DeleteMood deletes a check-in by its index in ListMoods
func DeleteMood(ctx context.Context, deps *cli.Deps, indexStr string, skipConfirm bool) {
	index, ok := parseIndex(deps, indexStr, "moods")
	if !ok {
		return
	}

	result, err := deps.Services.Mood.List(ctx, 0)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}
	if index > len(result.Entries) {
		printIndexError(deps, fmt.Errorf("%w: %d (%d check-ins)", service.ErrIndexOutOfRange, index, len(result.Entries)), "moods")
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Check-in to delete:")
	_, _ = fmt.Fprintf(deps.Stdout, "  %s\n", cli.FormatMoodEntry(result.Entries[index-1].Entry))

	if !skipConfirm && !promptConfirmation(deps.Stdout, deps.Stdin, "Delete this check-in?") {
		_, _ = fmt.Fprintln(deps.Stdout, "Deletion cancelled")
		return
	}

	deleted, err := deps.Services.Mood.Delete(ctx, index)
	if err != nil {
		printIndexError(deps, err, "moods")
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Deleted: %s\n", cli.FormatMoodEntry(*deleted))
	_, _ = fmt.Fprintln(deps.Stdout, "Tip: Use 'haven restore mood_entry' to recover it if needed")
}

// loadHistory fetches the aggregated history and prints what was left out.
func loadHistory(ctx context.Context, deps *cli.Deps) (*history.History, bool) {
	result, err := deps.Services.Mood.History(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return nil, false
	}
	printWarnings(deps, result.Warnings)
	printSkipped(deps, result.History.Skipped())
	return result.History, true
}

// ShowTrend charts the most recent check-ins. A window of 0 uses the
// configured trend window.
func ShowTrend(ctx context.Context, deps *cli.Deps, window int) {
	if window <= 0 {
		window = deps.Config.TrendWindow
	}
	h, ok := loadHistory(ctx, deps)
	if !ok {
		return
	}

	trend, err := h.Trend(window)
	if errors.Is(err, history.ErrInsufficientData) {
		_, _ = fmt.Fprintf(deps.Stdout, "%s (logged: %d)\n", capitalize(err.Error()), h.Len())
		return
	}
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Mood trend (last %d %s):\n\n",
		len(trend.Points), cli.Pluralize("check-in", len(trend.Points)))
	_, _ = fmt.Fprintln(deps.Stdout, cli.FormatTrendChart(trend))
	if avg, ok := h.Average(window); ok {
		_, _ = fmt.Fprintf(deps.Stdout, "Average: %.1f\n", avg)
	}

	tags := h.TagCounts()
	if len(tags) == 0 {
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout)
	_, _ = fmt.Fprintln(deps.Stdout, "Tags:")
	for i, tc := range tags {
		if i == 5 {
			break
		}
		_, _ = fmt.Fprintf(deps.Stdout, "  #%-12s %3dx  avg %.1f\n", tc.Tag, tc.Count, tc.AverageScore)
	}
}

// ShowCalendar prints the month grid for monthStr (YYYY-MM), or the current
// month when empty
func ShowCalendar(ctx context.Context, deps *cli.Deps, monthStr string) {
	now := deps.Today()
	year, month := now.Year(), now.Month()
	if monthStr != "" {
		var err error
		year, month, err = timeutil.ParseMonth(monthStr)
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Use 'haven calendar 2024-03'")
			deps.Exit(1)
			return
		}
	}

	h, ok := loadHistory(ctx, deps)
	if !ok {
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, cli.FormatMonthGrid(h.Month(year, month, deps.Config.WeekStart())))
	_, _ = fmt.Fprintln(deps.Stdout)
	_, _ = fmt.Fprintln(deps.Stdout, cli.FormatStreak(h.Streak(), h.LongestStreak()))
}

// ShowStreak prints the current streak and whether today is logged
func ShowStreak(ctx context.Context, deps *cli.Deps) {
	h, ok := loadHistory(ctx, deps)
	if !ok {
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, cli.FormatStreak(h.Streak(), h.LongestStreak()))
	if e, ok := h.TodayEntry(); ok {
		_, _ = fmt.Fprintf(deps.Stdout, "Today: %s\n", cli.MoodBadge(e.Mood))
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Today: not checked in yet")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
