package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/xolan/haven/internal/community"
	"github.com/xolan/haven/internal/history"
	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Separator is the rule printed under list headers.
var Separator = strings.Repeat("-", 50)

// MoodBadge returns e.g. "😊 Good".
func MoodBadge(m mood.Mood) string {
	if !m.Valid() {
		return ""
	}
	return m.Emoji() + " " + m.Label()
}

// FormatTags formats tags for display, e.g. "#Sleep #Work".
func FormatTags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, "#"+strings.ReplaceAll(t, " ", "-"))
		}
	}
	return strings.Join(parts, " ")
}

// FormatMoodEntry formats a check-in on one line.
func FormatMoodEntry(e mood.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s (%d/%d)", e.Date, MoodBadge(e.Mood), e.Score, mood.MaxScore)
	if e.Note != "" {
		sb.WriteString("  " + e.Note)
	}
	if tags := FormatTags(e.Tags); tags != "" {
		sb.WriteString("  " + tags)
	}
	return sb.String()
}

// FormatJournalHeader formats the title line of a journal entry.
func FormatJournalHeader(e journal.Entry, loc *time.Location) string {
	var sb strings.Builder
	if e.Favorite {
		sb.WriteString("★ ")
	}
	sb.WriteString(e.Title)
	if !e.CreatedDate.IsZero() {
		fmt.Fprintf(&sb, "  (%s)", e.CreatedDate.In(loc).Format("Jan 2, 2006"))
	}
	if e.Mood.Valid() {
		sb.WriteString("  " + e.Mood.Emoji())
	}
	if tags := FormatTags(e.Tags); tags != "" {
		sb.WriteString("  " + tags)
	}
	return sb.String()
}

// FormatPostMood returns e.g. "🤝 Seeking Support", or "" when unset.
func FormatPostMood(m community.PostMood) string {
	if !m.Valid() {
		return ""
	}
	return m.Emoji() + " " + m.Label()
}

// FormatMonthGrid renders a calendar as a text grid. Logged days show their
// mood emoji; today is bracketed.
func FormatMonthGrid(cal history.Calendar) string {
	const cell = 4
	var sb strings.Builder

	title := fmt.Sprintf("%s %d", cal.Month, cal.Year)
	pad := (7*cell - len(title)) / 2
	sb.WriteString(strings.Repeat(" ", max(pad, 0)) + title + "\n")

	var header strings.Builder
	for _, h := range timeutil.WeekdayHeaders(cal.WeekStart) {
		fmt.Fprintf(&header, "  %s ", h)
	}
	sb.WriteString(strings.TrimRight(header.String(), " ") + "\n")

	for _, week := range cal.Weeks() {
		var row strings.Builder
		for _, d := range week {
			row.WriteString(formatDayCell(d))
		}
		sb.WriteString(strings.TrimRight(row.String(), " ") + "\n")
	}

	fmt.Fprintf(&sb, "\n%d of %d days logged", cal.Logged(), len(cal.Days))
	return sb.String()
}

func formatDayCell(d *history.Day) string {
	if d == nil {
		return "    "
	}
	inner := fmt.Sprintf("%2d", d.Date.Day)
	if d.HasEntry {
		inner = d.Entry.Mood.Emoji()
	}
	if d.IsToday {
		return "[" + inner + "]"
	}
	return " " + inner + " "
}

// FormatTrendChart renders the trend as a scatter of scores 5..1 over the
// charted days.
func FormatTrendChart(t history.Trend) string {
	var sb strings.Builder
	for score := mood.MaxScore; score >= mood.MinScore; score-- {
		m, _ := mood.FromScore(score)
		fmt.Fprintf(&sb, "%d %s │", score, m.Emoji())
		var row strings.Builder
		for _, p := range t.Points {
			if p.Score == score {
				row.WriteString(" ● ")
			} else {
				row.WriteString("   ")
			}
		}
		sb.WriteString(strings.TrimRight(row.String(), " ") + "\n")
	}

	sb.WriteString("     └" + strings.Repeat("───", len(t.Points)) + "\n")
	sb.WriteString("      ")
	for _, p := range t.Points {
		fmt.Fprintf(&sb, "%-3s", p.Short)
	}
	sb.WriteString("\n")

	if n := len(t.Points); n > 0 {
		fmt.Fprintf(&sb, "\n%s to %s", t.Points[0].Label, t.Points[n-1].Label)
		fmt.Fprintf(&sb, "  lowest %d, highest %d, change %+d", t.Min(), t.Max(), t.Delta())
	}
	return strings.TrimRight(sb.String(), " ")
}

var sparkBlocks = []rune{'▁', '▂', '▄', '▆', '█'}

// Sparkline renders the trend scores as block characters, one per day.
func Sparkline(t history.Trend) string {
	var sb strings.Builder
	for _, p := range t.Points {
		i := min(max(p.Score-mood.MinScore, 0), len(sparkBlocks)-1)
		sb.WriteRune(sparkBlocks[i])
	}
	return sb.String()
}

// FormatStreak describes the current and longest streak.
func FormatStreak(current, longest int) string {
	if current == 0 {
		if longest > 0 {
			return fmt.Sprintf("No active streak. Longest: %d %s.", longest, Pluralize("day", longest))
		}
		return "No active streak. Check in today to start one."
	}
	s := fmt.Sprintf("🔥 %d-day streak", current)
	if longest > current {
		s += fmt.Sprintf(" (longest: %d %s)", longest, Pluralize("day", longest))
	}
	return s
}

// FormatCorruptionWarning formats a warning about a stored record that could
// not be decoded.
func FormatCorruptionWarning(warning storage.ParseWarning) string {
	content := warning.Content
	if len(content) > 50 {
		content = content[:47] + "..."
	}
	return fmt.Sprintf("  Line %d: %s (error: %s)", warning.LineNumber, content, warning.Error)
}

// FormatSkipped formats a record left out of the mood history.
func FormatSkipped(s history.Skip) string {
	id := s.ID
	if id == "" {
		id = "(no id)"
	}
	return fmt.Sprintf("  Entry %s: %s", id, s.Reason)
}

// Pluralize returns the plural form of a word based on count
func Pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	if n := len(word); n > 1 && word[n-1] == 'y' && !strings.ContainsRune("aeiou", rune(word[n-2])) {
		return word[:n-1] + "ies"
	}
	return word + "s"
}

// Truncate shortens s to n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// TerminalWidth returns the width of w when it is a terminal, else DefaultWidth.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// RenderMarkdown renders agent replies for the terminal. Non-terminal output
// uses the plain "notty" style.
func RenderMarkdown(md string, width int, tty bool) (string, error) {
	style := "notty"
	if tty {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
