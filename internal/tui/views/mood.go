package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/history"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
	"github.com/xolan/haven/internal/tui/ui"
)

// MoodModel is the model for the mood view: calendar, trend and check-in.
type MoodModel struct {
	ctx      context.Context
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	width   int
	height  int
	history *history.History
	month   timeutil.Date // first day of the shown month
	loading bool
	err     error
}

// NewMoodModel creates a new mood view model
func NewMoodModel(ctx context.Context, services *service.Services, styles ui.Styles, keys ui.KeyMap) MoodModel {
	return MoodModel{
		ctx:      ctx,
		services: services,
		styles:   styles,
		keys:     keys,
		loading:  true,
	}
}

type historyLoadedMsg struct {
	result *service.HistoryResult
	err    error
}

type checkedInMsg struct {
	entry *mood.Entry
	err   error
}

// Init implements tea.Model
func (m MoodModel) Init() tea.Cmd {
	return m.load()
}

// Month returns the first day of the shown month.
func (m MoodModel) Month() timeutil.Date {
	return m.month
}

// Update implements tea.Model
func (m MoodModel) Update(msg tea.Msg) (MoodModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.PrevMonth):
			m.month = timeutil.NewDate(m.month.Year, m.month.Month-1, 1)
		case key.Matches(msg, m.keys.NextMonth):
			m.month = timeutil.NewDate(m.month.Year, m.month.Month+1, 1)
		case key.Matches(msg, m.keys.ThisMonth):
			m.month = m.currentMonth()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.CheckIn):
			return m, m.checkIn(msg.String())
		}
		return m, nil

	case historyLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			first := m.history == nil
			m.history = msg.result.History
			if first {
				m.month = m.currentMonth()
			}
			if n := len(msg.result.Warnings) + len(m.history.Skipped()); n > 0 {
				return m, status(fmt.Sprintf("Skipped %d invalid mood %s", n, cli.Pluralize("record", n)), true)
			}
		}
		return m, nil

	case checkedInMsg:
		if msg.err != nil {
			if errors.Is(msg.err, service.ErrAlreadyCheckedIn) {
				return m, status("You've already checked in today", true)
			}
			return m, status(fmt.Sprintf("Check-in failed: %v", msg.err), true)
		}
		return m, tea.Batch(
			status("Checked in: "+cli.MoodBadge(msg.entry.Mood), false),
			m.load(),
		)

	case ui.ReloadMsg:
		if reloads(msg, storage.EntityMood) {
			return m, m.load()
		}

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
	}
	return m, nil
}

// SetSize sets the view dimensions
func (m *MoodModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m MoodModel) currentMonth() timeutil.Date {
	today := timeutil.DateOf(m.services.Now())
	if m.history != nil {
		today = m.history.Today()
	}
	return timeutil.NewDate(today.Year, today.Month, 1)
}

func (m MoodModel) load() tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		result, err := services.Mood.History(ctx)
		return historyLoadedMsg{result: result, err: err}
	}
}

func (m MoodModel) checkIn(input string) tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		entry, err := services.Mood.CheckIn(ctx, input, "", nil)
		return checkedInMsg{entry: entry, err: err}
	}
}

// View implements tea.Model
func (m MoodModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Mood"))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorLine(m.styles, m.err))
		return b.String()
	}

	h := m.history
	b.WriteString(m.styles.StatValue.Render(cli.FormatStreak(h.Streak(), h.LongestStreak())))
	b.WriteString("\n")
	if e, ok := h.TodayEntry(); ok {
		b.WriteString(m.styles.StatLabel.Render("Today: "))
		b.WriteString(m.styles.Mood(e.Score).Render(cli.MoodBadge(e.Mood)))
	} else {
		b.WriteString(m.styles.StatLabel.Render("Today: not checked in yet. Press 1-5 to check in."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderCalendar())
	b.WriteString("\n")
	b.WriteString(m.renderTrend())
	b.WriteString("\n\n")
	b.WriteString(m.renderLegend())
	return b.String()
}

func (m MoodModel) renderCalendar() string {
	weekStart := m.services.Config.Get().WeekStart()
	cal := m.history.Month(m.month.Year, m.month.Month, weekStart)

	var b strings.Builder
	title := fmt.Sprintf("%s %d", cal.Month, cal.Year)
	b.WriteString(m.styles.StatValue.Render(title))
	b.WriteString("\n")

	var header strings.Builder
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(weekStart) + i) % 7)
		header.WriteString(fmt.Sprintf("%3s ", wd.String()[:2]))
	}
	b.WriteString(m.styles.CalendarHeader.Render(header.String()))
	b.WriteString("\n")

	for _, week := range cal.Weeks() {
		for _, day := range week {
			if day == nil {
				b.WriteString("    ")
				continue
			}
			cell := fmt.Sprintf("%3d ", day.Date.Day)
			if day.IsToday {
				cell = fmt.Sprintf("[%2d]", day.Date.Day)
			}
			b.WriteString(m.dayStyle(day).Render(cell))
		}
		b.WriteString("\n")
	}
	logged := cal.Logged()
	b.WriteString(m.styles.StatLabel.Render(fmt.Sprintf("%d of %d days logged", logged, len(cal.Days))))
	b.WriteString("\n")
	return b.String()
}

func (m MoodModel) dayStyle(day *history.Day) lipgloss.Style {
	style := m.styles.CalendarDay
	if day.HasEntry {
		style = m.styles.Mood(day.Entry.Score)
	}
	switch {
	case day.IsToday && day.HasEntry:
		style = style.Bold(true)
	case day.IsToday:
		style = m.styles.CalendarToday
	}
	return style
}

func (m MoodModel) renderTrend() string {
	window := m.services.Config.Get().TrendWindow
	trend, err := m.history.Trend(window)
	if err != nil {
		return m.styles.StatLabel.Render(err.Error())
	}

	scores := make([]int, len(trend.Points))
	for i, p := range trend.Points {
		scores[i] = p.Score
	}
	var b strings.Builder
	b.WriteString(m.styles.StatLabel.Render("Trend  "))
	b.WriteString(m.styles.Mood(trend.Points[len(trend.Points)-1].Score).Render(Sparkline(scores)))
	if avg, ok := m.history.Average(window); ok {
		b.WriteString(m.styles.StatLabel.Render(fmt.Sprintf("  avg %.1f  change %+d", avg, trend.Delta())))
	}
	return b.String()
}

func (m MoodModel) renderLegend() string {
	parts := make([]string, 0, len(mood.All))
	for _, md := range mood.All {
		parts = append(parts, fmt.Sprintf("%s %s",
			m.styles.StatusKey.Render(fmt.Sprint(md.Score())),
			m.styles.Mood(md.Score()).Render(md.Label())))
	}
	return strings.Join(parts, "  ")
}
