package ui

import (
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// Styles contains all the styles used in the TUI
type Styles struct {
	App lipgloss.Style

	// Tab bar
	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	ViewTitle lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusHelp lipgloss.Style

	// Lists
	ItemSelected lipgloss.Style
	ItemNormal   lipgloss.Style
	ItemIndex    lipgloss.Style
	ItemMeta     lipgloss.Style
	Tag          lipgloss.Style
	Favorite     lipgloss.Style
	Liked        lipgloss.Style

	// Calendar
	CalendarHeader lipgloss.Style
	CalendarDay    lipgloss.Style
	CalendarToday  lipgloss.Style

	// Moods[score] colors a mood score 1-5; index 0 is unused.
	Moods [6]lipgloss.Style

	StatLabel lipgloss.Style
	StatValue lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Dialog lipgloss.Style
	Panel  lipgloss.Style

	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// Mood returns the style for a mood score, or ItemMeta outside 1-5.
func (s Styles) Mood(score int) lipgloss.Style {
	if score < 1 || score >= len(s.Moods) {
		return s.ItemMeta
	}
	return s.Moods[score]
}

// NewStylesFromRegistry creates a Styles struct using colors from a bubbletint registry.
// Moods run from Red (rough) through Purple, Cyan and Green to Yellow (amazing).
func NewStylesFromRegistry(r *tint.Registry) Styles {
	primary := r.Purple()
	secondary := r.Cyan()
	accent := r.BrightPurple()
	muted := r.BrightBlack()
	success := r.Green()
	warning := r.Yellow()
	errorColor := r.Red()
	fg := r.Fg()
	bg := r.Bg()

	return Styles{
		App: lipgloss.NewStyle().Padding(1, 2),

		TabBar: lipgloss.NewStyle().
			MarginBottom(1).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(muted),
		TabActive: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 2),

		ViewTitle: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),

		StatusBar: lipgloss.NewStyle().
			Foreground(fg).
			Background(bg).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),
		StatusHelp: lipgloss.NewStyle().
			Foreground(muted),

		ItemSelected: lipgloss.NewStyle().
			Background(muted).
			Bold(true),
		ItemNormal: lipgloss.NewStyle(),
		ItemIndex: lipgloss.NewStyle().
			Foreground(muted),
		ItemMeta: lipgloss.NewStyle().
			Foreground(muted),
		Tag: lipgloss.NewStyle().
			Foreground(secondary),
		Favorite: lipgloss.NewStyle().
			Foreground(warning),
		Liked: lipgloss.NewStyle().
			Foreground(errorColor),

		CalendarHeader: lipgloss.NewStyle().
			Foreground(muted).
			Bold(true),
		CalendarDay: lipgloss.NewStyle().
			Foreground(fg),
		CalendarToday: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Underline(true),

		Moods: [6]lipgloss.Style{
			lipgloss.NewStyle(),
			lipgloss.NewStyle().Foreground(errorColor),
			lipgloss.NewStyle().Foreground(primary),
			lipgloss.NewStyle().Foreground(secondary),
			lipgloss.NewStyle().Foreground(success),
			lipgloss.NewStyle().Foreground(warning).Bold(true),
		},

		StatLabel: lipgloss.NewStyle().
			Foreground(muted),
		StatValue: lipgloss.NewStyle().
			Foreground(fg).
			Bold(true),

		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		InputFocused: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(primary).
			Padding(0, 1),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2).
			Width(50),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary).
			Padding(0, 1),

		Error: lipgloss.NewStyle().
			Foreground(errorColor),
		Warning: lipgloss.NewStyle().
			Foreground(warning),
		Success: lipgloss.NewStyle().
			Foreground(success),
	}
}
