// Package tui provides the Terminal User Interface for haven.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/tui/ui"
	"github.com/xolan/haven/internal/tui/views"
)

// Tab represents a view tab
type Tab int

const (
	TabMood Tab = iota
	TabJournal
	TabCommunity
)

var tabNames = []string{"Mood", "Journal", "Community"}

// Model is the root TUI model
type Model struct {
	services *service.Services
	watcher  *Watcher // nil when the store has no data directory

	// UI state
	activeTab Tab
	width     int
	height    int
	showHelp  bool
	status    ui.StatusMsg

	// View models
	moodView      views.MoodModel
	journalView   views.JournalModel
	communityView views.CommunityModel

	// Theme and styles
	themeProvider *ui.ThemeProvider
	styles        ui.Styles
	keys          ui.KeyMap
}

// New creates a new TUI model. watcher may be nil.
func New(ctx context.Context, services *service.Services, watcher *Watcher) Model {
	themeProvider := ui.NewThemeProvider(services.Config.Get().Theme)
	styles := themeProvider.Styles()
	keys := ui.DefaultKeyMap()

	return Model{
		services:      services,
		watcher:       watcher,
		activeTab:     TabMood,
		themeProvider: themeProvider,
		styles:        styles,
		keys:          keys,
		moodView:      views.NewMoodModel(ctx, services, styles, keys),
		journalView:   views.NewJournalModel(ctx, services, styles, keys),
		communityView: views.NewCommunityModel(ctx, services, styles, keys),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.moodView.Init(),
		m.journalView.Init(),
		m.communityView.Init(),
	}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Next())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if !m.capturingKeys() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.showHelp = !m.showHelp
				return m, nil
			case key.Matches(msg, m.keys.NextTab):
				m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
				return m, nil
			case key.Matches(msg, m.keys.PrevTab):
				m.activeTab = Tab((int(m.activeTab) - 1 + len(tabNames)) % len(tabNames))
				return m, nil
			case key.Matches(msg, m.keys.CycleTheme):
				return m.cycleTheme()
			}
		}
		return m.updateActive(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - 4 // tabs and status bar
		m.moodView.SetSize(m.width, contentHeight)
		m.journalView.SetSize(m.width, contentHeight)
		m.communityView.SetSize(m.width, contentHeight)
		return m, nil

	case ui.StatusMsg:
		m.status = msg
		return m, nil

	case ui.ReloadMsg:
		var cmd tea.Cmd
		m, cmd = m.updateAll(msg)
		if m.watcher != nil {
			cmd = tea.Batch(cmd, m.watcher.Next())
		}
		return m, cmd
	}

	// Loader results may arrive for a view that is not on screen.
	return m.updateAll(msg)
}

func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabMood:
		m.moodView, cmd = m.moodView.Update(msg)
	case TabJournal:
		m.journalView, cmd = m.journalView.Update(msg)
	case TabCommunity:
		m.communityView, cmd = m.communityView.Update(msg)
	}
	return m, cmd
}

func (m Model) updateAll(msg tea.Msg) (Model, tea.Cmd) {
	var cmds [3]tea.Cmd
	m.moodView, cmds[0] = m.moodView.Update(msg)
	m.journalView, cmds[1] = m.journalView.Update(msg)
	m.communityView, cmds[2] = m.communityView.Update(msg)
	return m, tea.Batch(cmds[:]...)
}

func (m Model) cycleTheme() (Model, tea.Cmd) {
	name := m.themeProvider.NextTheme()
	m.styles = m.themeProvider.Styles()
	m, cmd := m.updateAll(ui.ThemeChangedMsg{ThemeName: name, Styles: m.styles})
	m.status = ui.StatusMsg{Text: "Theme: " + name}
	return m, tea.Batch(cmd, m.saveThemeConfig(name))
}

// capturingKeys reports whether the active view is taking text input or
// showing a modal, so global single-key bindings must not fire.
func (m Model) capturingKeys() bool {
	return m.activeTab == TabJournal && m.journalView.Capturing()
}

// saveThemeConfig saves the theme to the config file
func (m Model) saveThemeConfig(themeName string) tea.Cmd {
	services := m.services
	return func() tea.Msg {
		cfg := services.Config.Get()
		cfg.Theme = themeName
		if err := services.Config.Update(cfg); err != nil {
			services.Logger().Warn("failed to save theme", zap.Error(err))
			return ui.StatusMsg{Text: fmt.Sprintf("Could not save theme: %v", err), Err: true}
		}
		return nil
	}
}

// ActiveTab returns the tab on screen.
func (m Model) ActiveTab() Tab {
	return m.activeTab
}

// ThemeName returns the current theme.
func (m Model) ThemeName() string {
	return m.themeProvider.CurrentName()
}

// Close releases resources held by the views.
func (m *Model) Close() {
	m.journalView.Close()
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.activeTab {
	case TabMood:
		b.WriteString(m.moodView.View())
	case TabJournal:
		b.WriteString(m.journalView.View())
	case TabCommunity:
		b.WriteString(m.communityView.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.styles.App.Render(b.String())
}

// renderTabs renders the tab bar
func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, m.styles.TabActive.Render(name))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(name))
		}
	}
	return m.styles.TabBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderStatusBar renders the last status line and the key hints
func (m Model) renderStatusBar() string {
	var parts []string
	if m.status.Text != "" {
		style := m.styles.Success
		if m.status.Err {
			style = m.styles.Error
		}
		parts = append(parts, style.Render(m.status.Text))
	}

	if !m.capturingKeys() {
		for _, b := range m.viewBindings() {
			parts = append(parts, m.renderKeyHelp(b))
		}
		parts = append(parts,
			m.renderKeyHelp(m.keys.NextTab),
			m.renderKeyHelp(m.keys.Help),
			m.renderKeyHelp(m.keys.Quit))
	}

	content := strings.Join(parts, "  ")
	if padding := m.width - lipgloss.Width(content); padding > 0 {
		content += strings.Repeat(" ", padding)
	}
	return m.styles.StatusBar.Render(content)
}

// renderKeyHelp renders a single key help item
func (m Model) renderKeyHelp(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("%s %s",
		m.styles.StatusKey.Render(h.Key),
		m.styles.StatusHelp.Render(h.Desc))
}

// viewBindings lists the keys of the active view.
func (m Model) viewBindings() []key.Binding {
	switch m.activeTab {
	case TabMood:
		return []key.Binding{m.keys.CheckIn, m.keys.PrevMonth, m.keys.NextMonth, m.keys.ThisMonth}
	case TabJournal:
		return []key.Binding{m.keys.Select, m.keys.Search, m.keys.Favorite, m.keys.Insight, m.keys.Delete}
	case TabCommunity:
		return []key.Binding{m.keys.Like, m.keys.Refresh}
	}
	return nil
}

// renderHelpOverlay renders the key reference for the active view
func (m Model) renderHelpOverlay() string {
	var help strings.Builder
	help.WriteString(m.styles.ViewTitle.Render("Keyboard Shortcuts"))
	help.WriteString("\n\n")

	section := func(title string, bindings ...key.Binding) {
		help.WriteString(m.styles.StatLabel.Render(title + ":"))
		help.WriteString("\n")
		for _, b := range bindings {
			h := b.Help()
			help.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		help.WriteString("\n")
	}

	section("Global", m.keys.NextTab, m.keys.PrevTab, m.keys.Up, m.keys.Down,
		m.keys.Refresh, m.keys.CycleTheme, m.keys.Help, m.keys.Quit)
	section(tabNames[m.activeTab], m.viewBindings()...)

	help.WriteString(m.styles.StatLabel.Render("Press ? to close"))
	return m.styles.App.Render(m.styles.Dialog.Render(help.String()))
}

// Run starts the TUI and blocks until it exits. When the store keeps its data
// in a directory, changes made outside the TUI are picked up live.
func Run(ctx context.Context, services *service.Services) error {
	logger := services.Logger()

	var watcher *Watcher
	if dir, ok := services.Storage.WatchDir(); ok {
		w, err := NewWatcher(dir, DefaultDebounce, logger)
		if err != nil {
			logger.Warn("live reload disabled", zap.Error(err))
		} else {
			watcher = w
			defer func() { _ = w.Close() }()
		}
	}

	p := tea.NewProgram(New(ctx, services, watcher), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.Close()
	}
	return err
}
