package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/filter"
	"github.com/xolan/haven/internal/insight"
	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/tui/ui"
)

// journalMode represents the current mode of the journal view
type journalMode int

const (
	journalModeNormal journalMode = iota
	journalModeSearch
	journalModeDelete
	journalModeDetail
	journalModeInsight
)

// JournalModel is the model for the journal view
type JournalModel struct {
	ctx      context.Context
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	// UI state
	width   int
	height  int
	cursor  int
	entries []service.IndexedJournal
	total   int
	loading bool
	err     error
	mode    journalMode
	plain   bool // render markdown without colors

	searchInput textinput.Model
	keyword     string

	// Detail and insight panels share the viewport
	viewport viewport.Model
	selected *journal.Entry

	conv        *insight.Conversation
	updates     <-chan []insight.Message
	unsubscribe func()
	messages    []insight.Message
	askInput    textinput.Model
}

// NewJournalModel creates a new journal view model
func NewJournalModel(ctx context.Context, services *service.Services, styles ui.Styles, keys ui.KeyMap) JournalModel {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search titles and content..."
	searchInput.CharLimit = 100
	searchInput.Width = 40

	askInput := textinput.New()
	askInput.Placeholder = "Ask a follow-up question..."
	askInput.CharLimit = 500
	askInput.Width = 60

	return JournalModel{
		ctx:         ctx,
		services:    services,
		styles:      styles,
		keys:        keys,
		loading:     true,
		searchInput: searchInput,
		askInput:    askInput,
		viewport:    viewport.New(80, 20),
	}
}

type journalLoadedMsg struct {
	result *service.JournalListResult
	err    error
}

type journalChangedMsg struct {
	text string
	err  error
}

type insightStartedMsg struct {
	conv  *insight.Conversation
	entry *journal.Entry
	err   error
}

// insightUpdateMsg carries the latest message list of conv. A nil list means
// the subscription ended.
type insightUpdateMsg struct {
	conv     *insight.Conversation
	messages []insight.Message
}

// Init implements tea.Model
func (m JournalModel) Init() tea.Cmd {
	return m.load()
}

// Keyword returns the active search keyword.
func (m JournalModel) Keyword() string {
	return m.keyword
}

// Capturing reports whether the view consumes every key, so global bindings
// must not fire.
func (m JournalModel) Capturing() bool {
	return m.mode != journalModeNormal
}

// Update implements tea.Model
func (m JournalModel) Update(msg tea.Msg) (JournalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case journalModeSearch:
			return m.handleSearchMode(msg)
		case journalModeDelete:
			return m.handleDeleteMode(msg)
		case journalModeDetail:
			return m.handleDetailMode(msg)
		case journalModeInsight:
			return m.handleInsightMode(msg)
		}
		return m.handleNormalMode(msg)

	case journalLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.result.Entries
			m.total = msg.result.Total
			m.cursor = clampCursor(m.cursor, len(m.entries))
			if n := len(msg.result.Warnings); n > 0 {
				return m, status(fmt.Sprintf("Skipped %d corrupted journal %s", n, cli.Pluralize("record", n)), true)
			}
		}
		return m, nil

	case journalChangedMsg:
		if msg.err != nil {
			return m, status(msg.err.Error(), true)
		}
		return m, tea.Batch(status(msg.text, false), m.load())

	case insightStartedMsg:
		if msg.err != nil {
			m.mode = journalModeNormal
			return m, status(fmt.Sprintf("Insights unavailable: %v", msg.err), true)
		}
		if m.mode != journalModeInsight || m.conv != nil {
			// the panel was closed or replaced before the agent answered
			return m, closeConversation(msg.conv)
		}
		m.conv = msg.conv
		m.updates, m.unsubscribe = msg.conv.Subscribe()
		m.selected = msg.entry
		m.messages = nil
		m.askInput.SetValue("")
		m.askInput.Focus()
		m.refreshInsight()
		return m, tea.Batch(m.next(), textinput.Blink)

	case insightUpdateMsg:
		if msg.conv != m.conv || m.conv == nil {
			return m, nil
		}
		if msg.messages == nil {
			return m, nil
		}
		m.messages = msg.messages
		m.refreshInsight()
		return m, m.next()

	case ui.ReloadMsg:
		if reloads(msg, storage.EntityJournal) {
			return m, m.load()
		}

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
	}
	return m, nil
}

func (m JournalModel) handleNormalMode(msg tea.KeyMsg) (JournalModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.Search):
		m.mode = journalModeSearch
		m.searchInput.SetValue(m.keyword)
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Back):
		if m.keyword != "" {
			m.keyword = ""
			return m, m.load()
		}
	}

	current, ok := m.current()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Select):
		m.mode = journalModeDetail
		m.selected = &current.Entry
		m.viewport.SetContent(m.renderDetail(current.Entry))
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Favorite):
		return m, m.toggleFavorite(current.Index)
	case key.Matches(msg, m.keys.Delete):
		m.mode = journalModeDelete
	case key.Matches(msg, m.keys.Insight):
		m.mode = journalModeInsight
		m.selected = &current.Entry
		m.messages = nil
		m.refreshInsight()
		return m, m.analyze(current.Index)
	}
	return m, nil
}

// handleSearchMode handles key events while typing a search
func (m JournalModel) handleSearchMode(msg tea.KeyMsg) (JournalModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.keyword = strings.TrimSpace(m.searchInput.Value())
		m.mode = journalModeNormal
		m.searchInput.Blur()
		m.cursor = 0
		return m, m.load()
	case key.Matches(msg, m.keys.Back):
		m.mode = journalModeNormal
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleDeleteMode handles key events when in delete confirmation mode
func (m JournalModel) handleDeleteMode(msg tea.KeyMsg) (JournalModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = journalModeNormal
		if current, ok := m.current(); ok {
			return m, m.delete(current.Index)
		}
	case "n", "N", "esc":
		m.mode = journalModeNormal
	}
	return m, nil
}

func (m JournalModel) handleDetailMode(msg tea.KeyMsg) (JournalModel, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
		m.mode = journalModeNormal
		m.selected = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m JournalModel) handleInsightMode(msg tea.KeyMsg) (JournalModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, m.closeInsight()
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter":
		question := strings.TrimSpace(m.askInput.Value())
		if question == "" || m.conv == nil {
			return m, nil
		}
		if err := m.conv.Send(question); err != nil {
			return m, status(err.Error(), true)
		}
		m.askInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.askInput, cmd = m.askInput.Update(msg)
	return m, cmd
}

// closeInsight leaves the insight panel. The conversation is closed in a
// command since Close waits for the outstanding reply to be cancelled.
func (m *JournalModel) closeInsight() tea.Cmd {
	m.mode = journalModeNormal
	m.askInput.Blur()
	m.messages = nil
	conv, unsubscribe := m.conv, m.unsubscribe
	m.conv, m.updates, m.unsubscribe = nil, nil, nil
	if unsubscribe != nil {
		unsubscribe()
	}
	return closeConversation(conv)
}

func closeConversation(conv *insight.Conversation) tea.Cmd {
	if conv == nil {
		return nil
	}
	return func() tea.Msg {
		conv.Close()
		return nil
	}
}

// Close releases the open insight conversation, if any.
func (m *JournalModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.conv != nil {
		m.conv.Close()
	}
	m.conv, m.updates, m.unsubscribe = nil, nil, nil
}

// SetSize sets the view dimensions
func (m *JournalModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-8, 5)
	m.askInput.Width = max(width-10, 20)
	switch {
	case m.mode == journalModeInsight:
		m.refreshInsight()
	case m.mode == journalModeDetail && m.selected != nil:
		m.viewport.SetContent(m.renderDetail(*m.selected))
	}
}

func (m JournalModel) current() (service.IndexedJournal, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return service.IndexedJournal{}, false
	}
	return m.entries[m.cursor], true
}

// next waits for the following snapshot of the open conversation.
func (m JournalModel) next() tea.Cmd {
	if m.conv == nil {
		return nil
	}
	return waitForInsight(m.conv, m.updates)
}

func waitForInsight(conv *insight.Conversation, ch <-chan []insight.Message) tea.Cmd {
	return func() tea.Msg {
		messages, ok := <-ch
		if !ok {
			return insightUpdateMsg{conv: conv}
		}
		return insightUpdateMsg{conv: conv, messages: messages}
	}
}

func (m JournalModel) load() tea.Cmd {
	ctx, services := m.ctx, m.services
	var f *filter.Filter
	if m.keyword != "" {
		f = filter.NewFilter(m.keyword, nil, false, "")
	}
	return func() tea.Msg {
		result, err := services.Journal.List(ctx, f)
		return journalLoadedMsg{result: result, err: err}
	}
}

func (m JournalModel) toggleFavorite(index int) tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		e, err := services.Journal.ToggleFavorite(ctx, index)
		if err != nil {
			return journalChangedMsg{err: err}
		}
		if e.Favorite {
			return journalChangedMsg{text: "Starred: " + e.Title}
		}
		return journalChangedMsg{text: "Unstarred: " + e.Title}
	}
}

func (m JournalModel) delete(index int) tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		e, err := services.Journal.Delete(ctx, index)
		if err != nil {
			return journalChangedMsg{err: err}
		}
		return journalChangedMsg{text: "Deleted: " + e.Title}
	}
}

func (m JournalModel) analyze(index int) tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		conv, entry, err := services.Insight.Analyze(ctx, index)
		return insightStartedMsg{conv: conv, entry: entry, err: err}
	}
}

// View implements tea.Model
func (m JournalModel) View() string {
	switch m.mode {
	case journalModeDelete:
		return m.renderDeleteConfirm()
	case journalModeDetail:
		return m.renderPanel(m.selected.Title, m.viewport.View(), "esc back  ↑/↓ scroll")
	case journalModeInsight:
		return m.renderPanel(m.insightTitle(), m.viewport.View()+"\n"+m.renderAsk(), "enter send  esc close  ↑/↓ scroll")
	}

	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Journal"))
	b.WriteString("\n")

	if m.mode == journalModeSearch {
		b.WriteString(m.styles.InputFocused.Render(m.searchInput.View()))
		b.WriteString("\n\n")
	} else if m.keyword != "" {
		b.WriteString(m.styles.StatLabel.Render(fmt.Sprintf("Search: %q (esc to clear)", m.keyword)))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorLine(m.styles, m.err))
		return b.String()
	}

	if len(m.entries) == 0 {
		if m.total > 0 {
			b.WriteString(m.styles.StatLabel.Render("No entries match your search"))
		} else {
			b.WriteString(m.styles.StatLabel.Render("No journal entries yet. Write one with 'haven journal add'."))
		}
		return b.String()
	}

	loc := m.services.Config.Get().Location()
	width := max(m.width, 40)
	for i, item := range m.entries {
		prefix := "  "
		style := m.styles.ItemNormal
		if i == m.cursor {
			prefix = "> "
			style = m.styles.ItemSelected
		}
		header := cli.FormatJournalHeader(item.Entry, loc)
		b.WriteString(m.styles.ItemIndex.Render(fmt.Sprintf("%s%3d. ", prefix, item.Index)))
		if item.Entry.Favorite {
			header = strings.TrimPrefix(header, "★ ")
			b.WriteString(m.styles.Favorite.Render("★ "))
		}
		b.WriteString(style.Render(cli.Truncate(header, width-8)))
		b.WriteString("\n")
		if excerpt := item.Entry.Excerpt(width - 10); excerpt != "" {
			b.WriteString("       ")
			b.WriteString(m.styles.ItemMeta.Render(excerpt))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.styles.StatLabel.Render(fmt.Sprintf("%d of %d %s", len(m.entries), m.total, cli.Pluralize("entry", m.total))))
	return b.String()
}

func (m JournalModel) renderDeleteConfirm() string {
	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Delete Entry"))
	b.WriteString("\n\n")
	if current, ok := m.current(); ok {
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("Delete %q?", current.Entry.Title)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.styles.StatLabel.Render("y confirm  n cancel"))
	return m.styles.Dialog.Render(b.String())
}

func (m JournalModel) renderPanel(title, body, help string) string {
	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.styles.Panel.Render(body))
	b.WriteString("\n")
	b.WriteString(m.styles.StatusHelp.Render(help))
	return b.String()
}

func (m JournalModel) renderAsk() string {
	return m.styles.Input.Render(m.askInput.View())
}

func (m JournalModel) insightTitle() string {
	if m.selected == nil {
		return "Insights"
	}
	return insight.ConversationName(*m.selected)
}

func (m JournalModel) renderDetail(e journal.Entry) string {
	var b strings.Builder
	b.WriteString(cli.FormatJournalHeader(e, m.services.Config.Get().Location()))
	b.WriteString("\n\n")
	b.WriteString(m.markdown(e.Content))
	return b.String()
}

// refreshInsight re-renders the conversation into the viewport.
func (m *JournalModel) refreshInsight() {
	m.viewport.SetContent(m.renderInsight())
	m.viewport.GotoBottom()
}

// renderInsight skips the first message, which is the analysis request.
func (m JournalModel) renderInsight() string {
	var b strings.Builder
	for i, msg := range m.messages {
		if i == 0 {
			continue
		}
		switch msg.Role {
		case insight.RoleUser:
			b.WriteString(m.styles.StatusKey.Render("You: "))
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		case insight.RoleAssistant:
			b.WriteString(m.markdown(msg.Content))
			b.WriteString("\n\n")
		}
	}

	if len(m.messages) == 0 || m.messages[len(m.messages)-1].Role == insight.RoleUser {
		b.WriteString(m.styles.StatLabel.Render("Reflecting on your entry..."))
		b.WriteString("\n")
	}

	if reply, ok := insight.LatestReply(m.messages); ok && insight.NeedsCrisisSupport(reply.Content) {
		b.WriteString(m.styles.Warning.Render("Crisis resources"))
		b.WriteString("\n")
		for _, r := range insight.CrisisResources {
			b.WriteString(fmt.Sprintf("  %s: %s\n", r.Name, r.Contact))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m JournalModel) markdown(md string) string {
	out, err := cli.RenderMarkdown(md, m.viewport.Width, !m.plain)
	if err != nil {
		return md
	}
	return out
}
