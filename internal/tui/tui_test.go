package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/haven/internal/config"
	"github.com/xolan/haven/internal/identity"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/tui/ui"
)

func setupTestServices(t *testing.T) *service.Services {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewJSONLStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("NewJSONLStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	return service.NewServicesWith(service.Options{
		Store:      store,
		Identity:   identity.Static{User: &identity.User{Email: "ada@example.com"}},
		Config:     cfg,
		ConfigPath: filepath.Join(dir, config.ConfigFile),
		Now:        func() time.Time { return time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC) },
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNew(t *testing.T) {
	model := New(context.Background(), setupTestServices(t), nil)

	if model.ActiveTab() != TabMood {
		t.Errorf("initial tab = %d, want Mood", model.ActiveTab())
	}
	if model.ThemeName() != ui.DefaultTheme {
		t.Errorf("ThemeName() = %q, want %q", model.ThemeName(), ui.DefaultTheme)
	}
	if model.showHelp {
		t.Error("expected showHelp to be false initially")
	}
	if model.Init() == nil {
		t.Error("expected Init to return a command")
	}
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	model := New(context.Background(), setupTestServices(t), nil)
	if got := model.View(); got != "Loading..." {
		t.Errorf("View() before sizing = %q", got)
	}

	m, _ := update(t, model, tea.WindowSizeMsg{Width: 100, Height: 50})
	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
}

func TestUpdate_TabNavigation(t *testing.T) {
	m := New(context.Background(), setupTestServices(t), nil)

	want := []Tab{TabJournal, TabCommunity, TabMood}
	for _, tab := range want {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.ActiveTab() != tab {
			t.Fatalf("after tab ActiveTab() = %d, want %d", m.ActiveTab(), tab)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.ActiveTab() != TabCommunity {
		t.Errorf("after shift+tab ActiveTab() = %d, want Community", m.ActiveTab())
	}
}

func TestUpdate_QuitKey(t *testing.T) {
	m := New(context.Background(), setupTestServices(t), nil)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !isQuit(cmd) {
		t.Error("q should quit")
	}
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !isQuit(cmd) {
		t.Error("ctrl+c should quit")
	}
}

func TestUpdate_SearchCapturesKeys(t *testing.T) {
	m := New(context.Background(), setupTestServices(t), nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if isQuit(cmd) {
		t.Fatal("q while searching should be typed, not quit")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.ActiveTab() != TabJournal {
		t.Errorf("tab while searching switched to %d", m.ActiveTab())
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !isQuit(cmd) {
		t.Error("ctrl+c should always quit")
	}
}

func TestUpdate_HelpToggle(t *testing.T) {
	m := New(context.Background(), setupTestServices(t), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	view := m.View()
	for _, want := range []string{"Keyboard Shortcuts", "Mood:", "check in", "next theme"} {
		if !strings.Contains(view, want) {
			t.Errorf("help overlay missing %q", want)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("second ? should close help")
	}
}

func TestUpdate_StatusMsg(t *testing.T) {
	m := New(context.Background(), setupTestServices(t), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, ui.StatusMsg{Text: "Checked in: 😊 Good"})

	if !strings.Contains(m.View(), "Checked in: 😊 Good") {
		t.Errorf("status bar should show the last status:\n%s", m.View())
	}
}

func TestUpdate_CycleThemeSavesConfig(t *testing.T) {
	services := setupTestServices(t)
	m := New(context.Background(), services, nil)
	before := m.ThemeName()

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'T'}})
	if m.ThemeName() == before {
		t.Fatalf("theme did not change from %q", before)
	}
	if m.status.Text != "Theme: "+m.ThemeName() {
		t.Errorf("status = %q", m.status.Text)
	}

	// run the batch so the save happens
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				c()
			}
		}
	}
	if got := services.Config.Get().Theme; got != m.ThemeName() {
		t.Errorf("saved theme = %q, want %q", got, m.ThemeName())
	}
}

func TestUpdate_ReloadRearmsWatcher(t *testing.T) {
	services := setupTestServices(t)
	dir, ok := services.Storage.WatchDir()
	if !ok {
		t.Fatal("JSONL store should expose its directory")
	}
	w, err := NewWatcher(dir, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	m := New(context.Background(), services, w)
	if _, cmd := update(t, m, ui.ReloadMsg{Entity: storage.EntityMood}); cmd == nil {
		t.Error("reload should refresh views and wait for the next change")
	}
}
