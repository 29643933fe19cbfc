// Package views holds the tab views of the TUI. Each view loads its data
// through tea commands and re-fetches on ui.ReloadMsg.
package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/haven/internal/tui/ui"
)

var sparkBlocks = []rune("▁▂▄▆█")

// Sparkline renders mood scores 1-5 as one block per score.
func Sparkline(scores []int) string {
	var b strings.Builder
	for _, s := range scores {
		s = min(max(s, 1), len(sparkBlocks))
		b.WriteRune(sparkBlocks[s-1])
	}
	return b.String()
}

// status returns a command that shows text in the status bar.
func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return ui.StatusMsg{Text: text, Err: isErr}
	}
}

func errorLine(styles ui.Styles, err error) string {
	return styles.Error.Render(fmt.Sprintf("Error: %v", err))
}

// reloads reports whether msg concerns entity.
func reloads(msg ui.ReloadMsg, entities ...string) bool {
	if msg.Entity == "" {
		return true
	}
	for _, e := range entities {
		if msg.Entity == e {
			return true
		}
	}
	return false
}

// clampCursor keeps cursor inside a list of n items.
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	return max(cursor, 0)
}
