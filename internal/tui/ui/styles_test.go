package ui

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func fg(s lipgloss.Style) string {
	return fmt.Sprint(s.GetForeground())
}

func TestStyles_Mood(t *testing.T) {
	s := NewThemeProvider("").Styles()

	seen := map[string]int{}
	for score := 1; score <= 5; score++ {
		c := fg(s.Mood(score))
		if prev, ok := seen[c]; ok {
			t.Errorf("Mood(%d) and Mood(%d) share color %s", prev, score, c)
		}
		seen[c] = score
	}
	for _, score := range []int{0, 6, -1} {
		if fg(s.Mood(score)) != fg(s.ItemMeta) {
			t.Errorf("Mood(%d) should fall back to ItemMeta", score)
		}
	}
}

func TestThemeProvider_StylesFollowTheme(t *testing.T) {
	tp := NewThemeProvider("nord")
	nord := tp.Styles()
	tp.SetTheme("dracula")
	dracula := tp.Styles()

	if fg(nord.TabActive) == fg(dracula.TabActive) {
		t.Error("TabActive color did not change with the theme")
	}
}
