package ui

// ReloadMsg asks every view to fetch a fresh snapshot. Entity is empty when
// the change is not tied to one entity.
type ReloadMsg struct {
	Entity string
}

// StatusMsg is shown in the status bar until the next one.
type StatusMsg struct {
	Text string
	Err  bool
}

// ThemeChangedMsg is broadcast to all views when the theme changes.
type ThemeChangedMsg struct {
	ThemeName string
	Styles    Styles
}
