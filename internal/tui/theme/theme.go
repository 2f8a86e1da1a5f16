// Package theme holds the palette and shared styles of the command line
// output.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for terminal output.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string

	// Foreground hierarchy (dim→bright)
	FgMuted string
	FgBase  string

	// Status colors
	Success string
	Warning string
	Error   string

	// Diff colors
	DiffInsertFg string
	DiffDeleteFg string
	DiffHunkFg   string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

// Styles contains the pre-built lipgloss styles of a theme.
type Styles struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	DiffInsert lipgloss.Style
	DiffDelete lipgloss.Style
	DiffHunk   lipgloss.Style
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return &Styles{
		Title:      fg(t.Primary).Bold(true),
		Muted:      fg(t.FgMuted),
		Success:    fg(t.Success).Bold(true),
		Warning:    fg(t.Warning),
		Error:      fg(t.Error).Bold(true),
		DiffInsert: fg(t.DiffInsertFg),
		DiffDelete: fg(t.DiffDeleteFg),
		DiffHunk:   fg(t.DiffHunkFg),
	}
}

var (
	current     *Theme
	currentOnce sync.Once
)

// Current returns the theme in use.
func Current() *Theme {
	currentOnce.Do(func() {
		current = NewClinic()
	})
	return current
}
