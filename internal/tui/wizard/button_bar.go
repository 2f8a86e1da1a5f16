package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar renders a centered row of buttons.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

var (
	styleButtonNormal = lipgloss.NewStyle().
				Foreground(colorText).
				Background(lipgloss.Color("#313244")).
				Padding(0, 2).
				MarginLeft(1).
				MarginRight(1)

	styleButtonDisabled = lipgloss.NewStyle().
				Foreground(colorOverlay0).
				Background(lipgloss.Color("#181825")).
				Padding(0, 2).
				MarginLeft(1).
				MarginRight(1)

	styleButtonFocused = lipgloss.NewStyle().
				Foreground(colorBase).
				Background(colorSecondary).
				Bold(true).
				Padding(0, 2).
				MarginLeft(1).
				MarginRight(1)
)

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, styleButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, styleButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, styleButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// stepButtons returns the Back/Next pair for a form step. The first step
// offers Cancel instead of Back.
func stepButtons(first bool, nextLabel string) []Button {
	back := "← Back"
	if first {
		back = "Cancel"
	}
	return []Button{
		{Label: back, State: ButtonNormal},
		{Label: nextLabel, State: ButtonFocused},
	}
}

// terminalButtons returns the choices of the terminal screen.
func terminalButtons(failed bool) []Button {
	if failed {
		return []Button{
			{Label: "Back to review", State: ButtonFocused},
			{Label: "Start over", State: ButtonNormal},
			{Label: "Quit", State: ButtonNormal},
		}
	}
	return []Button{
		{Label: "Add another", State: ButtonFocused},
		{Label: "Quit", State: ButtonNormal},
	}
}
