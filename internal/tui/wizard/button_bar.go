package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonDisabled
	ButtonFocused
)

// Button is a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar renders the Back/Next row under each step.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{buttons: buttons, width: 60}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the button bar centered in its width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	normalStyle := lipgloss.NewStyle().
		Foreground(colorText).
		Background(colorSurface0).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	disabledStyle := lipgloss.NewStyle().
		Foreground(colorOverlay0).
		Background(colorMantle).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	focusedStyle := lipgloss.NewStyle().
		Foreground(colorBase).
		Background(colorSecondary).
		Bold(true).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	var rendered []string
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, disabledStyle.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, focusedStyle.Render(btn.Label))
		default:
			rendered = append(rendered, normalStyle.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// CreateBackNextButtons creates the standard Back/Next button set. The back
// button is disabled on the first step; next is disabled while the step
// fails validation.
func CreateBackNextButtons(backEnabled, nextEnabled bool, nextLabel string) []Button {
	backState := ButtonNormal
	if !backEnabled {
		backState = ButtonDisabled
	}
	nextState := ButtonNormal
	if !nextEnabled {
		nextState = ButtonDisabled
	}
	return []Button{
		{Label: "← Back", State: backState},
		{Label: nextLabel, State: nextState},
	}
}
