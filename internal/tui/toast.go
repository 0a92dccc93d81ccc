package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// ToastDismissMsg is sent when the toast should be dismissed.
type ToastDismissMsg struct{}

// ToastLevel selects the toast color.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

// ShowToastMsg asks the app to show a toast notification.
type ShowToastMsg struct {
	Text  string
	Level ToastLevel
}

// showToast returns a command emitting a ShowToastMsg.
func showToast(text string, level ToastLevel) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Text: text, Level: level} }
}

// Toast is a transient notification rendered in the bottom-right corner.
// Info and success toasts dismiss after 3 seconds, errors stay for 6 so the
// operator can read the failure.
type Toast struct {
	message   string
	level     ToastLevel
	visible   bool
	dismissAt time.Time
}

// NewToast creates a new Toast component.
func NewToast() *Toast {
	return &Toast{}
}

// Show displays a toast and schedules its dismissal.
func (t *Toast) Show(msg string, level ToastLevel) tea.Cmd {
	t.message = msg
	t.level = level
	t.visible = true

	hold := 3 * time.Second
	if level == ToastError {
		hold = 6 * time.Second
	}
	t.dismissAt = time.Now().Add(hold)
	return t.dismissCmd()
}

func (t *Toast) dismissCmd() tea.Cmd {
	remaining := time.Until(t.dismissAt)
	if remaining <= 0 {
		remaining = 1 * time.Millisecond
	}
	return tea.Tick(remaining, func(time.Time) tea.Msg {
		return ToastDismissMsg{}
	})
}

// Update handles toast messages.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case ToastDismissMsg:
		// A newer Show may have pushed the deadline out; keep showing.
		if time.Now().Before(t.dismissAt) {
			return t.dismissCmd()
		}
		t.visible = false
		t.message = ""
		return nil
	}
	return nil
}

// Render returns just the styled toast box, for callers that position it
// themselves. Empty when hidden.
func (t *Toast) Render(maxWidth int) string {
	if !t.visible || t.message == "" {
		return ""
	}

	bg := colorInfo
	switch t.level {
	case ToastSuccess:
		bg = colorSuccess
	case ToastError:
		bg = colorError
	}

	style := lipgloss.NewStyle().
		Foreground(colorMantle).
		Background(bg).
		Padding(0, 1).
		Bold(true)

	content := style.Render(t.message)
	if lipgloss.Width(content) > maxWidth-2 {
		content = style.Width(maxWidth - 2).Render(t.message)
	}
	return content
}

// View renders the toast for the given screen dimensions. Empty when hidden.
func (t *Toast) View(width, height int) string {
	content := t.Render(width)
	if content == "" {
		return ""
	}

	// Position one row above the footer, right-aligned.
	verticalPadding := height - 2
	if verticalPadding < 0 {
		verticalPadding = 0
	}

	var result string
	for i := 0; i < verticalPadding; i++ {
		result += "\n"
	}
	result += lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Right).
		PaddingRight(1).
		Render(content)

	return result
}

// IsVisible reports whether the toast is currently shown.
func (t *Toast) IsVisible() bool {
	return t.visible
}

// Message returns the current toast text (empty if hidden).
func (t *Toast) Message() string {
	if !t.visible {
		return ""
	}
	return t.message
}
