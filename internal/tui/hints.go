package tui

import (
	"github.com/sbrock928/dealdesk/internal/tui/theme"
)

// renderHintBar renders key-description pairs separated by bullets.
// Example: renderHintBar("↑/↓", "navigate", "enter", "select") renders
// "↑/↓ navigate • enter select".
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	s := theme.Current().S()
	var result string
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += " " + s.HintSeparator.Render("•") + " "
		}
		result += s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1])
	}
	return result
}
