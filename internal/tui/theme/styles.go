package theme

import "charm.land/lipgloss/v2"

// Styles contains the pre-built lipgloss styles shared across views.
type Styles struct {
	HeaderTitle   lipgloss.Style
	Hint          lipgloss.Style
	FieldError    lipgloss.Style
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}
