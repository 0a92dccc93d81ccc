// Package theme defines the console color palette and the pre-built styles
// derived from it.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the console.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Diff colors
	DiffInsertBg string
	DiffDeleteBg string
	DiffEqualBg  string

	styles     *Styles
	stylesOnce sync.Once
}

// S returns the pre-built styles for this theme, built lazily on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		Hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		FieldError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)),
		HintKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Bold(true),
		HintDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgSurface1)),
	}
}

var (
	currentMu sync.RWMutex
	current   *Theme
)

// Current returns the active theme, defaulting to Catppuccin Mocha.
func Current() *Theme {
	currentMu.RLock()
	th := current
	currentMu.RUnlock()
	if th != nil {
		return th
	}

	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		current = NewCatppuccinMocha()
	}
	return current
}

// SetCurrent replaces the active theme.
func SetCurrent(t *Theme) {
	currentMu.Lock()
	current = t
	currentMu.Unlock()
}
