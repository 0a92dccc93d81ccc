package tui

import (
	"charm.land/lipgloss/v2"
)

// Catppuccin Mocha palette. Backgrounds run darkest to lightest, text runs
// dimmest to brightest; semantic colors follow the usual traffic-light
// meanings.
var (
	// === BASE LAYER (backgrounds) ===
	colorBase     = lipgloss.Color("#1e1e2e") // Base background (darkest)
	colorMantle   = lipgloss.Color("#181825") // Slightly darker than base
	colorSurface0 = lipgloss.Color("#313244") // Surface overlay (light)
	colorSurface1 = lipgloss.Color("#45475a") // Surface overlay (medium)
	colorSurface2 = lipgloss.Color("#585b70") // Surface overlay (dark)
	colorOverlay0 = lipgloss.Color("#6c7086") // Overlay for subtle elements

	// === TEXT LAYER (foreground) ===
	colorSubtext0   = lipgloss.Color("#a6adc8") // Subtext (muted)
	colorText       = lipgloss.Color("#cdd6f4") // Main text color
	colorTextBright = lipgloss.Color("#f5e0dc") // Brightest text (rosewater)

	// === ACCENT COLORS (semantic) ===
	colorPrimary   = lipgloss.Color("#cba6f7") // Mauve (primary brand color)
	colorSecondary = lipgloss.Color("#89b4fa") // Blue (secondary actions)

	colorSuccess = lipgloss.Color("#a6e3a1") // Green
	colorWarning = lipgloss.Color("#f9e2af") // Yellow
	colorError   = lipgloss.Color("#f38ba8") // Red
	colorInfo    = lipgloss.Color("#89dceb") // Sky

	// === ALIASES ===
	colorMuted    = colorOverlay0
	colorTextDim  = colorSubtext0
	colorBgHeader = colorMantle
	colorBgFooter = colorMantle
)

// Style definitions
var (
	// Header styles
	styleHeader = lipgloss.NewStyle().
			Foreground(colorTextBright).
			Background(colorBgHeader).
			Bold(true).
			Padding(0, 1)

	styleHeaderTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleHeaderSeparator = lipgloss.NewStyle().
				Foreground(colorMuted)

	styleHeaderInfo = lipgloss.NewStyle().
			Foreground(colorText)

	// Footer styles
	styleFooter = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgFooter).
			Padding(0, 1)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleFooterLabel = lipgloss.NewStyle().
				Foreground(colorText)

	styleFooterActive = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// General styles
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Underline(true)

	styleSubtitle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleDim = lipgloss.NewStyle().
			Foreground(colorTextDim)

	styleFieldError = lipgloss.NewStyle().
			Foreground(colorError)

	// Table styles
	styleTableHeader = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true).
				Underline(true)

	styleTableRow = lipgloss.NewStyle().
			Foreground(colorText)

	styleTableSelected = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Background(colorSurface0).
				Bold(true)

	styleCheckedMark = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	// Log viewer styles
	styleLogTimestamp = lipgloss.NewStyle().
				Foreground(colorTextDim)

	styleLogDebug = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleLogInfo = lipgloss.NewStyle().
			Foreground(colorInfo)

	styleLogWarn = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleLogError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	styleLogContent = lipgloss.NewStyle().
			Foreground(colorText)

	// Panel styles
	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)

	stylePanelTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginBottom(1)

	// Modal styles
	styleModal = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2).
			Background(colorBase)

	styleInputField = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorSecondary).
			Padding(0, 1).
			Foreground(colorText)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true)

	// Badge styles
	styleBadge = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true)

	styleBadgeSuccess = styleBadge.
				Foreground(colorTextBright).
				Background(colorSuccess)

	styleBadgeError = styleBadge.
			Foreground(colorTextBright).
			Background(colorError)

	styleBadgeMuted = styleBadge.
			Foreground(colorText).
			Background(colorMuted)

	// Empty state styles
	styleEmptyState = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true).
			Align(lipgloss.Center)
)
