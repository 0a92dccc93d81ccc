package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sbrock928/dealdesk/internal/report"
)

// ConfigStep collects the report name, description, and scope.
type ConfigStep struct {
	draft *report.Draft

	nameInput textinput.Model
	descInput textinput.Model

	focusIndex int // 0=name, 1=description, 2=scope
	scopeIdx   int // 0=DEAL, 1=TRANCHE

	nameError  string
	scopeError string

	width  int
	height int
}

var scopeChoices = []report.Scope{report.ScopeDeal, report.ScopeTranche}

func inputStyles() textinput.Styles {
	return textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorText),
			Placeholder: lipgloss.NewStyle().Foreground(colorSubtext0),
			Prompt:      lipgloss.NewStyle().Foreground(colorSecondary),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorSubtext0),
			Placeholder: lipgloss.NewStyle().Foreground(colorSubtext0),
			Prompt:      lipgloss.NewStyle().Foreground(colorOverlay0),
		},
		Cursor: textinput.CursorStyle{
			Color: colorPrimary,
			Shape: tea.CursorBar,
			Blink: true,
		},
	}
}

// NewConfigStep creates the configuration step seeded from the draft.
func NewConfigStep(draft *report.Draft) *ConfigStep {
	nameInput := textinput.New()
	nameInput.Placeholder = "Enter report name..."
	nameInput.Prompt = ""
	nameInput.SetStyles(inputStyles())
	nameInput.SetWidth(50)
	nameInput.SetValue(draft.Name)

	descInput := textinput.New()
	descInput.Placeholder = "Optional description..."
	descInput.Prompt = ""
	descInput.SetStyles(inputStyles())
	descInput.SetWidth(50)
	descInput.SetValue(draft.Description)

	scopeIdx := 0
	if draft.Scope == report.ScopeTranche {
		scopeIdx = 1
	}

	return &ConfigStep{
		draft:     draft,
		nameInput: nameInput,
		descInput: descInput,
		scopeIdx:  scopeIdx,
		width:     60,
		height:    10,
	}
}

// Init focuses the name input.
func (c *ConfigStep) Init() tea.Cmd {
	c.focusIndex = 0
	return c.nameInput.Focus()
}

// Blur removes focus from all inputs.
func (c *ConfigStep) Blur() {
	c.nameInput.Blur()
	c.descInput.Blur()
}

// SetSize updates the step dimensions.
func (c *ConfigStep) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.nameInput.SetWidth(width - 10)
	c.descInput.SetWidth(width - 10)
}

// Update handles messages for the configuration step.
func (c *ConfigStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return c.forwardToInput(msg)
	}

	switch keyMsg.String() {
	case "tab", "down":
		c.focusIndex = (c.focusIndex + 1) % 3
		return c.updateFocus()
	case "shift+tab", "up":
		c.focusIndex = (c.focusIndex + 2) % 3
		return c.updateFocus()
	case "enter":
		c.commit()
		if c.validate() {
			return func() tea.Msg { return configCompleteMsg{} }
		}
		return nil
	}

	if c.focusIndex == 2 {
		switch keyMsg.String() {
		case "left", "right", "space", "h", "l":
			c.scopeIdx = (c.scopeIdx + 1) % 2
			c.scopeError = ""
			c.commit()
			return nil
		}
		return nil
	}

	return c.forwardToInput(msg)
}

func (c *ConfigStep) forwardToInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch c.focusIndex {
	case 0:
		c.nameInput, cmd = c.nameInput.Update(msg)
		if _, ok := msg.(tea.KeyPressMsg); ok {
			c.nameError = ""
			c.commit()
		}
	case 1:
		c.descInput, cmd = c.descInput.Update(msg)
		if _, ok := msg.(tea.KeyPressMsg); ok {
			c.commit()
		}
	}
	return cmd
}

func (c *ConfigStep) updateFocus() tea.Cmd {
	c.nameInput.Blur()
	c.descInput.Blur()
	switch c.focusIndex {
	case 0:
		return c.nameInput.Focus()
	case 1:
		return c.descInput.Focus()
	}
	return nil
}

// commit writes the inputs back to the draft.
func (c *ConfigStep) commit() {
	c.draft.SetName(c.nameInput.Value())
	c.draft.SetDescription(c.descInput.Value())
	c.draft.SetScope(scopeChoices[c.scopeIdx])
}

// validate runs the step validator and maps errors onto the inputs.
func (c *ConfigStep) validate() bool {
	res := report.ValidateStep(report.StepConfiguration, c.draft)
	c.nameError = ""
	c.scopeError = ""
	for _, fe := range res.Errors {
		switch fe.Field {
		case "reportName":
			c.nameError = fe.Message
		case "scope":
			c.scopeError = fe.Message
		}
	}
	return res.Valid
}

// View renders the configuration step.
func (c *ConfigStep) View() string {
	var b strings.Builder

	b.WriteString(styleLabel.Render("Report Name"))
	b.WriteString("\n")
	b.WriteString(c.nameInput.View())
	b.WriteString("\n")
	if c.nameError != "" {
		b.WriteString(styleErrorText.Render("✗ " + c.nameError))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styleLabel.Render("Description"))
	b.WriteString("\n")
	b.WriteString(c.descInput.View())
	b.WriteString("\n\n")

	b.WriteString(styleLabel.Render("Scope"))
	b.WriteString("\n")
	b.WriteString(c.renderScope())
	b.WriteString("\n")
	if c.scopeError != "" {
		b.WriteString(styleErrorText.Render("✗ " + c.scopeError))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderHintBar(
		"tab", "next field",
		"space", "toggle scope",
		"enter", "continue",
		"esc", "cancel",
	))

	return b.String()
}

func (c *ConfigStep) renderScope() string {
	labels := []string{"DEAL (one row per deal)", "TRANCHE (one row per tranche)"}
	var parts []string
	for i, label := range labels {
		marker := "( )"
		style := styleUnchecked
		if i == c.scopeIdx {
			marker = "(•)"
			style = styleValue
			if c.focusIndex == 2 {
				style = styleSelected
			}
		}
		parts = append(parts, style.Render(marker+" "+label))
	}
	return strings.Join(parts, "   ")
}
