package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

const (
	paneCalculations = iota
	paneColumns
)

// CalcStep selects calculations and edits the resulting column preferences.
// The left pane is the scope-filtered calculation catalog; the right pane is
// the resolved column list with rename, visibility, format, and reorder.
type CalcStep struct {
	client Client
	draft  *report.Draft

	calcs []api.Calculation

	pane       int
	calcCursor int
	calcOffset int
	colCursor  int

	renaming    bool
	renameInput textinput.Model

	fetchSeq uint64
	lastSeq  uint64
	loading  bool
	loadErr  string

	width  int
	height int
}

// NewCalcStep creates the calculation selection step.
func NewCalcStep(client Client, draft *report.Draft) *CalcStep {
	renameInput := textinput.New()
	renameInput.Prompt = "Rename: "
	renameInput.SetStyles(inputStyles())
	renameInput.SetWidth(30)

	s := &CalcStep{
		client:      client,
		draft:       draft,
		renameInput: renameInput,
		width:       80,
		height:      16,
	}

	// The column resolver consumes the draft's change feed; selection
	// toggles never call it directly.
	draft.Subscribe(func(c report.Change) {
		if c.Kind == report.ChangeCalculations {
			s.resolveColumns()
		}
	})
	return s
}

// Init fetches the calculation catalog for the draft's scope. Entering the
// step publishes no draft change, so the one resolve here seeds the default
// columns; every later resolve comes through the change subscription.
func (s *CalcStep) Init() tea.Cmd {
	s.resolveColumns()
	return s.fetch()
}

// Capturing reports whether the rename input owns the keyboard.
func (s *CalcStep) Capturing() bool { return s.renaming }

// SetSize updates the step dimensions.
func (s *CalcStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.renameInput.SetWidth(max(width/2-8, 20))
}

func (s *CalcStep) fetch() tea.Cmd {
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	client := s.client
	scope := string(s.draft.Scope)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		calcs, err := client.ListCalculations(ctx, scope)
		return CalculationsLoadedMsg{Seq: seq, Calculations: calcs, Err: err}
	}
}

// Update handles messages for the calculation step.
func (s *CalcStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CalculationsLoadedMsg:
		if msg.Seq < s.lastSeq {
			return nil
		}
		s.lastSeq = msg.Seq
		s.loading = false
		if msg.Err != nil {
			s.loadErr = fetchErrorText(msg.Err)
			return nil
		}
		s.loadErr = ""
		s.calcs = msg.Calculations
		if s.calcCursor >= len(s.calcs) {
			s.calcCursor = max(len(s.calcs)-1, 0)
		}
		return nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *CalcStep) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if s.renaming {
		switch msg.String() {
		case "enter":
			s.commitRename()
			return nil
		case "esc":
			s.renaming = false
			s.renameInput.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.renameInput, cmd = s.renameInput.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "tab":
		s.pane = (s.pane + 1) % 2
		return nil
	case "up", "k":
		s.move(-1)
		return nil
	case "down", "j":
		s.move(1)
		return nil
	}

	if s.pane == paneCalculations {
		switch msg.String() {
		case "space":
			s.toggleCalc()
		case "r":
			return s.fetch()
		}
		return nil
	}

	cols := s.columns()
	if len(cols) == 0 || s.colCursor >= len(cols) {
		return nil
	}
	switch msg.String() {
	case "space", "v":
		s.toggleVisibility()
	case "f":
		s.cycleFormat()
	case "n":
		s.startRename()
		return s.renameInput.Focus()
	case "shift+up", "K":
		s.reorder(-1)
	case "shift+down", "J":
		s.reorder(1)
	}
	return nil
}

func (s *CalcStep) move(delta int) {
	if s.pane == paneCalculations {
		s.calcCursor += delta
		s.calcCursor = max(0, min(s.calcCursor, len(s.calcs)-1))
		if s.calcCursor < 0 {
			s.calcCursor = 0
		}
		rows := s.visibleRows()
		if s.calcCursor < s.calcOffset {
			s.calcOffset = s.calcCursor
		}
		if s.calcCursor >= s.calcOffset+rows {
			s.calcOffset = s.calcCursor - rows + 1
		}
		return
	}
	n := len(s.columns())
	s.colCursor += delta
	s.colCursor = max(0, min(s.colCursor, n-1))
	if s.colCursor < 0 {
		s.colCursor = 0
	}
}

func (s *CalcStep) visibleRows() int {
	return max(s.height-9, 4)
}

func (s *CalcStep) columns() []report.ColumnPreference {
	if s.draft.Columns == nil {
		return nil
	}
	return s.draft.Columns.Columns
}

// toggleCalc flips the selection of the calculation under the cursor. The
// draft publishes the calculation change, which drives the column resolve.
func (s *CalcStep) toggleCalc() {
	if s.calcCursor >= len(s.calcs) {
		return
	}
	calc := s.calcs[s.calcCursor]
	if s.isSelected(calc.ID) {
		s.draft.RemoveCalculation(calc.ID)
	} else {
		name := calc.Name
		s.draft.AddCalculation(report.SelectedCalculation{
			CalculationID: calc.ID,
			DisplayName:   &name,
		})
	}
}

func (s *CalcStep) isSelected(calculationID int) bool {
	for _, c := range s.draft.SelectedCalculations {
		if c.CalculationID == calculationID {
			return true
		}
	}
	return false
}

func (s *CalcStep) resolveColumns() {
	resolved := report.Resolve(s.draft.SelectedCalculations, s.draft.Scope, s.draft.Columns, true)
	s.draft.SetColumns(&resolved)
	if s.colCursor >= len(resolved.Columns) {
		s.colCursor = max(len(resolved.Columns)-1, 0)
	}
}

func (s *CalcStep) toggleVisibility() {
	cols := s.draft.Columns
	cols.Columns[s.colCursor].IsVisible = !cols.Columns[s.colCursor].IsVisible
	s.draft.SetColumns(cols)
}

func (s *CalcStep) cycleFormat() {
	cols := s.draft.Columns
	cols.Columns[s.colCursor].Format = cols.Columns[s.colCursor].Format.Next()
	s.draft.SetColumns(cols)
}

func (s *CalcStep) startRename() {
	s.renaming = true
	s.renameInput.SetValue(s.columns()[s.colCursor].DisplayName)
	s.renameInput.CursorEnd()
}

func (s *CalcStep) commitRename() {
	name := strings.TrimSpace(s.renameInput.Value())
	s.renaming = false
	s.renameInput.Blur()
	if name == "" {
		return
	}
	cols := s.draft.Columns
	cols.Columns[s.colCursor].DisplayName = name
	s.draft.SetColumns(cols)
}

func (s *CalcStep) reorder(delta int) {
	from := s.colCursor
	to := from + delta
	resolved := report.Reorder(*s.draft.Columns, from, to)
	s.draft.SetColumns(&resolved)
	s.colCursor = max(0, min(to, len(resolved.Columns)-1))
}

// View renders the two panes side by side.
func (s *CalcStep) View() string {
	paneWidth := max(s.width/2-2, 30)
	left := s.renderCalcPane(paneWidth)
	right := s.renderColumnPane(paneWidth)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if s.renaming {
		b.WriteString(s.renameInput.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"tab", "switch pane",
		"space", "toggle",
		"n", "rename",
		"f", "format",
		"shift+↑↓", "reorder",
		"enter", "continue",
	))
	return b.String()
}

func (s *CalcStep) renderCalcPane(width int) string {
	var lines []string
	title := styleLabel.Render("Calculations")
	if s.pane == paneCalculations {
		title = styleSelected.Render("Calculations")
	}
	lines = append(lines, title, "")

	switch {
	case s.loading && len(s.calcs) == 0:
		lines = append(lines, styleDimText.Render("Loading..."))
	case s.loadErr != "":
		lines = append(lines, styleErrorText.Render("✗ "+s.loadErr))
	case len(s.calcs) == 0:
		lines = append(lines, styleDimText.Render("No calculations available"))
	default:
		rows := s.visibleRows()
		end := min(s.calcOffset+rows, len(s.calcs))
		for i := s.calcOffset; i < end; i++ {
			calc := s.calcs[i]
			mark := "[ ]"
			markStyle := styleUnchecked
			if s.isSelected(calc.ID) {
				mark = "[✓]"
				markStyle = styleChecked
			}
			line := markStyle.Render(mark) + " " + calc.Name
			if calc.Category != "" {
				line += styleDimText.Render("  " + calc.Category)
			}
			if i == s.calcCursor && s.pane == paneCalculations {
				line = styleSelected.Render("› ") + line
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (s *CalcStep) renderColumnPane(width int) string {
	var lines []string
	title := styleLabel.Render("Columns")
	if s.pane == paneColumns {
		title = styleSelected.Render("Columns")
	}
	lines = append(lines, title, "")

	cols := s.columns()
	if len(cols) == 0 {
		lines = append(lines, styleDimText.Render("No columns yet"))
	}
	for i, col := range cols {
		nameStyle := styleValue
		if !col.IsVisible {
			nameStyle = styleHidden
		}
		line := fmt.Sprintf("%s %s", nameStyle.Render(col.DisplayName), styleDimText.Render(col.Format.String()))
		if !col.IsVisible {
			line += styleDimText.Render("  hidden")
		}
		if i == s.colCursor && s.pane == paneColumns {
			line = styleSelected.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
