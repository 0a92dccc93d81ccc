package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

// Client is the backend surface the wizard needs: catalog lookups for the
// selection steps, SQL preview for review, and the save/update operations.
type Client interface {
	ListDeals(ctx context.Context, issuerCode string) ([]api.Deal, error)
	ListIssuerCodes(ctx context.Context) ([]string, error)
	ListTranches(ctx context.Context, dlNbr int) ([]api.Tranche, error)
	ListCalculations(ctx context.Context, scope string) ([]api.Calculation, error)
	ListCycleCodes(ctx context.Context) ([]int, error)
	PreviewSQL(ctx context.Context, reportID, cycleCode int) (*api.SQLPreview, error)
	report.ReportService
}

// Model drives the five-step report builder. It owns the shared draft and
// forwards messages to the active step component.
type Model struct {
	client Client
	user   string

	draft    *report.Draft
	editing  *api.ReportConfig
	editMode bool

	step   int
	saving bool

	configStep  *ConfigStep
	dealStep    *DealStep
	trancheStep *TrancheStep
	calcStep    *CalcStep
	reviewStep  *ReviewStep

	width  int
	height int
}

// saveFinishedMsg is internal to the wizard: it carries the save outcome
// plus every notice the operation emitted, in order.
type saveFinishedMsg struct {
	ok      bool
	config  *api.ReportConfig
	update  bool
	notices []report.Notice
}

// New creates a wizard for building a new report.
func New(client Client, user string) *Model {
	return &Model{
		client: client,
		user:   user,
		draft:  report.NewDraft(),
		step:   report.StepConfiguration,
		width:  80,
		height: 24,
	}
}

// NewEdit creates a wizard seeded from a saved report configuration.
func NewEdit(client Client, user string, cfg *api.ReportConfig) *Model {
	m := New(client, user)
	m.editing = cfg
	m.editMode = true
	m.draft.HydrateFromConfig(cfg)
	return m
}

// Draft exposes the draft under construction, mainly for tests.
func (m *Model) Draft() *report.Draft { return m.draft }

// Step reports the current wizard step.
func (m *Model) Step() int { return m.step }

// Init initializes the first step.
func (m *Model) Init() tea.Cmd {
	return m.initStep()
}

// SetSize updates the wizard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.sizeSteps()
}

func (m *Model) sizeSteps() {
	contentWidth := min(max(m.width-10, 50), 110)
	contentHeight := max(m.height-10, 12)
	if m.configStep != nil {
		m.configStep.SetSize(contentWidth, contentHeight)
	}
	if m.dealStep != nil {
		m.dealStep.SetSize(contentWidth, contentHeight)
	}
	if m.trancheStep != nil {
		m.trancheStep.SetSize(contentWidth, contentHeight)
	}
	if m.calcStep != nil {
		m.calcStep.SetSize(contentWidth, contentHeight)
	}
	if m.reviewStep != nil {
		m.reviewStep.SetSize(contentWidth, contentHeight)
	}
}

// Update handles wizard messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return cmd
		}

	case configCompleteMsg:
		return m.advance()

	case saveFinishedMsg:
		m.saving = false
		var cmds []tea.Cmd
		for _, n := range msg.notices {
			n := n
			cmds = append(cmds, func() tea.Msg { return NoticeMsg{Notice: n} })
		}
		if msg.ok {
			cmds = append(cmds, func() tea.Msg {
				return DoneMsg{Config: msg.config, Update: msg.update}
			})
		}
		return tea.Batch(cmds...)
	}

	return m.forward(msg)
}

// handleKey processes wizard-level navigation. Keys the active step needs
// for its own input (filters, renames) are left to the step.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	if m.saving {
		return nil, true
	}
	if m.capturing() {
		return nil, false
	}

	switch msg.String() {
	case "esc":
		if m.step == report.StepConfiguration {
			return func() tea.Msg { return CancelledMsg{} }, true
		}
		m.goBack()
		return m.initStep(), true

	case "enter":
		// The configuration step validates and advances itself.
		if m.step == report.StepConfiguration {
			return nil, false
		}
		if m.step == report.StepReview {
			return m.save(), true
		}
		if report.CanProceedToNextStep(m.step, m.draft) {
			return m.advance(), true
		}
		res := report.ValidateStep(m.step, m.draft)
		var cmds []tea.Cmd
		for _, fe := range res.Errors {
			fe := fe
			cmds = append(cmds, func() tea.Msg {
				return NoticeMsg{Notice: report.Notice{
					Level:   report.NoticeError,
					Field:   fe.Field,
					Message: fe.Message,
				}}
			})
		}
		return tea.Batch(cmds...), true
	}

	return nil, false
}

// capturing reports whether the active step owns the keyboard, e.g. while
// a filter or rename input has focus.
func (m *Model) capturing() bool {
	switch m.step {
	case report.StepDealSelection:
		return m.dealStep != nil && m.dealStep.Capturing()
	case report.StepCalculationSelection:
		return m.calcStep != nil && m.calcStep.Capturing()
	}
	return false
}

// advance moves to the next step, skipping tranche selection for DEAL scope.
func (m *Model) advance() tea.Cmd {
	next := m.step + 1
	if next == report.StepTrancheSelection && m.draft.Scope == report.ScopeDeal {
		next++
	}
	if next > report.StepReview {
		return nil
	}
	m.step = next
	return m.initStep()
}

// goBack moves to the previous step, with the same tranche skip.
func (m *Model) goBack() {
	prev := m.step - 1
	if prev == report.StepTrancheSelection && m.draft.Scope == report.ScopeDeal {
		prev--
	}
	if prev < report.StepConfiguration {
		prev = report.StepConfiguration
	}
	m.step = prev
}

// initStep creates the active step component if needed and runs its Init.
// Selection steps are rebuilt on entry so edits to earlier steps (scope
// changes, deselected deals) are always reflected.
func (m *Model) initStep() tea.Cmd {
	var cmd tea.Cmd
	switch m.step {
	case report.StepConfiguration:
		if m.configStep == nil {
			m.configStep = NewConfigStep(m.draft)
		}
		cmd = m.configStep.Init()
	case report.StepDealSelection:
		if m.dealStep == nil {
			m.dealStep = NewDealStep(m.client, m.draft)
		}
		cmd = m.dealStep.Init()
	case report.StepTrancheSelection:
		m.trancheStep = NewTrancheStep(m.client, m.draft)
		cmd = m.trancheStep.Init()
	case report.StepCalculationSelection:
		if m.calcStep == nil {
			m.calcStep = NewCalcStep(m.client, m.draft)
		}
		cmd = m.calcStep.Init()
	case report.StepReview:
		m.reviewStep = NewReviewStep(m.client, m.draft, m.editing)
		cmd = m.reviewStep.Init()
	}
	m.sizeSteps()
	return cmd
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	switch m.step {
	case report.StepConfiguration:
		if m.configStep != nil {
			return m.configStep.Update(msg)
		}
	case report.StepDealSelection:
		if m.dealStep != nil {
			return m.dealStep.Update(msg)
		}
	case report.StepTrancheSelection:
		if m.trancheStep != nil {
			return m.trancheStep.Update(msg)
		}
	case report.StepCalculationSelection:
		if m.calcStep != nil {
			return m.calcStep.Update(msg)
		}
	case report.StepReview:
		if m.reviewStep != nil {
			return m.reviewStep.Update(msg)
		}
	}
	return nil
}

// save runs the create-or-update operation off the UI thread and returns
// its notices plus the outcome as a single message.
func (m *Model) save() tea.Cmd {
	m.saving = true
	d := m.draft
	editing := m.editing
	update := m.editMode
	svc := Client(m.client)
	user := m.user
	return func() tea.Msg {
		var notices []report.Notice
		ops := report.NewOps(svc, report.Identity{Username: user}, func(n report.Notice) {
			notices = append(notices, n)
		})
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		var saved *api.ReportConfig
		ok := ops.SaveOrUpdate(ctx, d, editing, update, func(cfg *api.ReportConfig) {
			saved = cfg
		})
		return saveFinishedMsg{ok: ok, config: saved, update: update, notices: notices}
	}
}

var stepNames = map[int]string{
	report.StepConfiguration:        "Configuration",
	report.StepDealSelection:        "Select Deals",
	report.StepTrancheSelection:     "Select Tranches",
	report.StepCalculationSelection: "Calculations & Columns",
	report.StepReview:               "Review & Save",
}

// visibleSteps lists the steps in navigation order for the current scope.
func (m *Model) visibleSteps() []int {
	steps := []int{report.StepConfiguration, report.StepDealSelection}
	if m.draft.Scope != report.ScopeDeal {
		steps = append(steps, report.StepTrancheSelection)
	}
	return append(steps, report.StepCalculationSelection, report.StepReview)
}

// View renders the active step inside the wizard frame.
func (m *Model) View() string {
	steps := m.visibleSteps()
	position := 1
	for i, s := range steps {
		if s == m.step {
			position = i + 1
			break
		}
	}

	mode := "New Report"
	if m.editMode {
		mode = "Edit Report"
	}
	title := fmt.Sprintf("%s — Step %d of %d: %s", mode, position, len(steps), stepNames[m.step])

	var body string
	switch m.step {
	case report.StepConfiguration:
		if m.configStep != nil {
			body = m.configStep.View()
		}
	case report.StepDealSelection:
		if m.dealStep != nil {
			body = m.dealStep.View()
		}
	case report.StepTrancheSelection:
		if m.trancheStep != nil {
			body = m.trancheStep.View()
		}
	case report.StepCalculationSelection:
		if m.calcStep != nil {
			body = m.calcStep.View()
		}
	case report.StepReview:
		if m.reviewStep != nil {
			body = m.reviewStep.View()
		}
	}

	if m.saving {
		body += "\n" + styleDimText.Render("Saving...")
	}

	frameWidth := min(max(m.width-6, 54), 114)

	nextLabel := "Next →"
	if m.step == report.StepReview {
		nextLabel = "Save"
		if m.editMode {
			nextLabel = "Save Changes"
		}
	}
	buttons := CreateBackNextButtons(m.step != report.StepConfiguration,
		report.CanProceedToNextStep(m.step, m.draft), nextLabel)
	if !m.saving && buttons[1].State == ButtonNormal {
		buttons[1].State = ButtonFocused
	}
	bar := NewButtonBar(buttons)
	bar.SetWidth(frameWidth - 6)

	content := strings.Join([]string{
		styleStepTitle.Width(frameWidth - 6).Render(title),
		"",
		body,
		"",
		bar.Render(),
	}, "\n")

	frame := styleWizardFrame.Width(frameWidth).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame)
}
