package wizard

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

type fakeClient struct {
	deals    []api.Deal
	tranches map[int][]api.Tranche
	calcs    []api.Calculation
	preview  *api.SQLPreview

	createCalls  int
	lastCreate   api.ReportRequest
	updateCalls  int
	lastUpdate   api.ReportRequest
	previewCycle int
}

func (f *fakeClient) ListDeals(_ context.Context, _ string) ([]api.Deal, error) {
	return f.deals, nil
}

func (f *fakeClient) ListIssuerCodes(_ context.Context) ([]string, error) {
	return []string{"FHLM", "GNMA"}, nil
}

func (f *fakeClient) ListTranches(_ context.Context, dlNbr int) ([]api.Tranche, error) {
	return f.tranches[dlNbr], nil
}

func (f *fakeClient) ListCalculations(_ context.Context, _ string) ([]api.Calculation, error) {
	return f.calcs, nil
}

func (f *fakeClient) ListCycleCodes(_ context.Context) ([]int, error) {
	return []int{202607, 202606}, nil
}

func (f *fakeClient) PreviewSQL(_ context.Context, _, cycleCode int) (*api.SQLPreview, error) {
	f.previewCycle = cycleCode
	return f.preview, nil
}

func (f *fakeClient) CreateReport(_ context.Context, req api.ReportRequest) (*api.ReportConfig, error) {
	f.createCalls++
	f.lastCreate = req
	return &api.ReportConfig{ID: 101, Name: req.Name, Scope: req.Scope}, nil
}

func (f *fakeClient) UpdateReport(_ context.Context, id int, req api.ReportRequest) (*api.ReportConfig, error) {
	f.updateCalls++
	f.lastUpdate = req
	return &api.ReportConfig{ID: id, Name: req.Name, Scope: req.Scope}, nil
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		deals: []api.Deal{
			{DlNbr: 1001, IssrCde: "FHLM", CycleCode: 202607},
			{DlNbr: 2002, IssrCde: "GNMA", CycleCode: 202607},
		},
		tranches: map[int][]api.Tranche{
			1001: {{TrID: "A1", DlNbr: 1001}, {TrID: "B", DlNbr: 1001}},
		},
		calcs: []api.Calculation{
			{ID: 5, Name: "Total Principal", Scope: "DEAL"},
			{ID: 9, Name: "Interest Due", Scope: "DEAL"},
		},
	}
}

// drain executes a command tree and returns every message it produces.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver executes a command and feeds its messages back into the model,
// returning any messages the model did not consume internally.
func deliver(m *Model, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case DoneMsg, CancelledMsg, NoticeMsg:
			out = append(out, msg)
		default:
			out = append(out, deliver(m, m.Update(msg))...)
		}
	}
	return out
}

func pressEnter(m *Model) []tea.Msg {
	return deliver(m, m.Update(tea.KeyPressMsg{Code: tea.KeyEnter}))
}

func completeConfig(t *testing.T, m *Model, scope report.Scope) {
	t.Helper()
	m.Draft().SetName("Monthly Deal Report")
	m.Draft().SetScope(scope)
	deliver(m, m.Update(configCompleteMsg{}))
	if m.Step() != report.StepDealSelection {
		t.Fatalf("Step after config = %d, want %d", m.Step(), report.StepDealSelection)
	}
}

func TestWizardSkipsTrancheStepForDealScope(t *testing.T) {
	m := New(newFakeClient(), "ssmith")
	deliver(m, m.Init())

	completeConfig(t, m, report.ScopeDeal)
	m.Draft().ToggleDeal(1001)

	pressEnter(m)
	if m.Step() != report.StepCalculationSelection {
		t.Fatalf("Step after deal selection = %d, want %d (tranche step skipped)", m.Step(), report.StepCalculationSelection)
	}

	// Backing out of the calculation step must also skip the tranche step.
	deliver(m, m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}))
	if m.Step() != report.StepDealSelection {
		t.Fatalf("Step after back = %d, want %d", m.Step(), report.StepDealSelection)
	}
}

func TestWizardVisitsTrancheStepForTrancheScope(t *testing.T) {
	m := New(newFakeClient(), "ssmith")
	deliver(m, m.Init())

	completeConfig(t, m, report.ScopeTranche)
	m.Draft().ToggleDeal(1001)

	pressEnter(m)
	if m.Step() != report.StepTrancheSelection {
		t.Fatalf("Step after deal selection = %d, want %d", m.Step(), report.StepTrancheSelection)
	}

	// Cannot advance without a tranche; the failed step emits its errors.
	msgs := pressEnter(m)
	if m.Step() != report.StepTrancheSelection {
		t.Fatalf("Step advanced without tranche selection")
	}
	foundNotice := false
	for _, msg := range msgs {
		if n, ok := msg.(NoticeMsg); ok && n.Notice.Field == "selectedTranches" {
			foundNotice = true
		}
	}
	if !foundNotice {
		t.Errorf("expected a selectedTranches notice, got %v", msgs)
	}

	m.Draft().ToggleTranche(1001, "A1")
	pressEnter(m)
	if m.Step() != report.StepCalculationSelection {
		t.Fatalf("Step after tranche selection = %d, want %d", m.Step(), report.StepCalculationSelection)
	}
}

func TestWizardCancelFromFirstStep(t *testing.T) {
	m := New(newFakeClient(), "ssmith")
	deliver(m, m.Init())

	msgs := deliver(m, m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}))
	cancelled := false
	for _, msg := range msgs {
		if _, ok := msg.(CancelledMsg); ok {
			cancelled = true
		}
	}
	if !cancelled {
		t.Fatalf("esc on the first step did not cancel, got %v", msgs)
	}
}

func TestWizardSaveEmitsDone(t *testing.T) {
	client := newFakeClient()
	m := New(client, "ssmith")
	deliver(m, m.Init())

	completeConfig(t, m, report.ScopeDeal)
	m.Draft().ToggleDeal(1001)
	pressEnter(m) // -> calculations

	// Select a calculation through the step so columns resolve.
	deliver(m, m.Update(tea.KeyPressMsg{Code: tea.KeySpace}))
	if len(m.Draft().SelectedCalculations) != 1 {
		t.Fatalf("SelectedCalculations = %d, want 1", len(m.Draft().SelectedCalculations))
	}

	pressEnter(m) // -> review
	if m.Step() != report.StepReview {
		t.Fatalf("Step = %d, want %d", m.Step(), report.StepReview)
	}

	msgs := pressEnter(m) // save
	if client.createCalls != 1 {
		t.Fatalf("createCalls = %d, want 1", client.createCalls)
	}
	if client.lastCreate.CreatedBy != "ssmith" {
		t.Errorf("CreatedBy = %q, want %q", client.lastCreate.CreatedBy, "ssmith")
	}

	var done *DoneMsg
	for _, msg := range msgs {
		if d, ok := msg.(DoneMsg); ok {
			done = &d
		}
	}
	if done == nil {
		t.Fatalf("no DoneMsg after save, got %v", msgs)
	}
	if done.Update {
		t.Errorf("DoneMsg.Update = true for a new report")
	}
	if done.Config == nil || done.Config.ID != 101 {
		t.Errorf("DoneMsg.Config = %+v, want ID 101", done.Config)
	}

	// A successful create resets the draft for the next report.
	if m.Draft().Name != "" || len(m.Draft().SelectedDeals) != 0 {
		t.Errorf("draft not reset after create: name=%q deals=%d", m.Draft().Name, len(m.Draft().SelectedDeals))
	}
}

func TestWizardEditUpdatesExisting(t *testing.T) {
	client := newFakeClient()
	cfg := &api.ReportConfig{
		ID:    14,
		Name:  "Quarterly",
		Scope: "DEAL",
		SelectedDeals: []api.ReportDealSelection{
			{DlNbr: 1001},
		},
		SelectedCalculations: []api.ReportCalculation{
			{CalculationID: 5, DisplayOrder: 0},
		},
	}
	m := NewEdit(client, "ssmith", cfg)
	deliver(m, m.Init())

	if m.Draft().Name != "Quarterly" {
		t.Fatalf("draft not hydrated: name = %q", m.Draft().Name)
	}

	deliver(m, m.Update(configCompleteMsg{}))
	if m.Step() != report.StepDealSelection {
		t.Fatalf("Step after config = %d, want %d", m.Step(), report.StepDealSelection)
	}
	pressEnter(m) // -> calculations
	pressEnter(m) // -> review
	msgs := pressEnter(m)

	if client.updateCalls != 1 {
		t.Fatalf("updateCalls = %d, want 1", client.updateCalls)
	}
	if client.createCalls != 0 {
		t.Fatalf("create called during update")
	}
	var done *DoneMsg
	for _, msg := range msgs {
		if d, ok := msg.(DoneMsg); ok {
			done = &d
		}
	}
	if done == nil || !done.Update {
		t.Fatalf("expected an update DoneMsg, got %v", msgs)
	}

	// Updates keep the draft so further edits start from the saved state.
	if m.Draft().Name != "Quarterly" {
		t.Errorf("draft reset after update: name = %q", m.Draft().Name)
	}
}

func TestDealStepDropsStaleFetch(t *testing.T) {
	s := NewDealStep(newFakeClient(), report.NewDraft())

	fresh := []api.Deal{{DlNbr: 3003, IssrCde: "FNMA"}}
	stale := []api.Deal{{DlNbr: 1001, IssrCde: "FHLM"}}

	s.Update(DealsLoadedMsg{Seq: 2, Deals: fresh})
	s.Update(DealsLoadedMsg{Seq: 1, Deals: stale})

	if len(s.deals) != 1 || s.deals[0].DlNbr != 3003 {
		t.Fatalf("stale fetch overwrote the newer result: %+v", s.deals)
	}
}

func TestDealStepFilter(t *testing.T) {
	draft := report.NewDraft()
	s := NewDealStep(newFakeClient(), draft)
	s.Update(DealsLoadedMsg{Seq: 1, Deals: []api.Deal{
		{DlNbr: 1001, IssrCde: "FHLM"},
		{DlNbr: 2002, IssrCde: "GNMA"},
	}})

	s.filter.SetValue("gnma")
	s.applyFilter()
	if len(s.filtered) != 1 || s.filtered[0].DlNbr != 2002 {
		t.Fatalf("filtered = %+v, want only 2002", s.filtered)
	}

	s.handleKey(tea.KeyPressMsg{Code: tea.KeySpace})
	if _, ok := draft.SelectedDeals[2002]; !ok {
		t.Errorf("space did not toggle the filtered deal")
	}
}

func TestDealStepIssuerCycle(t *testing.T) {
	s := NewDealStep(newFakeClient(), report.NewDraft())
	s.Update(IssuersLoadedMsg{Issuers: []string{"FHLM", "GNMA"}})

	if got := s.issuerCode(); got != "" {
		t.Fatalf("initial issuer = %q, want all", got)
	}

	cmd := s.handleKey(tea.KeyPressMsg{Code: 'i', Text: "i"})
	if cmd == nil {
		t.Fatalf("issuer cycle did not refetch")
	}
	if got := s.issuerCode(); got != "FHLM" {
		t.Fatalf("issuer after first cycle = %q, want FHLM", got)
	}

	s.handleKey(tea.KeyPressMsg{Code: 'i', Text: "i"})
	s.handleKey(tea.KeyPressMsg{Code: 'i', Text: "i"})
	if got := s.issuerCode(); got != "" {
		t.Fatalf("issuer after wrapping = %q, want all", got)
	}
}

func TestCalcStepColumnEditing(t *testing.T) {
	draft := report.NewDraft()
	draft.SetScope(report.ScopeDeal)
	s := NewCalcStep(newFakeClient(), draft)
	drain(s.Init())
	s.Update(CalculationsLoadedMsg{Seq: 99, Calculations: []api.Calculation{
		{ID: 5, Name: "Total Principal", Scope: "DEAL"},
	}})

	// Defaults resolve even before any calculation is picked.
	if draft.Columns == nil || len(draft.Columns.Columns) != 3 {
		t.Fatalf("expected the 3 default columns, got %+v", draft.Columns)
	}

	s.handleKey(tea.KeyPressMsg{Code: tea.KeySpace})
	if len(draft.Columns.Columns) != 4 {
		t.Fatalf("columns after selection = %d, want 4", len(draft.Columns.Columns))
	}
	if draft.Columns.Columns[3].DisplayName != "Total Principal" {
		t.Errorf("calc column name = %q", draft.Columns.Columns[3].DisplayName)
	}

	// Edit the calc column: hide, cycle format, rename.
	s.pane = paneColumns
	s.colCursor = 3

	s.handleKey(tea.KeyPressMsg{Code: 'v', Text: "v"})
	if draft.Columns.Columns[3].IsVisible {
		t.Errorf("v did not hide the column")
	}

	before := draft.Columns.Columns[3].Format
	s.handleKey(tea.KeyPressMsg{Code: 'f', Text: "f"})
	if draft.Columns.Columns[3].Format == before {
		t.Errorf("f did not cycle the format")
	}

	drain(s.handleKey(tea.KeyPressMsg{Code: 'n', Text: "n"}))
	if !s.Capturing() {
		t.Fatalf("rename input not capturing")
	}
	s.renameInput.SetValue("Principal Due")
	s.handleKey(tea.KeyPressMsg{Code: tea.KeyEnter})
	if draft.Columns.Columns[3].DisplayName != "Principal Due" {
		t.Errorf("rename not applied: %q", draft.Columns.Columns[3].DisplayName)
	}

	// Deselecting drops the calc column but keeps the defaults.
	s.pane = paneCalculations
	s.handleKey(tea.KeyPressMsg{Code: tea.KeySpace})
	if len(draft.Columns.Columns) != 3 {
		t.Fatalf("columns after deselect = %d, want 3", len(draft.Columns.Columns))
	}
}

func TestCalcStepResolvesThroughDraftChanges(t *testing.T) {
	draft := report.NewDraft()
	draft.SetScope(report.ScopeDeal)
	s := NewCalcStep(newFakeClient(), draft)
	drain(s.Init())

	// Mutating the draft from outside the step must still resolve columns:
	// the resolver hangs off the draft's change feed, not the key handler.
	name := "Total Principal"
	draft.AddCalculation(report.SelectedCalculation{CalculationID: 5, DisplayName: &name})

	if draft.Columns == nil || len(draft.Columns.Columns) != 4 {
		t.Fatalf("columns after external add = %+v, want defaults + calc", draft.Columns)
	}
	if got := draft.Columns.Columns[3].ColumnID; got != report.ColumnIDForCalculation(5) {
		t.Errorf("calc column id = %q", got)
	}

	draft.RemoveCalculation(5)
	if len(draft.Columns.Columns) != 3 {
		t.Errorf("columns after external remove = %d, want 3", len(draft.Columns.Columns))
	}

	// Unrelated draft changes leave the column set alone.
	before := len(draft.Columns.Columns)
	draft.SetName("No Resolve")
	if len(draft.Columns.Columns) != before {
		t.Errorf("name change altered columns")
	}
}

func TestCalcStepReorder(t *testing.T) {
	draft := report.NewDraft()
	draft.SetScope(report.ScopeDeal)
	s := NewCalcStep(newFakeClient(), draft)
	drain(s.Init())

	s.pane = paneColumns
	s.colCursor = 0
	s.handleKey(tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModShift})

	ids := []string{
		draft.Columns.Columns[0].ColumnID,
		draft.Columns.Columns[1].ColumnID,
	}
	if ids[0] != report.ColumnTrancheID || ids[1] != report.ColumnDealNumber {
		t.Fatalf("reorder produced %v", ids)
	}
	if s.colCursor != 1 {
		t.Errorf("cursor did not follow the moved column: %d", s.colCursor)
	}
	for i, col := range draft.Columns.Columns {
		if col.DisplayOrder != i {
			t.Errorf("DisplayOrder[%d] = %d after reorder", i, col.DisplayOrder)
		}
	}
}

func TestTrancheStepGroupsByDeal(t *testing.T) {
	client := newFakeClient()
	client.tranches[2002] = []api.Tranche{{TrID: "M1", DlNbr: 2002}}

	draft := report.NewDraft()
	draft.SetScope(report.ScopeTranche)
	draft.ToggleDeal(1001)
	draft.ToggleDeal(2002)

	s := NewTrancheStep(client, draft)
	for _, msg := range drain(s.Init()) {
		s.Update(msg)
	}

	view := s.View()
	for _, want := range []string{"Deal 1001", "Deal 2002", "A1", "B", "M1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	// Cursor starts on a tranche row, space toggles it.
	s.handleKey(tea.KeyPressMsg{Code: tea.KeySpace})
	if !draft.HasTrancheSelection() {
		t.Fatalf("space did not select a tranche")
	}

	// "a" selects every tranche of the deal under the cursor.
	s.handleKey(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if got := len(draft.TrancheIDs(1001)); got != 2 {
		t.Errorf("tranches selected for 1001 = %d, want 2", got)
	}
}

func TestConfigStepRequiresName(t *testing.T) {
	draft := report.NewDraft()
	c := NewConfigStep(draft)
	drain(c.Init())

	msgs := drain(c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}))
	for _, msg := range msgs {
		if _, ok := msg.(configCompleteMsg); ok {
			t.Fatalf("config step advanced with an empty name")
		}
	}
	if !strings.Contains(c.View(), "Report name is required") {
		t.Errorf("missing name error in view")
	}

	c.nameInput.SetValue("Monthly Deal Report")
	msgs = drain(c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}))
	complete := false
	for _, msg := range msgs {
		if _, ok := msg.(configCompleteMsg); ok {
			complete = true
		}
	}
	if !complete {
		t.Fatalf("config step did not advance with a valid draft")
	}
}

func TestReviewStepDescriptionDiff(t *testing.T) {
	draft := report.NewDraft()
	draft.SetName("Quarterly")
	draft.SetScope(report.ScopeDeal)
	draft.SetDescription("new words")

	editing := &api.ReportConfig{ID: 14, Description: "old words"}
	s := NewReviewStep(newFakeClient(), draft, editing)

	diff := s.descriptionDiff()
	if !strings.Contains(diff, "old words") || !strings.Contains(diff, "new words") {
		t.Fatalf("diff missing content:\n%s", diff)
	}

	draft.SetDescription("old words")
	if s.descriptionDiff() != "" {
		t.Errorf("diff rendered for identical descriptions")
	}
}

func TestReviewStepPreviewUsesLatestCycle(t *testing.T) {
	draft := report.NewDraft()
	draft.SetName("Quarterly")
	draft.SetScope(report.ScopeDeal)

	client := newFakeClient()
	client.preview = &api.SQLPreview{BaseQuery: "SELECT 1"}
	s := NewReviewStep(client, draft, &api.ReportConfig{ID: 14})

	for _, msg := range drain(s.Init()) {
		s.Update(msg)
	}

	if client.previewCycle != 202607 {
		t.Fatalf("preview cycle = %d, want the most recent cycle", client.previewCycle)
	}
	if s.preview == nil {
		t.Errorf("preview not stored")
	}
}
