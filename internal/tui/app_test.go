package tui

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/sbrock928/dealdesk/internal/activity"
	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
	"github.com/sbrock928/dealdesk/internal/resources"
	"github.com/sbrock928/dealdesk/internal/state"
	"github.com/sbrock928/dealdesk/internal/tui/wizard"
)

// fakeBackend satisfies Backend through embedding; only the methods the
// tests reach are implemented.
type fakeBackend struct {
	Backend
}

func (f *fakeBackend) ListReports(_ context.Context, _ string) ([]api.ReportConfig, error) {
	return sampleReports(), nil
}

func (f *fakeBackend) ListUsers(_ context.Context) ([]api.User, error) {
	return nil, nil
}

func (f *fakeBackend) ListLogs(_ context.Context, _ api.LogQuery) (*api.LogPage, error) {
	return &api.LogPage{}, nil
}

type fakeActivityLog struct {
	events []activity.Event
}

func (f *fakeActivityLog) Record(_ context.Context, e activity.Event) (activity.Event, error) {
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeActivityLog) List(_ context.Context, _ activity.Query) ([]activity.Event, error) {
	return f.events, nil
}

func newTestApp(t *testing.T, act ActivityLog) *App {
	t.Helper()
	backend := &fakeBackend{}
	ops := resources.NewOps(backend, act, "ssmith")

	// Persist auto-refresh off so the log view never schedules a timer
	// the synchronous test loop would block on.
	dataDir := t.TempDir()
	st := state.DefaultUIState()
	st.Logs.AutoRefresh = false
	if err := state.Save(dataDir, st); err != nil {
		t.Fatalf("seeding ui state: %v", err)
	}

	return NewApp(backend, act, ops, Options{
		User:         "ssmith",
		DataDir:      dataDir,
		ExportDir:    t.TempDir(),
		PageSize:     50,
		RefreshEvery: time.Minute,
	})
}

// runApp feeds a command's messages back into the app until exhausted.
func runApp(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runApp(a, c)
		}
		return
	}
	// Stop at the toast timer instead of sleeping on it.
	if _, ok := msg.(ToastDismissMsg); ok {
		return
	}
	_, next := a.Update(msg)
	if _, ok := msg.(ShowToastMsg); ok {
		return
	}
	runApp(a, next)
}

func TestAppSwitchesViews(t *testing.T) {
	a := newTestApp(t, nil)
	runApp(a, a.Init())

	if a.view != ViewReports {
		t.Fatalf("initial view = %v", a.view)
	}

	_, cmd := a.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	runApp(a, cmd)
	if a.view != ViewResources {
		t.Fatalf("view after 2 = %v", a.view)
	}

	_, cmd = a.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	runApp(a, cmd)
	if a.view != ViewLogs {
		t.Fatalf("view after 3 = %v", a.view)
	}

	_, cmd = a.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	runApp(a, cmd)
	if a.view != ViewReports {
		t.Fatalf("view after 1 = %v", a.view)
	}
}

func TestAppOpensWizardAndCancels(t *testing.T) {
	a := newTestApp(t, nil)
	runApp(a, a.Init())

	_, cmd := a.Update(NewReportMsg{})
	runApp(a, cmd)
	if a.view != ViewWizard || a.wizardModel == nil {
		t.Fatalf("wizard not opened")
	}

	// View-switch digits must not fire while the wizard is open.
	_, cmd = a.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	runApp(a, cmd)
	if a.view != ViewWizard {
		t.Fatalf("global key switched views inside the wizard")
	}

	_, cmd = a.Update(wizard.CancelledMsg{})
	runApp(a, cmd)
	if a.view != ViewReports || a.wizardModel != nil {
		t.Fatalf("cancel did not return to reports")
	}
}

func TestAppRecordsWizardSave(t *testing.T) {
	act := &fakeActivityLog{}
	a := newTestApp(t, act)
	runApp(a, a.Init())

	_, cmd := a.Update(NewReportMsg{})
	runApp(a, cmd)

	_, cmd = a.Update(wizard.DoneMsg{
		Config: &api.ReportConfig{ID: 101, Name: "Monthly Deal Report"},
	})
	runApp(a, cmd)

	if a.view != ViewReports {
		t.Fatalf("save did not return to reports")
	}
	if len(act.events) != 1 {
		t.Fatalf("events recorded = %d, want 1", len(act.events))
	}
	e := act.events[0]
	if e.Kind != "report" || e.Action != "created" || e.User != "ssmith" {
		t.Errorf("event = %+v", e)
	}
}

func TestAppShowsNoticeToast(t *testing.T) {
	a := newTestApp(t, nil)
	runApp(a, a.Init())

	_, cmd := a.Update(wizard.NoticeMsg{Notice: report.Notice{
		Level:   report.NoticeError,
		Message: "Report name is required",
	}})
	_ = cmd // dismiss timer

	if !a.toast.IsVisible() {
		t.Fatalf("toast not shown")
	}
	if a.toast.Message() != "Report name is required" {
		t.Errorf("toast message = %q", a.toast.Message())
	}
}

func TestAppRecordsExport(t *testing.T) {
	act := &fakeActivityLog{}
	a := newTestApp(t, act)
	runApp(a, a.Init())

	_, cmd := a.Update(ReportExportedMsg{Name: "Monthly Deal Report", Path: "/tmp/out.csv"})
	runApp(a, cmd)

	if len(act.events) != 1 || act.events[0].Kind != "export" {
		t.Fatalf("export not recorded: %+v", act.events)
	}
}
