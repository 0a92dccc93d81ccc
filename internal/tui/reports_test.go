package tui

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/sbrock928/dealdesk/internal/api"
)

type fakeCatalog struct {
	reports []api.ReportConfig

	deletedIDs []int
	exported   []int
}

func (f *fakeCatalog) ListReports(_ context.Context, _ string) ([]api.ReportConfig, error) {
	return f.reports, nil
}

func (f *fakeCatalog) DeleteReport(_ context.Context, id int) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeCatalog) ExportReport(_ context.Context, reportID, _ int, _ string) ([]byte, error) {
	f.exported = append(f.exported, reportID)
	return []byte("dl_nbr\n1001\n"), nil
}

func (f *fakeCatalog) ListCycleCodes(_ context.Context) ([]int, error) {
	return []int{202607, 202606}, nil
}

func sampleReports() []api.ReportConfig {
	return []api.ReportConfig{
		{ID: 14, Name: "Monthly Deal Report", Scope: "DEAL"},
		{ID: 15, Name: "Tranche Detail", Scope: "TRANCHE"},
	}
}

func TestReportsViewDropsStaleFetch(t *testing.T) {
	v := NewReportsView(&fakeCatalog{}, "ssmith", t.TempDir())

	v.Update(ReportsLoadedMsg{Seq: 2, Reports: sampleReports()})
	v.Update(ReportsLoadedMsg{Seq: 1, Reports: nil})

	if len(v.reports) != 2 {
		t.Fatalf("stale fetch overwrote the newer result: %d reports", len(v.reports))
	}
}

func TestReportsViewRendersRows(t *testing.T) {
	v := NewReportsView(&fakeCatalog{}, "ssmith", t.TempDir())
	v.SetSize(100, 24)
	v.Update(ReportsLoadedMsg{Seq: 1, Reports: sampleReports()})

	view := v.View()
	for _, want := range []string{"Monthly Deal Report", "Tranche Detail", "DEAL", "TRANCHE"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestReportsViewDeleteRequiresConfirm(t *testing.T) {
	catalog := &fakeCatalog{reports: sampleReports()}
	v := NewReportsView(catalog, "ssmith", t.TempDir())
	v.Update(ReportsLoadedMsg{Seq: 1, Reports: sampleReports()})

	v.Update(tea.KeyPressMsg{Code: 'd', Text: "d"})
	if !v.confirmDelete {
		t.Fatalf("d did not ask for confirmation")
	}

	// Any key but y/enter aborts.
	v.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if v.confirmDelete {
		t.Fatalf("confirmation not cleared")
	}
	if len(catalog.deletedIDs) != 0 {
		t.Fatalf("delete ran without confirmation")
	}

	v.Update(tea.KeyPressMsg{Code: 'd', Text: "d"})
	cmd := v.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	if cmd == nil {
		t.Fatalf("no delete command after confirm")
	}
	msg := cmd()
	deleted, ok := msg.(ReportDeletedMsg)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	if deleted.Err != nil || deleted.ID != 14 {
		t.Fatalf("delete result = %+v", deleted)
	}
	if len(catalog.deletedIDs) != 1 || catalog.deletedIDs[0] != 14 {
		t.Fatalf("deletedIDs = %v", catalog.deletedIDs)
	}
}

func TestReportsViewEditEmitsConfig(t *testing.T) {
	v := NewReportsView(&fakeCatalog{}, "ssmith", t.TempDir())
	v.Update(ReportsLoadedMsg{Seq: 1, Reports: sampleReports()})
	v.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	cmd := v.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter produced no command")
	}
	msg, ok := cmd().(EditReportMsg)
	if !ok {
		t.Fatalf("unexpected message type")
	}
	if msg.Config.ID != 15 {
		t.Errorf("edit target = %d, want 15", msg.Config.ID)
	}
}

func TestReportsViewExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	catalog := &fakeCatalog{reports: sampleReports()}
	v := NewReportsView(catalog, "ssmith", dir)
	v.Update(ReportsLoadedMsg{Seq: 1, Reports: sampleReports()})

	cmd := v.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if cmd == nil {
		t.Fatalf("x produced no command")
	}
	msg, ok := cmd().(ReportExportedMsg)
	if !ok {
		t.Fatalf("unexpected message type")
	}
	if msg.Err != nil {
		t.Fatalf("export failed: %v", msg.Err)
	}
	if !strings.HasPrefix(msg.Path, dir) || !strings.HasSuffix(msg.Path, ".csv") {
		t.Errorf("export path = %q", msg.Path)
	}
	if !strings.Contains(msg.Path, "monthly-deal-report-202607") {
		t.Errorf("export name = %q, want slug and latest cycle", msg.Path)
	}
}
