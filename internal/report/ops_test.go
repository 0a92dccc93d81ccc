package report

import (
	"context"
	"errors"
	"testing"

	"github.com/sbrock928/dealdesk/internal/api"
)

type fakeReportService struct {
	createCalls int
	updateCalls int
	lastReq     api.ReportRequest
	lastID      int
	err         error
}

func (f *fakeReportService) CreateReport(_ context.Context, req api.ReportRequest) (*api.ReportConfig, error) {
	f.createCalls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &api.ReportConfig{ID: 1, Name: req.Name}, nil
}

func (f *fakeReportService) UpdateReport(_ context.Context, id int, req api.ReportRequest) (*api.ReportConfig, error) {
	f.updateCalls++
	f.lastID = id
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &api.ReportConfig{ID: id, Name: req.Name}, nil
}

func TestSaveNewBlocksOnValidation(t *testing.T) {
	svc := &fakeReportService{}
	var notices []Notice
	ops := NewOps(svc, Identity{Username: "ssmith"}, func(n Notice) { notices = append(notices, n) })

	d := NewDraft() // empty: fails name, scope, deals, calcs
	ok := ops.SaveNew(context.Background(), d, nil)

	if ok {
		t.Fatal("expected save to fail")
	}
	if svc.createCalls != 0 {
		t.Fatalf("expected zero network calls, got %d", svc.createCalls)
	}
	if len(notices) < 4 {
		t.Fatalf("expected one notice per validation error, got %d: %v", len(notices), notices)
	}
	fields := map[string]bool{}
	for _, n := range notices {
		if n.Level != NoticeError {
			t.Errorf("expected error notice, got %+v", n)
		}
		fields[n.Field] = true
	}
	for _, f := range []string{"reportName", "scope", "selectedDeals", "selectedCalculations"} {
		if !fields[f] {
			t.Errorf("missing notice for field %q", f)
		}
	}
}

func TestSaveNewSuccess(t *testing.T) {
	svc := &fakeReportService{}
	var notices []Notice
	ops := NewOps(svc, Identity{Username: "ssmith"}, func(n Notice) { notices = append(notices, n) })

	d := validDraft()
	var created *api.ReportConfig
	ok := ops.SaveNew(context.Background(), d, func(cfg *api.ReportConfig) { created = cfg })

	if !ok {
		t.Fatal("expected save to succeed")
	}
	if svc.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", svc.createCalls)
	}
	if svc.lastReq.CreatedBy != "ssmith" {
		t.Errorf("expected created_by from identity, got %q", svc.lastReq.CreatedBy)
	}
	if created == nil || created.ID != 1 {
		t.Error("onSuccess not invoked with the created config")
	}
	if len(notices) != 1 || notices[0].Level != NoticeInfo {
		t.Errorf("expected one info notice, got %v", notices)
	}
	// Create resets the draft for the next report.
	if d.Name != "" || len(d.SelectedDeals) != 0 {
		t.Error("draft not reset after create")
	}
}

func TestUpdateExistingKeepsDraft(t *testing.T) {
	svc := &fakeReportService{}
	ops := NewOps(svc, Identity{Username: "ssmith"}, func(Notice) {})

	d := validDraft()
	ok := ops.UpdateExisting(context.Background(), 14, d, nil)

	if !ok {
		t.Fatal("expected update to succeed")
	}
	if svc.updateCalls != 1 || svc.lastID != 14 {
		t.Fatalf("expected one update of report 14, got %d calls, id %d", svc.updateCalls, svc.lastID)
	}
	if d.Name == "" {
		t.Error("draft must survive an update")
	}
}

func TestSaveSurfacesBackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "structured detail",
			err: &api.Error{StatusCode: 422, Method: "POST", Path: "/api/reports",
				Detail: "name: A report with this name already exists"},
			want: "name: A report with this name already exists",
		},
		{
			name: "transport failure",
			err:  errors.New("dial tcp: connection refused"),
			want: "Could not reach the reporting service. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeReportService{err: tt.err}
			var notices []Notice
			ops := NewOps(svc, Identity{Username: "ssmith"}, func(n Notice) { notices = append(notices, n) })

			d := validDraft()
			if ops.SaveNew(context.Background(), d, nil) {
				t.Fatal("expected save to fail")
			}
			if len(notices) != 1 || notices[0].Message != tt.want {
				t.Errorf("expected notice %q, got %v", tt.want, notices)
			}
			if d.Name == "" {
				t.Error("draft must survive a failed save")
			}
		})
	}
}

func TestSaveOrUpdateDispatch(t *testing.T) {
	svc := &fakeReportService{}
	ops := NewOps(svc, Identity{Username: "ssmith"}, func(Notice) {})

	existing := &api.ReportConfig{ID: 7}
	ops.SaveOrUpdate(context.Background(), validDraft(), existing, true, nil)
	if svc.updateCalls != 1 || svc.lastID != 7 {
		t.Errorf("edit mode should update, got %d updates (id %d)", svc.updateCalls, svc.lastID)
	}

	ops.SaveOrUpdate(context.Background(), validDraft(), nil, false, nil)
	if svc.createCalls != 1 {
		t.Errorf("create mode should create, got %d creates", svc.createCalls)
	}
}
