package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientCreateReport(t *testing.T) {
	var gotPath, gotMethod, gotUser string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotUser = r.Header.Get("X-Acting-User")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"name":"Deal Report","scope":"DEAL"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithUser("ssmith"))
	cfg, err := c.CreateReport(context.Background(), ReportRequest{Name: "Deal Report", Scope: "DEAL"})
	if err != nil {
		t.Fatal(err)
	}

	if gotMethod != http.MethodPost || gotPath != "/api/reports" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotUser != "ssmith" {
		t.Errorf("expected acting user header, got %q", gotUser)
	}
	if gotBody["name"] != "Deal Report" {
		t.Errorf("request body missing name: %v", gotBody)
	}
	if cfg.ID != 42 || cfg.Scope != "DEAL" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestClientUpdateUsesPatch(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":14}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.UpdateReport(context.Background(), 14, ReportRequest{}); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/api/reports/14" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":{"errors":[{"field":"name","message":"already exists"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateReport(context.Background(), ReportRequest{Name: "Deal Report"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.UserMessage() != "name: already exists" {
		t.Errorf("UserMessage() = %q", apiErr.UserMessage())
	}
}

func TestClientListTranchesPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"tr_id":"A1","dl_nbr":1001,"tr_cusip_id":"12345XAB1"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	trs, err := c.ListTranches(context.Background(), 1001)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/deals/1001/tranches" {
		t.Errorf("path = %q", gotPath)
	}
	if len(trs) != 1 || trs[0].TrID != "A1" || trs[0].TrCusipID != "12345XAB1" {
		t.Errorf("unexpected tranches: %+v", trs)
	}
}

func TestClientListLogs(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[{"id":1,"level":"ERROR","message":"boom"}],"total":37}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	page, err := c.ListLogs(context.Background(), LogQuery{Level: "ERROR", Search: "boom", Limit: 50, Offset: 100})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 37 || len(page.Items) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
	for _, part := range []string{"level=ERROR", "search=boom", "limit=50", "offset=100"} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query %q missing %q", gotQuery, part)
		}
	}
}

func TestClientExportDownloadsBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("dl_nbr,tr_id\n1001,A1\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.ExportReport(context.Background(), 9, 202607, "csv")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "dl_nbr,tr_id\n1001,A1\n" {
		t.Errorf("unexpected bytes: %q", data)
	}
}
