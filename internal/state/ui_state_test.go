package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultUIState(t *testing.T) {
	st := DefaultUIState()
	if st.LastView != "reports" {
		t.Errorf("expected reports view default, got %q", st.LastView)
	}
	if st.Logs.PageSize != 50 || !st.Logs.AutoRefresh {
		t.Errorf("unexpected log defaults: %+v", st.Logs)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	st := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if st.LastView != "reports" {
		t.Errorf("expected defaults, got %+v", st)
	}
}

func TestLoadMalformedFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ui-state.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	st := Load(dir)
	if st.Logs.PageSize != 50 {
		t.Errorf("expected defaults, got %+v", st)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	st := &UIState{
		LastView:  "logs",
		LastScope: "TRANCHE",
		Logs:      LogsState{Level: "ERROR", Source: "activity", PageSize: 100},
	}
	if err := Save(dir, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(dir)
	if loaded.LastView != "logs" || loaded.LastScope != "TRANCHE" {
		t.Errorf("unexpected state: %+v", loaded)
	}
	if loaded.Logs.Level != "ERROR" || loaded.Logs.PageSize != 100 {
		t.Errorf("unexpected log state: %+v", loaded.Logs)
	}
	if loaded.Logs.AutoRefresh {
		t.Error("expected auto refresh false as saved")
	}
}
