package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbrock928/dealdesk/internal/logger"
)

// UIState holds console preferences that carry across runs.
type UIState struct {
	LastView   string    `json:"last_view"`
	LastScope  string    `json:"last_scope"`
	Logs       LogsState `json:"logs"`
	ExportDir  string    `json:"export_dir,omitempty"`
	LastExport string    `json:"last_export,omitempty"`
}

// LogsState holds the log viewer's sticky filters.
type LogsState struct {
	Level       string `json:"level"`
	Source      string `json:"source"`
	PageSize    int    `json:"page_size"`
	AutoRefresh bool   `json:"auto_refresh"`
}

// DefaultUIState returns the state used before any preference is saved.
func DefaultUIState() *UIState {
	return &UIState{
		LastView: "reports",
		Logs: LogsState{
			Source:      "backend",
			PageSize:    50,
			AutoRefresh: true,
		},
	}
}

// Load reads ui-state.json from the data directory. Missing or malformed
// files fall back to defaults; a broken prefs file must never block startup.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, "ui-state.json")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultUIState()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reading ui state: %v", err)
		return DefaultUIState()
	}

	var st UIState
	if err := json.Unmarshal(data, &st); err != nil {
		logger.Warn("parsing ui state: %v", err)
		return DefaultUIState()
	}
	return &st
}

// Save writes ui-state.json, creating the data directory if needed.
func Save(dataDir string, st *UIState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ui state: %w", err)
	}

	path := filepath.Join(dataDir, "ui-state.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing ui state: %w", err)
	}

	logger.Debug("ui state saved to %s", path)
	return nil
}
