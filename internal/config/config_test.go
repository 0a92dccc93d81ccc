package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalPath(t *testing.T) {
	tests := []struct {
		name      string
		xdgConfig string
		want      string
	}{
		{
			name:      "with XDG_CONFIG_HOME set",
			xdgConfig: "/custom/config",
			want:      "/custom/config/dealdesk/dealdesk.yml",
		},
		{
			name:      "without XDG_CONFIG_HOME",
			xdgConfig: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origXDG := os.Getenv("XDG_CONFIG_HOME")
			defer func() {
				if origXDG != "" {
					_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
				} else {
					_ = os.Unsetenv("XDG_CONFIG_HOME")
				}
			}()

			if tt.xdgConfig != "" {
				_ = os.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			} else {
				_ = os.Unsetenv("XDG_CONFIG_HOME")
			}

			got := GlobalPath()
			if tt.xdgConfig != "" {
				if got != tt.want {
					t.Errorf("GlobalPath() = %v, want %v", got, tt.want)
				}
			} else {
				if !filepath.IsAbs(got) {
					t.Errorf("GlobalPath() should return absolute path, got %v", got)
				}
				if filepath.Base(got) != "dealdesk.yml" {
					t.Errorf("GlobalPath() should end with dealdesk.yml, got %v", got)
				}
			}
		})
	}
}

func TestProjectPath(t *testing.T) {
	if got := ProjectPath(); got != "dealdesk.yml" {
		t.Errorf("ProjectPath() = %v, want dealdesk.yml", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}

	origXDG := os.Getenv("XDG_CONFIG_HOME")
	defer restoreEnv("XDG_CONFIG_HOME", origXDG)
	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DataDir != ".dealdesk" {
		t.Errorf("expected default data_dir .dealdesk, got %q", cfg.DataDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log_level info, got %q", cfg.LogLevel)
	}
	if cfg.RefreshSeconds != 10 {
		t.Errorf("expected default refresh_seconds 10, got %d", cfg.RefreshSeconds)
	}
	if cfg.PageSize != 50 {
		t.Errorf("expected default page_size 50, got %d", cfg.PageSize)
	}
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()

	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}

	origXDG := os.Getenv("XDG_CONFIG_HOME")
	defer restoreEnv("XDG_CONFIG_HOME", origXDG)
	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))

	// Global config
	globalPath := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(globalPath), 0755); err != nil {
		t.Fatalf("failed to create global config dir: %v", err)
	}
	global := []byte("api_url: https://global.example.com\nlog_level: debug\n")
	if err := os.WriteFile(globalPath, global, 0644); err != nil {
		t.Fatalf("failed to write global config: %v", err)
	}

	// Project config overrides api_url but not log_level
	project := []byte("api_url: https://project.example.com\n")
	if err := os.WriteFile(ProjectPath(), project, 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}

	t.Run("project overrides global", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cfg.APIURL != "https://project.example.com" {
			t.Errorf("expected project api_url, got %q", cfg.APIURL)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("expected global log_level debug, got %q", cfg.LogLevel)
		}
	})

	t.Run("env overrides files", func(t *testing.T) {
		origEnv := os.Getenv("DEALDESK_API_URL")
		defer restoreEnv("DEALDESK_API_URL", origEnv)
		_ = os.Setenv("DEALDESK_API_URL", "https://env.example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cfg.APIURL != "https://env.example.com" {
			t.Errorf("expected env api_url, got %q", cfg.APIURL)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{APIURL: "http://localhost:8000", RefreshSeconds: 10, PageSize: 50}, false},
		{"missing api_url", Config{RefreshSeconds: 10, PageSize: 50}, true},
		{"bad refresh", Config{APIURL: "http://localhost:8000", RefreshSeconds: 0, PageSize: 50}, true},
		{"bad page size", Config{APIURL: "http://localhost:8000", RefreshSeconds: 10, PageSize: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func restoreEnv(key, value string) {
	if value != "" {
		_ = os.Setenv(key, value)
	} else {
		_ = os.Unsetenv(key)
	}
}
