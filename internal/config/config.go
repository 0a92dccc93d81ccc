// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for dealdesk.
type Config struct {
	APIURL         string `mapstructure:"api_url" yaml:"api_url"`
	APIUser        string `mapstructure:"api_user" yaml:"api_user"`
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string `mapstructure:"log_file" yaml:"log_file"`
	RefreshSeconds int    `mapstructure:"refresh_seconds" yaml:"refresh_seconds"`
	PageSize       int    `mapstructure:"page_size" yaml:"page_size"`
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("dealdesk")

	// Set defaults (api_url has no default - it's required)
	v.SetDefault("api_user", "")
	v.SetDefault("data_dir", ".dealdesk")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("refresh_seconds", 10)
	v.SetDefault("page_size", 50)

	// Setup ENV binding with DEALDESK_ prefix
	v.SetEnvPrefix("DEALDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/int parsing
	bindings := map[string]string{
		"api_url":         "DEALDESK_API_URL",
		"api_user":        "DEALDESK_API_USER",
		"data_dir":        "DEALDESK_DATA_DIR",
		"log_level":       "DEALDESK_LOG_LEVEL",
		"log_file":        "DEALDESK_LOG_FILE",
		"refresh_seconds": "DEALDESK_REFRESH_SECONDS",
		"page_size":       "DEALDESK_PAGE_SIZE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required settings are present and sane.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required (set DEALDESK_API_URL or add it to dealdesk.yml)")
	}
	if c.RefreshSeconds < 1 {
		return fmt.Errorf("refresh_seconds must be >= 1, got %d", c.RefreshSeconds)
	}
	if c.PageSize < 1 || c.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500, got %d", c.PageSize)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/dealdesk/dealdesk.yml or $XDG_CONFIG_HOME/dealdesk/dealdesk.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dealdesk", "dealdesk.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dealdesk", "dealdesk.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./dealdesk.yml in the current working directory.
func ProjectPath() string {
	return "dealdesk.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ProjectPath(), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
