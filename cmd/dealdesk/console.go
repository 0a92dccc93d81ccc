package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/sbrock928/dealdesk/internal/activity"
	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/config"
	"github.com/sbrock928/dealdesk/internal/logger"
	"github.com/sbrock928/dealdesk/internal/nats"
	"github.com/sbrock928/dealdesk/internal/resources"
	"github.com/sbrock928/dealdesk/internal/tui"
)

var consoleFlags struct {
	apiURL    string
	user      string
	dataDir   string
	exportDir string
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the full-screen admin console",
	Long: `Open the full-screen admin console.

The console talks to the reporting service configured via api_url and keeps
a local activity log in embedded NATS JetStream under the data directory.

Configuration is loaded with the following precedence:
  CLI flags > Environment variables > Project config > Global config > Defaults

Project config: ./dealdesk.yml
Global config: ~/.config/dealdesk/dealdesk.yml`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().StringVar(&consoleFlags.apiURL, "api-url", "", "Reporting service base URL (overrides config)")
	consoleCmd.Flags().StringVarP(&consoleFlags.user, "user", "u", "", "Username sent with API requests (overrides config)")
	consoleCmd.Flags().StringVar(&consoleFlags.dataDir, "data-dir", "", "Data directory for activity log and UI state (overrides config)")
	consoleCmd.Flags().StringVar(&consoleFlags.exportDir, "export-dir", "", "Directory for exported report files (default: current directory)")
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if consoleFlags.apiURL != "" {
		cfg.APIURL = consoleFlags.apiURL
	}
	if consoleFlags.user != "" {
		cfg.APIUser = consoleFlags.user
	}
	if consoleFlags.dataDir != "" {
		cfg.DataDir = consoleFlags.dataDir
	}
	if err := cfg.Validate(); err != nil {
		if !config.Exists() {
			return fmt.Errorf("%w\n\nRun 'dealdesk setup' to create a config file", err)
		}
		return err
	}

	applyLogConfig(cfg)

	user := cfg.APIUser
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		user = "console"
	}

	client := api.NewClient(cfg.APIURL, api.WithUser(user))

	// Embedded NATS backs the local activity log.
	ns, err := nats.StartEmbedded(filepath.Join(cfg.DataDir, "nats"))
	if err != nil {
		return fmt.Errorf("failed to start embedded nats: %w", err)
	}
	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		return fmt.Errorf("failed to connect to embedded nats: %w", err)
	}
	defer func() {
		if err := nats.Shutdown(nc, ns); err != nil {
			logger.Warn("nats shutdown: %v", err)
		}
	}()

	js, err := nats.CreateJetStream(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	stream, err := nats.SetupStream(ctx, js)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to setup activity stream: %w", err)
	}
	store := activity.NewStore(js, stream)

	recordSession(store, user, "started")
	defer recordSession(store, user, "ended")

	ops := resources.NewOps(client, store, user)
	app := tui.NewApp(client, store, ops, tui.Options{
		User:         user,
		DataDir:      cfg.DataDir,
		ExportDir:    consoleFlags.exportDir,
		PageSize:     cfg.PageSize,
		RefreshEvery: time.Duration(cfg.RefreshSeconds) * time.Second,
	})

	logger.Info("console starting, api %s, user %s", cfg.APIURL, user)
	if _, err := tea.NewProgram(app).Run(); err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}

// applyLogConfig points the default logger at the configured level and file.
// Config values win over the DEALDESK_LOG_* environment defaults.
func applyLogConfig(cfg *config.Config) {
	if cfg.LogLevel != "" {
		if lvl, err := logger.ParseLevel(cfg.LogLevel); err == nil {
			logger.Default.SetLevel(lvl)
		}
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.Warn("cannot open log file %s: %v", cfg.LogFile, err)
			return
		}
		logger.Default.SetOutput(f)
	}
}

func recordSession(store *activity.Store, user, action string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := store.Record(ctx, activity.Event{
		User:   user,
		Kind:   nats.KindSession,
		Action: action,
		Data:   fmt.Sprintf("console session %s", action),
	}); err != nil {
		logger.Warn("recording session event: %v", err)
	}
}
