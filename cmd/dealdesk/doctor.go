package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and connectivity to the reporting service",
	Long: `Check configuration and connectivity to the reporting service.

Runs through the console's preconditions one by one and reports each result:
config file presence, required settings, data directory writability, and a
live round trip against the reporting API.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	failed := false
	check := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Printf("✗ %s: %v\n", name, err)
			return
		}
		fmt.Printf("✓ %s\n", name)
	}

	if config.Exists() {
		check("config file", nil)
	} else {
		fmt.Println("- config file: none found (env vars may still cover required settings)")
	}

	cfg, err := config.Load()
	check("config load", err)
	if err != nil {
		return fmt.Errorf("doctor found problems")
	}

	check("config values", cfg.Validate())

	check("data directory", checkDataDir(cfg.DataDir))

	if cfg.APIURL != "" {
		check("reporting service", checkAPI(cfg))
	}

	if failed {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

// checkDataDir verifies the data directory exists (or can be created) and
// is writable.
func checkDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return err
	}
	return os.Remove(probe)
}

// checkAPI does one cheap read against the service.
func checkAPI(cfg *config.Config) error {
	client := api.NewClient(cfg.APIURL, api.WithUser(cfg.APIUser))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cycles, err := client.ListCycleCodes(ctx)
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		return fmt.Errorf("service reachable but no cycle codes loaded")
	}
	return nil
}
