package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sbrock928/dealdesk/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
	apiURL  string
	user    string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a dealdesk configuration file",
	Long: `Create a dealdesk configuration file with sensible defaults.

By default, creates a global config at ~/.config/dealdesk/dealdesk.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.apiURL, "api-url", "http://localhost:8000", "Reporting service base URL to write into the config")
	setupCmd.Flags().StringVarP(&setupFlags.user, "user", "u", "", "Username to write into the config (default: $USER)")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Determine target path
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	// Check if config already exists
	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	user := setupFlags.user
	if user == "" {
		user = os.Getenv("USER")
	}

	cfg := &config.Config{
		APIURL:         setupFlags.apiURL,
		APIUser:        user,
		DataDir:        ".dealdesk",
		LogLevel:       "info",
		LogFile:        "",
		RefreshSeconds: 10,
		PageSize:       50,
	}

	// Write config to target location
	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Print success message
	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Run 'dealdesk console' to get started.")

	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
