package main

import (
	"context"
	"os"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/sbrock928/dealdesk/internal/logger"
	"github.com/sbrock928/dealdesk/internal/tui/theme"
)

const (
	logoText1 = "█▀▄ █▀▀ ▄▀█ █   █▀▄ █▀▀ █▀ █▄▀"
	logoText2 = "█▄▀ ██▄ █▀█ █▄▄ █▄▀ ██▄ ▄█ █ █"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dealdesk",
	Short: "Admin console for the deal reporting service",
	RunE:  runConsole,
}

// renderLogo colors the logo lines with the current theme.
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Render(logoText1)
	line2 := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Render(logoText2)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

dealdesk is a terminal admin console for the deal reporting service.
It builds and maintains report configurations through a step wizard,
manages users, employees, and subscribers, tails service logs, and
keeps a local audit trail in embedded NATS JetStream.

Running dealdesk with no subcommand opens the console.`

	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(setupCmd)
}
