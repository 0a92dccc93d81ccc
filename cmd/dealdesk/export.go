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
	"github.com/sbrock928/dealdesk/internal/export"
	"github.com/sbrock928/dealdesk/internal/report"
)

var exportFlags struct {
	reportID int
	cycle    int
	format   string
	out      string
	rawSQL   string
	deals    []int
	tranches []string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a report run to a local file without opening the console",
	Long: `Export a report run to a local file without opening the console.

With --report, the service renders the saved report for the given cycle and
the file is written as-is. With --sql, the query runs ad hoc against the
selected deals and the rows are rendered locally, so the result can go to
CSV or XLSX regardless of what the service supports.

When --cycle is omitted the most recent cycle is used.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVarP(&exportFlags.reportID, "report", "r", 0, "Saved report configuration ID")
	exportCmd.Flags().IntVarP(&exportFlags.cycle, "cycle", "c", 0, "Cycle code (default: most recent)")
	exportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "csv", "Output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVar(&exportFlags.rawSQL, "sql", "", "Ad-hoc SQL to run instead of a saved report")
	exportCmd.Flags().IntSliceVar(&exportFlags.deals, "deals", nil, "Deal numbers for --sql runs")
	exportCmd.Flags().StringSliceVar(&exportFlags.tranches, "tranches", nil, "Tranche IDs for --sql runs")
}

func runExport(cmd *cobra.Command, args []string) error {
	if (exportFlags.reportID == 0) == (exportFlags.rawSQL == "") {
		return fmt.Errorf("exactly one of --report or --sql is required")
	}

	format, err := export.ParseFormat(exportFlags.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	applyLogConfig(cfg)

	client := api.NewClient(cfg.APIURL, api.WithUser(cfg.APIUser))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cycle := exportFlags.cycle
	if cycle == 0 {
		cycles, err := client.ListCycleCodes(ctx)
		if err != nil {
			return fmt.Errorf("failed to list cycle codes: %w", err)
		}
		if len(cycles) == 0 {
			return fmt.Errorf("no cycle codes available, pass --cycle explicitly")
		}
		cycle = cycles[0]
	}

	var path string
	if exportFlags.rawSQL != "" {
		path, err = exportAdHoc(ctx, client, cycle, format)
	} else {
		path, err = exportSaved(ctx, client, cycle, format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

// exportSaved downloads the service-rendered file for a saved report.
func exportSaved(ctx context.Context, client *api.Client, cycle int, format export.Format) (string, error) {
	rpt, err := client.GetReport(ctx, exportFlags.reportID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch report %d: %w", exportFlags.reportID, err)
	}

	data, err := client.ExportReport(ctx, rpt.ID, cycle, string(format))
	if err != nil {
		return "", fmt.Errorf("failed to export report %q: %w", rpt.Name, err)
	}

	if err := os.MkdirAll(exportFlags.out, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(exportFlags.out, export.FileName(rpt.Name, cycle, format, time.Now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// exportAdHoc runs raw SQL server-side and renders the rows locally.
func exportAdHoc(ctx context.Context, client *api.Client, cycle int, format export.Format) (string, error) {
	if len(exportFlags.deals) == 0 {
		return "", fmt.Errorf("--sql requires at least one deal via --deals")
	}

	result, err := client.RunCalculation(ctx, api.RunRequest{
		RawSQL:    exportFlags.rawSQL,
		DlNbrs:    exportFlags.deals,
		TrIDs:     exportFlags.tranches,
		CycleCode: cycle,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run query: %w", err)
	}

	// Result columns become text columns in arrival order.
	cols := report.ColumnPreferences{}
	for i, name := range result.Columns {
		cols.Columns = append(cols.Columns, report.ColumnPreference{
			ColumnID:     name,
			DisplayName:  name,
			IsVisible:    true,
			DisplayOrder: i,
			Format:       report.FormatText,
		})
	}

	if err := os.MkdirAll(exportFlags.out, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return export.Write(export.Request{
		ReportName: "adhoc-query",
		CycleCode:  cycle,
		Columns:    cols,
		Result:     result,
		Dir:        exportFlags.out,
		Format:     format,
	})
}
