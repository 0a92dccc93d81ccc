// Package export writes report run results to local CSV and XLSX files.
// Column order, visibility, and cell formatting follow the report's column
// preferences; hidden columns never reach the file.
package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

// Format selects the output file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
	}
}

// Request carries everything needed to write one export file.
type Request struct {
	ReportName string
	CycleCode  int
	Columns    report.ColumnPreferences
	Result     *api.RunResult
	Dir        string
	Format     Format
}

// FileName builds the export file name from the report name, cycle, and
// current time, e.g. "monthly-deal-report-202607-20260829T143000.csv".
func FileName(reportName string, cycleCode int, format Format, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s.%s",
		slug.Make(reportName), cycleCode, now.Format("20060102T150405"), format)
}

// Write renders the run result to a file in req.Dir and returns its path.
func Write(req Request) (string, error) {
	if req.Result == nil {
		return "", fmt.Errorf("nothing to export")
	}

	path := filepath.Join(req.Dir, FileName(req.ReportName, req.CycleCode, req.Format, time.Now()))

	var err error
	switch req.Format {
	case FormatCSV:
		err = writeCSV(path, req.Columns, req.Result)
	case FormatXLSX:
		err = writeXLSX(path, req.Columns, req.Result)
	default:
		return "", fmt.Errorf("unknown export format %q", req.Format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// cellValue pulls one formatted cell out of a result row. Column IDs double
// as the backend's result keys.
func cellValue(col report.ColumnPreference, row map[string]any) string {
	return report.FormatCell(col.Format, row[col.ColumnID])
}
