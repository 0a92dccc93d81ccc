package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/logger"
	"github.com/sbrock928/dealdesk/internal/report"
)

const sheetName = "Report"

func writeXLSX(path string, cols report.ColumnPreferences, result *api.RunResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	visible := cols.VisibleColumns()

	header := make([]any, len(visible))
	for i, col := range visible {
		header[i] = col.DisplayName
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for r, data := range result.Rows {
		row := make([]any, len(visible))
		for i, col := range visible {
			row[i] = cellValue(col, data)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", r+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", r+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	logger.Info("exported %d rows to %s", len(result.Rows), path)
	return nil
}
