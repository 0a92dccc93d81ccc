package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/logger"
	"github.com/sbrock928/dealdesk/internal/report"
)

func writeCSV(path string, cols report.ColumnPreferences, result *api.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	visible := cols.VisibleColumns()

	header := make([]string, len(visible))
	for i, col := range visible {
		header[i] = col.DisplayName
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(visible))
	for _, data := range result.Rows {
		for i, col := range visible {
			row[i] = cellValue(col, data)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	logger.Info("exported %d rows to %s", len(result.Rows), path)
	return nil
}
