package report

import (
	"fmt"
	"strconv"

	"github.com/sbrock928/dealdesk/internal/api"
)

// Default column IDs. These columns are always present and survive every
// calculation change.
const (
	ColumnDealNumber = "dl_nbr"
	ColumnTrancheID  = "tr_id"
	ColumnCycleCode  = "cycle_code"
)

// ColumnPreference is display metadata for one report column. ColumnID is
// either a fixed default ID or the decimal string of a calculation ID.
type ColumnPreference struct {
	ColumnID     string
	DisplayName  string
	IsVisible    bool
	DisplayOrder int
	Format       FormatType
}

// ColumnPreferences is the ordered column list for a report.
type ColumnPreferences struct {
	Columns []ColumnPreference
}

// DefaultColumns returns the fixed default set in canonical order.
func DefaultColumns() []ColumnPreference {
	return []ColumnPreference{
		{ColumnID: ColumnDealNumber, DisplayName: "Deal Number", IsVisible: true, DisplayOrder: 0, Format: FormatNumber},
		{ColumnID: ColumnTrancheID, DisplayName: "Tranche ID", IsVisible: true, DisplayOrder: 1, Format: FormatText},
		{ColumnID: ColumnCycleCode, DisplayName: "Cycle Code", IsVisible: true, DisplayOrder: 2, Format: FormatNumber},
	}
}

// IsDefaultColumn reports whether the ID names one of the fixed columns.
func IsDefaultColumn(columnID string) bool {
	return columnID == ColumnDealNumber || columnID == ColumnTrancheID || columnID == ColumnCycleCode
}

// ColumnIDForCalculation maps a calculation to its column ID.
func ColumnIDForCalculation(calculationID int) string {
	return strconv.Itoa(calculationID)
}

// fallbackName is the display name used when a calculation has none.
func fallbackName(calc SelectedCalculation) string {
	if calc.DisplayName != nil && *calc.DisplayName != "" {
		return *calc.DisplayName
	}
	return fmt.Sprintf("Calculation %d", calc.CalculationID)
}

// Resolve derives the column list for the current calculation selection.
//
// With no calculations only the default columns remain. With no usable
// existing preferences (or preserveExisting=false) the full default set is
// regenerated, one column per calculation in selection order. Otherwise
// existing entries are merged: entries for default columns or still-selected
// calculations are retained with their user edits, entries for deselected
// calculations are dropped, and newly selected calculations are appended.
// display_order is renumbered 0..n-1 after every branch. The merge is
// idempotent, never removes a default column, and never produces duplicate
// column IDs. The scope parameter is part of the resolver contract but the
// default set is fixed regardless of scope.
func Resolve(selected []SelectedCalculation, scope Scope, existing *ColumnPreferences, preserveExisting bool) ColumnPreferences {
	_ = scope

	if len(selected) == 0 {
		return renumber(DefaultColumns())
	}

	if existing == nil || len(existing.Columns) == 0 || !preserveExisting {
		cols := DefaultColumns()
		for _, calc := range selected {
			cols = append(cols, ColumnPreference{
				ColumnID:    ColumnIDForCalculation(calc.CalculationID),
				DisplayName: fallbackName(calc),
				IsVisible:   true,
				Format:      FormatText,
			})
		}
		return renumber(cols)
	}

	selectedIDs := make(map[string]SelectedCalculation, len(selected))
	for _, calc := range selected {
		selectedIDs[ColumnIDForCalculation(calc.CalculationID)] = calc
	}

	var cols []ColumnPreference
	seen := make(map[string]struct{})

	// Retain entries still relevant, preserving user edits and relative order.
	for _, col := range existing.Columns {
		if _, dup := seen[col.ColumnID]; dup {
			continue
		}
		_, stillSelected := selectedIDs[col.ColumnID]
		if IsDefaultColumn(col.ColumnID) || stillSelected {
			cols = append(cols, col)
			seen[col.ColumnID] = struct{}{}
		}
	}

	// Defaults can never go missing, even from corrupt saved preferences.
	for _, def := range DefaultColumns() {
		if _, ok := seen[def.ColumnID]; !ok {
			cols = append(cols, def)
			seen[def.ColumnID] = struct{}{}
		}
	}

	// Append newly selected calculations not yet represented, in selection order.
	for _, calc := range selected {
		id := ColumnIDForCalculation(calc.CalculationID)
		if _, ok := seen[id]; ok {
			continue
		}
		cols = append(cols, ColumnPreference{
			ColumnID:    id,
			DisplayName: fallbackName(calc),
			IsVisible:   true,
			Format:      FormatText,
		})
		seen[id] = struct{}{}
	}

	return renumber(cols)
}

// Reorder moves the column at from to the target index, adjusting for the
// removal direction, then renumbers display_order sequentially.
func Reorder(prefs ColumnPreferences, from, to int) ColumnPreferences {
	n := len(prefs.Columns)
	if n == 0 || from < 0 || from >= n {
		return prefs
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}
	if from == to {
		return prefs
	}

	cols := make([]ColumnPreference, 0, n)
	cols = append(cols, prefs.Columns...)

	moved := cols[from]
	cols = append(cols[:from], cols[from+1:]...)
	cols = append(cols[:to], append([]ColumnPreference{moved}, cols[to:]...)...)

	return renumber(cols)
}

// renumber assigns a contiguous 0..n-1 display_order.
func renumber(cols []ColumnPreference) ColumnPreferences {
	for i := range cols {
		cols[i].DisplayOrder = i
	}
	return ColumnPreferences{Columns: cols}
}

// VisibleColumns returns the visible columns in display order.
func (p ColumnPreferences) VisibleColumns() []ColumnPreference {
	var out []ColumnPreference
	for _, col := range p.Columns {
		if col.IsVisible {
			out = append(out, col)
		}
	}
	return out
}

// columnsToAPI converts to the wire shape.
func columnsToAPI(p *ColumnPreferences) *api.ColumnPreferences {
	if p == nil {
		return nil
	}
	out := &api.ColumnPreferences{Columns: make([]api.ColumnPreference, 0, len(p.Columns))}
	for _, col := range p.Columns {
		out.Columns = append(out.Columns, api.ColumnPreference{
			ColumnID:     col.ColumnID,
			DisplayName:  col.DisplayName,
			IsVisible:    col.IsVisible,
			DisplayOrder: col.DisplayOrder,
			FormatType:   col.Format.String(),
		})
	}
	return out
}

// columnsFromAPI converts from the wire shape. Unknown format types fall
// back to text rather than failing the whole hydrate.
func columnsFromAPI(p *api.ColumnPreferences) ColumnPreferences {
	cols := make([]ColumnPreference, 0, len(p.Columns))
	for _, col := range p.Columns {
		format, err := ParseFormatType(col.FormatType)
		if err != nil {
			format = FormatText
		}
		cols = append(cols, ColumnPreference{
			ColumnID:     col.ColumnID,
			DisplayName:  col.DisplayName,
			IsVisible:    col.IsVisible,
			DisplayOrder: col.DisplayOrder,
			Format:       format,
		})
	}
	return ColumnPreferences{Columns: cols}
}
