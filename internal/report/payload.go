package report

import "github.com/sbrock928/dealdesk/internal/api"

// BuildReportRequest translates a validated draft into the create/update
// wire payload. Deals are ordered ascending with their tranches nested
// (the tranche parent id is implied by nesting and never serialized), and
// calculation display_order is normalized to the selection order.
func BuildReportRequest(d *Draft, createdBy string) api.ReportRequest {
	req := api.ReportRequest{
		Name:        d.Name,
		Description: d.Description,
		Scope:       string(d.Scope),
		CreatedBy:   createdBy,
	}

	req.SelectedDeals = make([]api.ReportDealSelection, 0, len(d.SelectedDeals))
	for _, dlNbr := range d.DealNumbers() {
		sel := api.ReportDealSelection{DlNbr: dlNbr}
		for _, trID := range d.TrancheIDs(dlNbr) {
			sel.SelectedTranches = append(sel.SelectedTranches, api.ReportTrancheSelection{TrID: trID})
		}
		req.SelectedDeals = append(req.SelectedDeals, sel)
	}

	req.SelectedCalculations = make([]api.ReportCalculation, 0, len(d.SelectedCalculations))
	for i, calc := range d.SelectedCalculations {
		req.SelectedCalculations = append(req.SelectedCalculations, api.ReportCalculation{
			CalculationID: calc.CalculationID,
			DisplayOrder:  i,
			DisplayName:   calc.DisplayName,
		})
	}

	req.ColumnPreferences = columnsToAPI(d.Columns)
	return req
}
