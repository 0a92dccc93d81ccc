package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportRequest(t *testing.T) {
	d := NewDraft()
	d.SetName("Q3 Tranche Report")
	d.SetDescription("Quarterly tranche-level run")
	d.SetScope(ScopeTranche)
	d.ToggleDeal(2002)
	d.ToggleDeal(1001)
	d.ToggleTranche(2002, "B")
	d.ToggleTranche(2002, "A1")
	d.ToggleTranche(1001, "M2")
	custom := "Principal Due"
	d.SetCalculations([]SelectedCalculation{
		{CalculationID: 9, DisplayOrder: 7, DisplayName: &custom},
		{CalculationID: 5, DisplayOrder: 2},
	})
	cols := Resolve(d.SelectedCalculations, d.Scope, nil, false)
	d.SetColumns(&cols)

	req := BuildReportRequest(d, "ssmith")

	assert.Equal(t, "ssmith", req.CreatedBy)
	assert.Equal(t, "TRANCHE", req.Scope)

	// Deals ascending, tranches sorted within each deal.
	require.Len(t, req.SelectedDeals, 2)
	assert.Equal(t, 1001, req.SelectedDeals[0].DlNbr)
	assert.Equal(t, 2002, req.SelectedDeals[1].DlNbr)
	trs := req.SelectedDeals[1].SelectedTranches
	require.Len(t, trs, 2)
	assert.Equal(t, "A1", trs[0].TrID)
	assert.Equal(t, "B", trs[1].TrID)

	// display_order is normalized to selection order, original values ignored.
	for i, calc := range req.SelectedCalculations {
		assert.Equal(t, i, calc.DisplayOrder, "calc %d order", i)
	}
	assert.Equal(t, 9, req.SelectedCalculations[0].CalculationID)
	require.NotNil(t, req.SelectedCalculations[0].DisplayName)
	assert.Equal(t, "Principal Due", *req.SelectedCalculations[0].DisplayName)
}

func TestReportRequestWireKeys(t *testing.T) {
	d := validDraft()
	d.SetScope(ScopeTranche)
	d.ToggleTranche(1001, "A1")

	raw, err := json.Marshal(BuildReportRequest(d, "ssmith"))
	require.NoError(t, err)
	body := string(raw)

	for _, key := range []string{
		`"name"`, `"scope"`, `"created_by"`,
		`"selected_deals"`, `"dl_nbr"`, `"selected_tranches"`, `"tr_id"`,
		`"selected_calculations"`, `"calculation_id"`, `"display_order"`,
		`"column_preferences"`, `"columns"`, `"column_id"`, `"display_name"`,
		`"is_visible"`, `"format_type"`,
	} {
		assert.Contains(t, body, key, "payload missing wire key")
	}

	// The tranche parent deal is implied by nesting, never serialized.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	deals := decoded["selected_deals"].([]any)
	tranche := deals[0].(map[string]any)["selected_tranches"].([]any)[0].(map[string]any)
	assert.NotContains(t, tranche, "dl_nbr", "tranche selection must not carry dl_nbr")
}
