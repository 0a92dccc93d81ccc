// Package report holds the report-builder working state: the wizard draft,
// the column preference resolver, step validation, and the save/update
// operations against the backend.
package report

import (
	"sort"

	"github.com/sbrock928/dealdesk/internal/api"
)

// Scope selects whether a report produces one row per deal or per tranche.
type Scope string

const (
	ScopeUnset   Scope = ""
	ScopeDeal    Scope = "DEAL"
	ScopeTranche Scope = "TRANCHE"
)

// Valid reports whether the scope is one of the two enumerated values.
func (s Scope) Valid() bool {
	return s == ScopeDeal || s == ScopeTranche
}

// SelectedCalculation is one calculation chosen for the report, in order.
type SelectedCalculation struct {
	CalculationID int
	DisplayOrder  int
	DisplayName   *string // optional custom name
}

// ChangeKind identifies which part of the draft a mutation touched.
type ChangeKind int

const (
	ChangeName ChangeKind = iota
	ChangeDescription
	ChangeScope
	ChangeDeals
	ChangeTranches
	ChangeCalculations
	ChangeColumns
	ChangeReset
	ChangeHydrate
)

// Change is published to subscribers after every draft mutation. The column
// resolver listens for ChangeCalculations; the coupling is this event, not a
// hidden reactive dependency.
type Change struct {
	Kind ChangeKind
}

// Draft is the wizard's working copy of a report configuration. It is owned
// by a single wizard session, created empty for a new report and hydrated
// from a fetched config when editing. Mutate it through the methods so
// subscribers see every change.
type Draft struct {
	Name                  string
	Description           string
	Scope                 Scope
	SelectedDeals         map[int]struct{}
	SelectedTranches      map[int]map[string]struct{} // dl_nbr -> set of tr_id
	SelectedCalculations  []SelectedCalculation
	Columns               *ColumnPreferences
	IncludeDefaultColumns bool

	subscribers []func(Change)
}

// NewDraft creates an empty draft.
func NewDraft() *Draft {
	return &Draft{
		SelectedDeals:    make(map[int]struct{}),
		SelectedTranches: make(map[int]map[string]struct{}),
	}
}

// Subscribe registers a callback invoked after every mutation.
func (d *Draft) Subscribe(fn func(Change)) {
	d.subscribers = append(d.subscribers, fn)
}

func (d *Draft) publish(kind ChangeKind) {
	for _, fn := range d.subscribers {
		fn(Change{Kind: kind})
	}
}

// SetName sets the report name.
func (d *Draft) SetName(name string) {
	d.Name = name
	d.publish(ChangeName)
}

// SetDescription sets the report description.
func (d *Draft) SetDescription(desc string) {
	d.Description = desc
	d.publish(ChangeDescription)
}

// SetScope sets the report scope. Changing scope does not clear deal or
// tranche selections; validation decides what the scope requires.
func (d *Draft) SetScope(scope Scope) {
	d.Scope = scope
	d.publish(ChangeScope)
}

// ToggleDeal adds or removes a deal from the selection. Deselecting a deal
// also drops its tranche selections.
func (d *Draft) ToggleDeal(dlNbr int) {
	if _, ok := d.SelectedDeals[dlNbr]; ok {
		delete(d.SelectedDeals, dlNbr)
		delete(d.SelectedTranches, dlNbr)
	} else {
		d.SelectedDeals[dlNbr] = struct{}{}
	}
	d.publish(ChangeDeals)
}

// ToggleTranche adds or removes a tranche under its parent deal.
func (d *Draft) ToggleTranche(dlNbr int, trID string) {
	set, ok := d.SelectedTranches[dlNbr]
	if !ok {
		set = make(map[string]struct{})
		d.SelectedTranches[dlNbr] = set
	}
	if _, ok := set[trID]; ok {
		delete(set, trID)
		if len(set) == 0 {
			delete(d.SelectedTranches, dlNbr)
		}
	} else {
		set[trID] = struct{}{}
	}
	d.publish(ChangeTranches)
}

// SetCalculations replaces the selected calculation list.
func (d *Draft) SetCalculations(calcs []SelectedCalculation) {
	d.SelectedCalculations = calcs
	d.publish(ChangeCalculations)
}

// AddCalculation appends a calculation if not already selected.
func (d *Draft) AddCalculation(calc SelectedCalculation) {
	for _, c := range d.SelectedCalculations {
		if c.CalculationID == calc.CalculationID {
			return
		}
	}
	calc.DisplayOrder = len(d.SelectedCalculations)
	d.SelectedCalculations = append(d.SelectedCalculations, calc)
	d.publish(ChangeCalculations)
}

// RemoveCalculation drops a calculation from the selection.
func (d *Draft) RemoveCalculation(calculationID int) {
	kept := d.SelectedCalculations[:0]
	for _, c := range d.SelectedCalculations {
		if c.CalculationID != calculationID {
			kept = append(kept, c)
		}
	}
	for i := range kept {
		kept[i].DisplayOrder = i
	}
	d.SelectedCalculations = kept
	d.publish(ChangeCalculations)
}

// SetColumns replaces the column preferences wholesale.
func (d *Draft) SetColumns(cols *ColumnPreferences) {
	d.Columns = cols
	d.publish(ChangeColumns)
}

// Reset clears the draft back to empty defaults.
func (d *Draft) Reset() {
	d.Name = ""
	d.Description = ""
	d.Scope = ScopeUnset
	d.SelectedDeals = make(map[int]struct{})
	d.SelectedTranches = make(map[int]map[string]struct{})
	d.SelectedCalculations = nil
	d.Columns = nil
	d.IncludeDefaultColumns = false
	d.publish(ChangeReset)
}

// HydrateFromConfig fills the draft from a fetched report configuration,
// flattening the server's nested deal→tranche lists into the selection sets.
func (d *Draft) HydrateFromConfig(cfg *api.ReportConfig) {
	d.Name = cfg.Name
	d.Description = cfg.Description
	d.Scope = Scope(cfg.Scope)

	d.SelectedDeals = make(map[int]struct{}, len(cfg.SelectedDeals))
	d.SelectedTranches = make(map[int]map[string]struct{})
	for _, deal := range cfg.SelectedDeals {
		d.SelectedDeals[deal.DlNbr] = struct{}{}
		if len(deal.SelectedTranches) > 0 {
			set := make(map[string]struct{}, len(deal.SelectedTranches))
			for _, tr := range deal.SelectedTranches {
				set[tr.TrID] = struct{}{}
			}
			d.SelectedTranches[deal.DlNbr] = set
		}
	}

	d.SelectedCalculations = make([]SelectedCalculation, 0, len(cfg.SelectedCalculations))
	for _, calc := range cfg.SelectedCalculations {
		d.SelectedCalculations = append(d.SelectedCalculations, SelectedCalculation{
			CalculationID: calc.CalculationID,
			DisplayOrder:  calc.DisplayOrder,
			DisplayName:   calc.DisplayName,
		})
	}
	sort.SliceStable(d.SelectedCalculations, func(i, j int) bool {
		return d.SelectedCalculations[i].DisplayOrder < d.SelectedCalculations[j].DisplayOrder
	})

	d.Columns = nil
	if cfg.ColumnPreferences != nil {
		cols := columnsFromAPI(cfg.ColumnPreferences)
		d.Columns = &cols
	}

	d.publish(ChangeHydrate)
}

// DealNumbers returns the selected deals in ascending order.
func (d *Draft) DealNumbers() []int {
	nums := make([]int, 0, len(d.SelectedDeals))
	for dl := range d.SelectedDeals {
		nums = append(nums, dl)
	}
	sort.Ints(nums)
	return nums
}

// TrancheIDs returns the selected tranches of one deal, sorted.
func (d *Draft) TrancheIDs(dlNbr int) []string {
	set, ok := d.SelectedTranches[dlNbr]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasTrancheSelection reports whether any deal has a non-empty tranche list.
func (d *Draft) HasTrancheSelection() bool {
	for _, set := range d.SelectedTranches {
		if len(set) > 0 {
			return true
		}
	}
	return false
}
