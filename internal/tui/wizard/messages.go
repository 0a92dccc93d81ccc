package wizard

import (
	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

// DoneMsg is emitted when the wizard finishes a save or update.
type DoneMsg struct {
	Config *api.ReportConfig
	Update bool
}

// CancelledMsg is emitted when the operator backs out of the wizard.
type CancelledMsg struct{}

// NoticeMsg bubbles a save/validation notice up to the app toast.
type NoticeMsg struct {
	Notice report.Notice
}

// DealsLoadedMsg carries the deal catalog for the deal step.
type DealsLoadedMsg struct {
	Seq   uint64
	Deals []api.Deal
	Err   error
}

// TranchesLoadedMsg carries one deal's tranches for the tranche step.
type TranchesLoadedMsg struct {
	Seq      uint64
	DlNbr    int
	Tranches []api.Tranche
	Err      error
}

// CalculationsLoadedMsg carries the scope-filtered calculation catalog.
type CalculationsLoadedMsg struct {
	Seq          uint64
	Calculations []api.Calculation
	Err          error
}

// PreviewLoadedMsg carries the server-generated SQL preview for review.
type PreviewLoadedMsg struct {
	Seq     uint64
	Preview *api.SQLPreview
	Err     error
}

// IssuersLoadedMsg carries the issuer codes for the deal step filter.
type IssuersLoadedMsg struct {
	Seq     uint64
	Issuers []string
	Err     error
}

// DescriptionEditedMsg returns the description edited in $EDITOR.
type DescriptionEditedMsg struct {
	Content string
}

// configCompleteMsg signals the configuration step validated and advanced.
type configCompleteMsg struct{}
