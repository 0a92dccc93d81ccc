package api

import "time"

// Wire models for the reporting backend. Field names are the contract:
// the backend speaks snake_case and the exact keys below (dl_nbr, tr_id,
// calculation_id, display_order, ...) must not drift.

// Deal is a structured deal as returned by the deals endpoint.
type Deal struct {
	DlNbr      int    `json:"dl_nbr"`
	IssrCde    string `json:"issr_cde"`
	CdiFileNme string `json:"cdi_file_nme"`
	CycleCode  int    `json:"cycle_code"`
}

// Tranche is a sub-unit of a deal.
type Tranche struct {
	TrID      string `json:"tr_id"`
	DlNbr     int    `json:"dl_nbr"`
	TrCusipID string `json:"tr_cusip_id,omitempty"`
}

// Calculation is a server-defined computation or raw field selectable for a report.
type Calculation struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Scope       string `json:"scope"`
	Category    string `json:"category,omitempty"`
}

// ReportDealSelection is the nested deal→tranche structure the server stores.
type ReportDealSelection struct {
	DlNbr            int                      `json:"dl_nbr"`
	SelectedTranches []ReportTrancheSelection `json:"selected_tranches,omitempty"`
}

// ReportTrancheSelection identifies a tranche within its parent deal.
// The parent dl_nbr is implied by nesting and deliberately not serialized.
type ReportTrancheSelection struct {
	TrID string `json:"tr_id"`
}

// ReportCalculation is one selected calculation with its display metadata.
type ReportCalculation struct {
	CalculationID int     `json:"calculation_id"`
	DisplayOrder  int     `json:"display_order"`
	DisplayName   *string `json:"display_name,omitempty"`
}

// ColumnPreference is user-controlled display metadata for one report column.
type ColumnPreference struct {
	ColumnID     string `json:"column_id"`
	DisplayName  string `json:"display_name"`
	IsVisible    bool   `json:"is_visible"`
	DisplayOrder int    `json:"display_order"`
	FormatType   string `json:"format_type"`
}

// ColumnPreferences wraps the ordered column list.
type ColumnPreferences struct {
	Columns []ColumnPreference `json:"columns"`
}

// ReportConfig is a saved report configuration (server shape).
type ReportConfig struct {
	ID                   int                   `json:"id"`
	Name                 string                `json:"name"`
	Description          string                `json:"description,omitempty"`
	Scope                string                `json:"scope"`
	CreatedBy            string                `json:"created_by,omitempty"`
	CreatedDate          *time.Time            `json:"created_date,omitempty"`
	UpdatedDate          *time.Time            `json:"updated_date,omitempty"`
	SelectedDeals        []ReportDealSelection `json:"selected_deals"`
	SelectedCalculations []ReportCalculation   `json:"selected_calculations"`
	ColumnPreferences    *ColumnPreferences    `json:"column_preferences,omitempty"`
}

// ReportRequest is the create/update payload for a report configuration.
type ReportRequest struct {
	Name                 string                `json:"name"`
	Description          string                `json:"description,omitempty"`
	Scope                string                `json:"scope"`
	CreatedBy            string                `json:"created_by,omitempty"`
	SelectedDeals        []ReportDealSelection `json:"selected_deals"`
	SelectedCalculations []ReportCalculation   `json:"selected_calculations"`
	ColumnPreferences    *ColumnPreferences    `json:"column_preferences,omitempty"`
}

// SQLPreview is the server-generated SQL for a report, display only.
type SQLPreview struct {
	BaseQuery          string             `json:"base_query"`
	CalculationQueries []CalculationQuery `json:"calculation_queries"`
}

// CalculationQuery describes the SQL for one calculation within a preview.
type CalculationQuery struct {
	CalculationID int    `json:"calculation_id"`
	Name          string `json:"name"`
	Query         string `json:"query"`
}

// RunRequest executes a single calculation or a raw SQL fragment against a
// deal/tranche/cycle selection. Exactly one of calculation_id or raw_sql is set.
type RunRequest struct {
	CalculationID *int     `json:"calculation_id,omitempty"`
	RawSQL        string   `json:"raw_sql,omitempty"`
	DlNbrs        []int    `json:"dl_nbrs"`
	TrIDs         []string `json:"tr_ids,omitempty"`
	CycleCode     int      `json:"cycle_code"`
}

// RunResult carries row data plus timing for a single execution.
type RunResult struct {
	Columns         []string         `json:"columns"`
	Rows            []map[string]any `json:"rows"`
	ExecutionTimeMS float64          `json:"execution_time_ms"`
}

// User is an application user record.
type User struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Employee is a staff record.
type Employee struct {
	ID         int    `json:"id,omitempty"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
}

// Subscriber is a report distribution subscriber.
type Subscriber struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// LogEntry is one backend log line as served by the logs endpoint.
type LogEntry struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Source    string    `json:"source,omitempty"`
	Message   string    `json:"message"`
}

// LogPage is a page of log entries with the total match count.
type LogPage struct {
	Items []LogEntry `json:"items"`
	Total int        `json:"total"`
}

// LogQuery selects and pages log entries.
type LogQuery struct {
	Level  string
	Search string
	Limit  int
	Offset int
}
