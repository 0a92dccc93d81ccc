package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/export"
	"github.com/sbrock928/dealdesk/internal/logger"
)

// ReportCatalog is the backend surface the reports view needs.
type ReportCatalog interface {
	ListReports(ctx context.Context, username string) ([]api.ReportConfig, error)
	DeleteReport(ctx context.Context, id int) error
	ExportReport(ctx context.Context, reportID, cycleCode int, format string) ([]byte, error)
	ListCycleCodes(ctx context.Context) ([]int, error)
}

// ReportsLoadedMsg carries the report list fetch result.
type ReportsLoadedMsg struct {
	Seq     uint64
	Reports []api.ReportConfig
	Err     error
}

// ReportDeletedMsg reports the outcome of a delete.
type ReportDeletedMsg struct {
	ID   int
	Name string
	Err  error
}

// ReportExportedMsg reports the outcome of an export download.
type ReportExportedMsg struct {
	Name   string
	Path   string
	Format export.Format
	Err    error
}

// EditReportMsg asks the app to open the wizard on a saved report.
type EditReportMsg struct {
	Config *api.ReportConfig
}

// NewReportMsg asks the app to open the wizard on an empty draft.
type NewReportMsg struct{}

// ReportsView lists the operator's saved reports with edit, delete, and
// export actions.
type ReportsView struct {
	client    ReportCatalog
	user      string
	exportDir string

	reports []api.ReportConfig
	cursor  int
	offset  int

	confirmDelete bool

	fetchSeq uint64
	lastSeq  uint64
	loading  bool
	loadErr  string

	width  int
	height int
}

// NewReportsView creates the reports list.
func NewReportsView(client ReportCatalog, user, exportDir string) *ReportsView {
	return &ReportsView{
		client:    client,
		user:      user,
		exportDir: exportDir,
		width:     80,
		height:    24,
	}
}

// Init fetches the report list.
func (v *ReportsView) Init() tea.Cmd {
	return v.fetch()
}

// SetSize updates the view dimensions.
func (v *ReportsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Refresh refetches the report list, e.g. after a wizard save.
func (v *ReportsView) Refresh() tea.Cmd {
	return v.fetch()
}

func (v *ReportsView) fetch() tea.Cmd {
	v.fetchSeq++
	seq := v.fetchSeq
	v.loading = true
	client := v.client
	user := v.user
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		reports, err := client.ListReports(ctx, user)
		return ReportsLoadedMsg{Seq: seq, Reports: reports, Err: err}
	}
}

// Update handles messages for the reports view.
func (v *ReportsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ReportsLoadedMsg:
		if msg.Seq < v.lastSeq {
			logger.Debug("dropping stale report list fetch seq=%d", msg.Seq)
			return nil
		}
		v.lastSeq = msg.Seq
		v.loading = false
		if msg.Err != nil {
			v.loadErr = fetchErrorText(msg.Err)
			return nil
		}
		v.loadErr = ""
		v.reports = msg.Reports
		if v.cursor >= len(v.reports) {
			v.cursor = max(len(v.reports)-1, 0)
		}
		return nil

	case ReportDeletedMsg:
		if msg.Err != nil {
			return showToast("Could not delete \""+msg.Name+"\": "+fetchErrorText(msg.Err), ToastError)
		}
		return tea.Batch(
			showToast("Report \""+msg.Name+"\" deleted", ToastSuccess),
			v.fetch(),
		)

	case ReportExportedMsg:
		if msg.Err != nil {
			return showToast("Export failed: "+fetchErrorText(msg.Err), ToastError)
		}
		return showToast("Exported to "+msg.Path, ToastSuccess)

	case tea.KeyPressMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *ReportsView) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if v.confirmDelete {
		switch msg.String() {
		case "y", "enter":
			v.confirmDelete = false
			return v.deleteSelected()
		default:
			v.confirmDelete = false
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		v.move(-1)
	case "down", "j":
		v.move(1)
	case "r":
		return v.fetch()
	case "n":
		return func() tea.Msg { return NewReportMsg{} }
	case "enter", "e":
		if cfg := v.selected(); cfg != nil {
			c := *cfg
			return func() tea.Msg { return EditReportMsg{Config: &c} }
		}
	case "d":
		if v.selected() != nil {
			v.confirmDelete = true
		}
	case "x":
		return v.exportSelected(export.FormatCSV)
	case "X":
		return v.exportSelected(export.FormatXLSX)
	}
	return nil
}

func (v *ReportsView) move(delta int) {
	v.cursor += delta
	v.cursor = max(0, min(v.cursor, len(v.reports)-1))
	if v.cursor < 0 {
		v.cursor = 0
	}
	rows := v.visibleRows()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+rows {
		v.offset = v.cursor - rows + 1
	}
}

func (v *ReportsView) visibleRows() int {
	return max(v.height-6, 4)
}

func (v *ReportsView) selected() *api.ReportConfig {
	if v.cursor < 0 || v.cursor >= len(v.reports) {
		return nil
	}
	return &v.reports[v.cursor]
}

func (v *ReportsView) deleteSelected() tea.Cmd {
	cfg := v.selected()
	if cfg == nil {
		return nil
	}
	client := v.client
	id, name := cfg.ID, cfg.Name
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := client.DeleteReport(ctx, id)
		return ReportDeletedMsg{ID: id, Name: name, Err: err}
	}
}

// exportSelected downloads the rendered report for the latest cycle and
// writes it under the export directory.
func (v *ReportsView) exportSelected(format export.Format) tea.Cmd {
	cfg := v.selected()
	if cfg == nil {
		return nil
	}
	client := v.client
	dir := v.exportDir
	id, name := cfg.ID, cfg.Name
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		cycle := 0
		if cycles, err := client.ListCycleCodes(ctx); err == nil && len(cycles) > 0 {
			cycle = cycles[0]
		}

		data, err := client.ExportReport(ctx, id, cycle, string(format))
		if err != nil {
			return ReportExportedMsg{Name: name, Format: format, Err: err}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ReportExportedMsg{Name: name, Format: format, Err: err}
		}
		path := filepath.Join(dir, export.FileName(name, cycle, format, time.Now()))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return ReportExportedMsg{Name: name, Format: format, Err: err}
		}
		return ReportExportedMsg{Name: name, Path: path, Format: format}
	}
}

// View renders the report table.
func (v *ReportsView) View() string {
	var b strings.Builder

	header := fmt.Sprintf("  %-30s %-8s %-12s %s", "NAME", "SCOPE", "DEALS", "UPDATED")
	b.WriteString(styleTableHeader.Render(header))
	b.WriteString("\n")

	switch {
	case v.loading && len(v.reports) == 0:
		b.WriteString(styleDim.Render("  Loading reports..."))
		b.WriteString("\n")
	case v.loadErr != "":
		b.WriteString(styleFieldError.Render("  " + v.loadErr))
		b.WriteString("\n")
	case len(v.reports) == 0:
		b.WriteString(styleEmptyState.Width(v.width).Render("No saved reports. Press n to build one."))
		b.WriteString("\n")
	default:
		rows := v.visibleRows()
		end := min(v.offset+rows, len(v.reports))
		for i := v.offset; i < end; i++ {
			b.WriteString(v.renderRow(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.confirmDelete {
		if cfg := v.selected(); cfg != nil {
			b.WriteString(styleFieldError.Render(fmt.Sprintf("Delete \"%s\"? (y/n)", cfg.Name)))
		}
	} else {
		b.WriteString(renderHintBar(
			"n", "new",
			"enter", "edit",
			"d", "delete",
			"x", "export csv",
			"X", "export xlsx",
			"r", "refresh",
		))
	}
	return b.String()
}

func (v *ReportsView) renderRow(i int) string {
	cfg := v.reports[i]
	updated := ""
	if cfg.UpdatedDate != nil {
		updated = cfg.UpdatedDate.Format("2006-01-02 15:04")
	} else if cfg.CreatedDate != nil {
		updated = cfg.CreatedDate.Format("2006-01-02 15:04")
	}
	name := cfg.Name
	if len(name) > 30 {
		name = name[:27] + "..."
	}
	line := fmt.Sprintf("  %-30s %-8s %-12d %s", name, cfg.Scope, len(cfg.SelectedDeals), updated)
	if i == v.cursor {
		return styleTableSelected.Render(line)
	}
	return styleTableRow.Render(line)
}
