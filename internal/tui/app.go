package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/sbrock928/dealdesk/internal/activity"
	"github.com/sbrock928/dealdesk/internal/logger"
	natspkg "github.com/sbrock928/dealdesk/internal/nats"
	"github.com/sbrock928/dealdesk/internal/report"
	"github.com/sbrock928/dealdesk/internal/resources"
	"github.com/sbrock928/dealdesk/internal/state"
	"github.com/sbrock928/dealdesk/internal/tui/wizard"
)

// View identifies the active console view.
type View int

const (
	ViewReports View = iota
	ViewWizard
	ViewResources
	ViewLogs
)

var viewNames = map[View]string{
	ViewReports:   "Reports",
	ViewWizard:    "Report Builder",
	ViewResources: "Resources",
	ViewLogs:      "Logs",
}

// Backend is the full API surface the console uses. *api.Client satisfies it.
type Backend interface {
	wizard.Client
	ReportCatalog
	LogLister
	resources.Service
}

// ActivityLog records and replays local audit events. Nil disables both.
type ActivityLog interface {
	Record(ctx context.Context, event activity.Event) (activity.Event, error)
	List(ctx context.Context, q activity.Query) ([]activity.Event, error)
}

// Options carries the app's tunables from config.
type Options struct {
	User         string
	DataDir      string
	ExportDir    string
	PageSize     int
	RefreshEvery time.Duration
}

// App is the root console model.
type App struct {
	backend Backend
	act     ActivityLog
	opts    Options

	view     View
	lastView View

	reports       *ReportsView
	wizardModel   *wizard.Model
	resourcesView *ResourcesView
	logsView      *LogsView
	toast         *Toast

	lastScope  string
	lastExport string

	quitting bool
	width    int
	height   int
}

// NewApp wires the console from its collaborators. Persisted UI preferences
// are applied before the first fetch.
func NewApp(backend Backend, act ActivityLog, ops *resources.Ops, opts Options) *App {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = 10 * time.Second
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	st := state.Load(opts.DataDir)

	logs := NewLogsView(backend, act, opts.User, opts.PageSize, opts.RefreshEvery)
	logs.RestoreFilters(st.Logs.Level, LogSource(st.Logs.Source), st.Logs.AutoRefresh)

	exportDir := opts.ExportDir
	if st.ExportDir != "" {
		exportDir = st.ExportDir
	}

	a := &App{
		backend:       backend,
		act:           act,
		opts:          opts,
		reports:       NewReportsView(backend, opts.User, exportDir),
		resourcesView: NewResourcesView(backend, ops),
		logsView:      logs,
		toast:         NewToast(),
		lastScope:     st.LastScope,
		lastExport:    st.LastExport,
	}

	switch st.LastView {
	case "resources":
		a.view = ViewResources
	case "logs":
		a.view = ViewLogs
	default:
		a.view = ViewReports
	}
	a.lastView = a.view
	return a
}

// Init starts the active view.
func (a *App) Init() tea.Cmd {
	return a.initView()
}

func (a *App) initView() tea.Cmd {
	switch a.view {
	case ViewReports:
		return a.reports.Init()
	case ViewWizard:
		if a.wizardModel != nil {
			return a.wizardModel.Init()
		}
	case ViewResources:
		return a.resourcesView.Init()
	case ViewLogs:
		return a.logsView.Init()
	}
	return nil
}

// Update routes messages to the active view and handles app-level concerns.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSizes()
		return a, nil

	case tea.KeyPressMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case ShowToastMsg:
		return a, a.toast.Show(msg.Text, msg.Level)

	case ToastDismissMsg:
		return a, a.toast.Update(msg)

	case NewReportMsg:
		a.wizardModel = wizard.New(a.backend, a.opts.User)
		if sc := report.Scope(a.lastScope); sc.Valid() {
			a.wizardModel.Draft().SetScope(sc)
		}
		a.switchView(ViewWizard)
		return a, a.initView()

	case EditReportMsg:
		a.wizardModel = wizard.NewEdit(a.backend, a.opts.User, msg.Config)
		a.switchView(ViewWizard)
		return a, a.initView()

	case wizard.NoticeMsg:
		level := ToastInfo
		if msg.Notice.Level == report.NoticeError {
			level = ToastError
		}
		return a, a.toast.Show(msg.Notice.Message, level)

	case wizard.CancelledMsg:
		a.wizardModel = nil
		a.switchView(ViewReports)
		return a, a.reports.Refresh()

	case wizard.DoneMsg:
		a.wizardModel = nil
		a.switchView(ViewReports)
		action := "created"
		if msg.Update {
			action = "updated"
		}
		name := ""
		if msg.Config != nil {
			name = msg.Config.Name
			a.lastScope = msg.Config.Scope
		}
		return a, tea.Batch(
			a.recordActivity(natspkg.KindReport, action, fmt.Sprintf("report %q %s", name, action)),
			a.reports.Refresh(),
		)

	case ReportDeletedMsg:
		var record tea.Cmd
		if msg.Err == nil {
			record = a.recordActivity(natspkg.KindReport, "deleted", fmt.Sprintf("report %q deleted", msg.Name))
		}
		return a, tea.Batch(a.reports.Update(msg), record)

	case ReportExportedMsg:
		var record tea.Cmd
		if msg.Err == nil {
			a.lastExport = msg.Path
			record = a.recordActivity(natspkg.KindExport, "exported",
				fmt.Sprintf("report %q exported to %s", msg.Name, msg.Path))
		}
		return a, tea.Batch(a.reports.Update(msg), record)
	}

	return a, a.forward(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		a.quit()
		return tea.Quit, true
	}

	// While the wizard is open or an input owns the keyboard, only ctrl+c
	// is global.
	if a.view == ViewWizard || a.capturing() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		a.quit()
		return tea.Quit, true
	case "1":
		return a.showView(ViewReports), true
	case "2":
		return a.showView(ViewResources), true
	case "3":
		return a.showView(ViewLogs), true
	}
	return nil, false
}

func (a *App) capturing() bool {
	switch a.view {
	case ViewResources:
		return a.resourcesView.Editing()
	case ViewLogs:
		return a.logsView.Capturing()
	}
	return false
}

func (a *App) showView(v View) tea.Cmd {
	if a.view == v {
		return nil
	}
	a.switchView(v)
	return a.initView()
}

func (a *App) switchView(v View) {
	a.lastView = a.view
	a.view = v
	a.propagateSizes()
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	switch a.view {
	case ViewReports:
		return a.reports.Update(msg)
	case ViewWizard:
		if a.wizardModel != nil {
			return a.wizardModel.Update(msg)
		}
	case ViewResources:
		return a.resourcesView.Update(msg)
	case ViewLogs:
		return a.logsView.Update(msg)
	}
	return nil
}

// recordActivity appends an audit event off the UI thread. A failed append
// is logged, never surfaced.
func (a *App) recordActivity(kind, action, summary string) tea.Cmd {
	if a.act == nil {
		return nil
	}
	act := a.act
	user := a.opts.User
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := act.Record(ctx, activity.Event{
			User:   user,
			Kind:   kind,
			Action: action,
			Data:   summary,
		}); err != nil {
			logger.Warn("recording activity: %v", err)
		}
		return nil
	}
}

// quit persists UI preferences before the program exits.
func (a *App) quit() {
	a.quitting = true
	viewName := "reports"
	switch a.view {
	case ViewResources:
		viewName = "resources"
	case ViewLogs:
		viewName = "logs"
	case ViewWizard:
		viewName = "reports"
	}
	st := state.Load(a.opts.DataDir)
	st.LastView = viewName
	st.LastScope = a.lastScope
	st.LastExport = a.lastExport
	st.Logs.Level = a.logsView.Level()
	st.Logs.Source = string(a.logsView.Source())
	st.Logs.AutoRefresh = a.logsView.AutoRefresh()
	st.Logs.PageSize = a.opts.PageSize
	if err := state.Save(a.opts.DataDir, st); err != nil {
		logger.Warn("saving ui state: %v", err)
	}
}

func (a *App) propagateSizes() {
	bodyHeight := max(a.height-4, 6)
	a.reports.SetSize(a.width, bodyHeight)
	a.resourcesView.SetSize(a.width, bodyHeight)
	a.logsView.SetSize(a.width, bodyHeight)
	if a.wizardModel != nil {
		a.wizardModel.SetSize(a.width, bodyHeight)
	}
}

// View renders the header, active view, footer, and toast overlay.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if a.quitting {
		view.AltScreen = false
		view.Content = lipgloss.NewLayer("")
		return view
	}

	body := a.bodyView()
	content := strings.Join([]string{a.headerView(), body, a.footerView()}, "\n")

	canvas := uv.NewScreenBuffer(a.width, a.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: a.width, Y: a.height},
	})

	if a.toast.IsVisible() {
		box := a.toast.Render(a.width)
		if box != "" {
			w := lipgloss.Width(box)
			h := lipgloss.Height(box)
			x := max(a.width-w-1, 0)
			y := max(a.height-1-h, 0)
			uv.NewStyledString(box).Draw(canvas, uv.Rectangle{
				Min: uv.Position{X: x, Y: y},
				Max: uv.Position{X: x + w, Y: y + h},
			})
		}
	}

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (a *App) bodyView() string {
	switch a.view {
	case ViewReports:
		return a.reports.View()
	case ViewWizard:
		if a.wizardModel != nil {
			return a.wizardModel.View()
		}
	case ViewResources:
		return a.resourcesView.View()
	case ViewLogs:
		return a.logsView.View()
	}
	return ""
}

func (a *App) headerView() string {
	title := styleHeaderTitle.Render("dealdesk")
	sep := styleHeaderSeparator.Render(" │ ")
	info := styleHeaderInfo.Render(viewNames[a.view] + "  " + a.opts.User)
	return styleHeader.Width(a.width).Render(title + sep + info)
}

func (a *App) footerView() string {
	if a.view == ViewWizard {
		return styleFooter.Width(a.width).Render(
			styleFooterLabel.Render("report builder — esc backs out one step"))
	}

	var parts []string
	for i, v := range []View{ViewReports, ViewResources, ViewLogs} {
		key := styleFooterKey.Render(fmt.Sprintf("%d", i+1))
		name := styleFooterLabel.Render(" " + viewNames[v])
		if v == a.view {
			name = styleFooterActive.Render(" " + viewNames[v])
		}
		parts = append(parts, key+name)
	}
	parts = append(parts, styleFooterKey.Render("q")+styleFooterLabel.Render(" quit"))
	return styleFooter.Width(a.width).Render(strings.Join(parts, "   "))
}
