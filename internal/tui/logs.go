package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sbrock928/dealdesk/internal/activity"
	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/logger"
)

// LogSource selects which log the viewer shows.
type LogSource string

const (
	SourceBackend  LogSource = "backend"
	SourceActivity LogSource = "activity"
)

// logLevels is the level filter cycle. Empty means all levels.
var logLevels = []string{"", "DEBUG", "INFO", "WARNING", "ERROR"}

// LogLister is the backend side of the log viewer.
type LogLister interface {
	ListLogs(ctx context.Context, q api.LogQuery) (*api.LogPage, error)
}

// ActivityLister is the local activity side of the log viewer.
type ActivityLister interface {
	List(ctx context.Context, q activity.Query) ([]activity.Event, error)
}

// BackendLogsMsg carries one fetched page of backend logs.
type BackendLogsMsg struct {
	Seq  uint64
	Page *api.LogPage
	Err  error
}

// ActivityLogsMsg carries a replay of the local activity log.
type ActivityLogsMsg struct {
	Seq    uint64
	Events []activity.Event
	Err    error
}

// logsTickMsg drives auto-refresh. Gen ties a tick to the refresh loop that
// scheduled it; toggling auto-refresh bumps the generation so orphaned ticks
// are dropped instead of double-scheduling.
type logsTickMsg struct {
	Gen int
}

// LogsView is the log viewer: backend application logs with server-side
// level/search filtering and pagination, or the local activity audit log.
type LogsView struct {
	client   LogLister
	activity ActivityLister
	user     string

	viewport viewport.Model
	search   textinput.Model

	source      LogSource
	levelIdx    int
	offset      int
	total       int
	pageSize    int
	autoRefresh bool
	refreshGen  int
	every       time.Duration

	// fetchSeq orders responses; a reply older than lastSeq is stale and
	// must not overwrite newer data.
	fetchSeq uint64
	lastSeq  uint64

	entries []api.LogEntry
	events  []activity.Event
	loading bool
	loadErr string

	width, height int
	focused       bool
	searching     bool
}

// NewLogsView creates the log viewer.
func NewLogsView(client LogLister, act ActivityLister, user string, pageSize int, every time.Duration) *LogsView {
	if pageSize <= 0 {
		pageSize = 50
	}
	if every <= 0 {
		every = 10 * time.Second
	}

	search := textinput.New()
	search.Placeholder = "search logs..."
	search.Prompt = "/ "
	search.SetWidth(40)

	return &LogsView{
		client:      client,
		activity:    act,
		user:        user,
		viewport:    viewport.New(),
		search:      search,
		source:      SourceBackend,
		pageSize:    pageSize,
		autoRefresh: true,
		every:       every,
	}
}

// Init starts the first fetch, and the refresh loop unless auto-refresh
// was restored off.
func (v *LogsView) Init() tea.Cmd {
	if !v.autoRefresh {
		return v.fetch()
	}
	return tea.Batch(v.fetch(), v.tick())
}

// Level returns the active level filter ("" means all).
func (v *LogsView) Level() string {
	return logLevels[v.levelIdx]
}

// SetAutoRefresh turns the refresh loop on or off.
func (v *LogsView) SetAutoRefresh(on bool) tea.Cmd {
	v.refreshGen++
	v.autoRefresh = on
	if on {
		return v.tick()
	}
	return nil
}

// AutoRefresh reports whether the refresh loop is running.
func (v *LogsView) AutoRefresh() bool {
	return v.autoRefresh
}

// Source reports which log the viewer is showing.
func (v *LogsView) Source() LogSource {
	return v.source
}

// Capturing reports whether the search input owns the keyboard.
func (v *LogsView) Capturing() bool {
	return v.searching
}

// RestoreFilters applies persisted viewer preferences before Init runs.
func (v *LogsView) RestoreFilters(level string, source LogSource, autoRefresh bool) {
	for i, l := range logLevels {
		if l == level {
			v.levelIdx = i
			break
		}
	}
	if source == SourceActivity {
		v.source = SourceActivity
	}
	v.autoRefresh = autoRefresh
}

func (v *LogsView) tick() tea.Cmd {
	gen := v.refreshGen
	return tea.Tick(v.every, func(time.Time) tea.Msg {
		return logsTickMsg{Gen: gen}
	})
}

// fetch issues the next load for the current source and filters.
func (v *LogsView) fetch() tea.Cmd {
	v.fetchSeq++
	seq := v.fetchSeq
	v.loading = true

	if v.source == SourceActivity {
		lister := v.activity
		user := v.user
		search := strings.TrimSpace(v.search.Value())
		return func() tea.Msg {
			if lister == nil {
				return ActivityLogsMsg{Seq: seq}
			}
			events, err := lister.List(context.Background(), activity.Query{User: user, Search: search})
			return ActivityLogsMsg{Seq: seq, Events: events, Err: err}
		}
	}

	client := v.client
	q := api.LogQuery{
		Level:  v.Level(),
		Search: strings.TrimSpace(v.search.Value()),
		Limit:  v.pageSize,
		Offset: v.offset,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		page, err := client.ListLogs(ctx, q)
		return BackendLogsMsg{Seq: seq, Page: page, Err: err}
	}
}

// Update handles messages for the log viewer.
func (v *LogsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case BackendLogsMsg:
		if msg.Seq < v.lastSeq {
			logger.Debug("dropping stale log fetch (seq %d < %d)", msg.Seq, v.lastSeq)
			return nil
		}
		v.lastSeq = msg.Seq
		v.loading = false
		if msg.Err != nil {
			v.loadErr = fetchErrorText(msg.Err)
			return nil
		}
		v.loadErr = ""
		v.entries = msg.Page.Items
		v.total = msg.Page.Total
		v.updateContent()
		return nil

	case ActivityLogsMsg:
		if msg.Seq < v.lastSeq {
			return nil
		}
		v.lastSeq = msg.Seq
		v.loading = false
		if msg.Err != nil {
			v.loadErr = fetchErrorText(msg.Err)
			return nil
		}
		v.loadErr = ""
		v.events = msg.Events
		v.total = len(msg.Events)
		v.updateContent()
		return nil

	case logsTickMsg:
		if !v.autoRefresh || msg.Gen != v.refreshGen {
			return nil
		}
		return tea.Batch(v.fetch(), v.tick())

	case tea.KeyPressMsg:
		return v.handleKey(msg)
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

func (v *LogsView) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if v.searching {
		switch msg.String() {
		case "enter":
			v.searching = false
			v.search.Blur()
			v.offset = 0
			return v.fetch()
		case "esc":
			v.searching = false
			v.search.Blur()
			v.search.SetValue("")
			v.offset = 0
			return v.fetch()
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "/":
		v.searching = true
		return v.search.Focus()
	case "r":
		return v.fetch()
	case "a":
		return v.SetAutoRefresh(!v.autoRefresh)
	case "f":
		v.levelIdx = (v.levelIdx + 1) % len(logLevels)
		v.offset = 0
		return v.fetch()
	case "s":
		if v.source == SourceBackend {
			v.source = SourceActivity
		} else {
			v.source = SourceBackend
		}
		v.offset = 0
		return v.fetch()
	case "]", "pgdown":
		if v.source == SourceBackend && v.offset+v.pageSize < v.total {
			v.offset += v.pageSize
			return v.fetch()
		}
		return nil
	case "[", "pgup":
		if v.source == SourceBackend && v.offset > 0 {
			v.offset -= v.pageSize
			if v.offset < 0 {
				v.offset = 0
			}
			return v.fetch()
		}
		return nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// SetSize updates the viewer dimensions.
func (v *LogsView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.SetWidth(width)
	// Reserve rows for the filter bar and status line.
	vh := height - 3
	if vh < 1 {
		vh = 1
	}
	v.viewport.SetHeight(vh)
	v.search.SetWidth(min(40, width-4))
}

// SetFocus updates the focus state.
func (v *LogsView) SetFocus(focused bool) {
	v.focused = focused
	if !focused {
		v.searching = false
		v.search.Blur()
	}
}

func (v *LogsView) updateContent() {
	var b strings.Builder
	if v.source == SourceActivity {
		if len(v.events) == 0 {
			v.viewport.SetContent(styleEmptyState.Width(v.width).Render("No activity recorded yet"))
			return
		}
		for _, e := range v.events {
			b.WriteString(v.renderActivity(e))
			b.WriteString("\n")
		}
	} else {
		if len(v.entries) == 0 {
			v.viewport.SetContent(styleEmptyState.Width(v.width).Render("No log entries match the current filters"))
			return
		}
		for _, e := range v.entries {
			b.WriteString(v.renderEntry(e))
			b.WriteString("\n")
		}
	}
	v.viewport.SetContent(b.String())
	v.viewport.GotoTop()
}

func levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return styleLogDebug
	case "WARNING", "WARN":
		return styleLogWarn
	case "ERROR", "CRITICAL":
		return styleLogError
	default:
		return styleLogInfo
	}
}

func (v *LogsView) renderEntry(e api.LogEntry) string {
	ts := styleLogTimestamp.Render(e.Timestamp.Format("01-02 15:04:05"))
	lvl := levelStyle(e.Level).Render(fmt.Sprintf("%-8s", e.Level))

	msg := e.Message
	maxWidth := v.width - 30
	if maxWidth > 3 && len(msg) > maxWidth {
		msg = msg[:maxWidth-3] + "..."
	}

	parts := []string{ts, lvl}
	if e.Source != "" {
		parts = append(parts, styleDim.Render(e.Source))
	}
	parts = append(parts, styleLogContent.Render(msg))
	return strings.Join(parts, " ")
}

func (v *LogsView) renderActivity(e activity.Event) string {
	ts := styleLogTimestamp.Render(e.Timestamp.Format("01-02 15:04:05"))
	kind := styleSubtitle.Render(fmt.Sprintf("[%s]", strings.ToUpper(e.Kind)))
	action := styleDim.Render(fmt.Sprintf("%-8s", e.Action))
	return fmt.Sprintf("%s %s %s %s", ts, kind, action, styleLogContent.Render(e.Data))
}

// statusLine summarizes source, filters, and pagination.
func (v *LogsView) statusLine() string {
	var parts []string

	parts = append(parts, styleFooterActive.Render(string(v.source)))
	if lvl := v.Level(); lvl != "" {
		parts = append(parts, "level="+lvl)
	}
	if s := strings.TrimSpace(v.search.Value()); s != "" {
		parts = append(parts, "search="+s)
	}
	if v.source == SourceBackend && v.total > 0 {
		last := v.offset + len(v.entries)
		parts = append(parts, fmt.Sprintf("%d-%d of %d", v.offset+1, last, v.total))
	}
	if v.autoRefresh {
		parts = append(parts, styleDim.Render(fmt.Sprintf("auto %s", v.every)))
	} else {
		parts = append(parts, styleDim.Render("auto off"))
	}
	if v.loading {
		parts = append(parts, styleDim.Render("loading..."))
	}
	if v.loadErr != "" {
		parts = append(parts, styleFieldError.Render(v.loadErr))
	}

	return strings.Join(parts, styleHeaderSeparator.Render(" • "))
}

// View renders the log viewer.
func (v *LogsView) View() string {
	var b strings.Builder

	if v.searching {
		b.WriteString(v.search.View())
	} else {
		b.WriteString(v.statusLine())
	}
	b.WriteString("\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"r", "refresh",
		"a", "auto",
		"f", "level",
		"s", "source",
		"/", "search",
		"[ ]", "page",
	))

	return b.String()
}

// fetchErrorText maps a fetch failure to one status-line message.
func fetchErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "Could not load logs. Retrying on next refresh."
}
