package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/logger"
	"github.com/sbrock928/dealdesk/internal/resources"
)

// resourceTab selects which resource table is shown.
type resourceTab int

const (
	tabUsers resourceTab = iota
	tabEmployees
	tabSubscribers
)

var tabNames = []string{"Users", "Employees", "Subscribers"}

// resourcesLoadedMsg carries one tab's list fetch result.
type resourcesLoadedMsg struct {
	Seq         uint64
	Tab         resourceTab
	Users       []api.User
	Employees   []api.Employee
	Subscribers []api.Subscriber
	Err         error
}

// resourceSavedMsg reports the outcome of a create or update.
type resourceSavedMsg struct {
	Tab     resourceTab
	Created bool
	Result  resources.Result
}

// resourceDeletedMsg reports the outcome of a delete.
type resourceDeletedMsg struct {
	Tab    resourceTab
	Name   string
	Result resources.Result
}

// ResourcesView is the tabbed users/employees/subscribers editor.
type ResourcesView struct {
	svc resources.Service
	ops *resources.Ops

	tab         resourceTab
	users       []api.User
	employees   []api.Employee
	subscribers []api.Subscriber

	cursor int
	offset int

	fetchSeq [3]uint64
	lastSeq  [3]uint64
	loading  bool
	loadErr  string

	// modal form state
	editing   bool
	editID    int
	inputs    []textinput.Model
	keys      []string
	labels    []string
	hasActive bool
	isActive  bool
	focusIdx  int
	fieldErrs map[string]string

	confirmDelete bool

	width  int
	height int
}

// NewResourcesView creates the resources view. ops performs the mutations;
// svc serves the list fetches.
func NewResourcesView(svc resources.Service, ops *resources.Ops) *ResourcesView {
	return &ResourcesView{
		svc:    svc,
		ops:    ops,
		width:  80,
		height: 24,
	}
}

// Init fetches the first tab.
func (v *ResourcesView) Init() tea.Cmd {
	return v.fetch()
}

// SetSize updates the view dimensions.
func (v *ResourcesView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Editing reports whether the form modal is open (the app suppresses
// global keys while it is).
func (v *ResourcesView) Editing() bool { return v.editing }

func (v *ResourcesView) fetch() tea.Cmd {
	tab := v.tab
	v.fetchSeq[tab]++
	seq := v.fetchSeq[tab]
	v.loading = true
	svc := v.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		msg := resourcesLoadedMsg{Seq: seq, Tab: tab}
		switch tab {
		case tabUsers:
			msg.Users, msg.Err = svc.ListUsers(ctx)
		case tabEmployees:
			msg.Employees, msg.Err = svc.ListEmployees(ctx)
		case tabSubscribers:
			msg.Subscribers, msg.Err = svc.ListSubscribers(ctx)
		}
		return msg
	}
}

// Update handles messages for the resources view.
func (v *ResourcesView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case resourcesLoadedMsg:
		if msg.Seq < v.lastSeq[msg.Tab] {
			logger.Debug("dropping stale resource fetch tab=%d seq=%d", msg.Tab, msg.Seq)
			return nil
		}
		v.lastSeq[msg.Tab] = msg.Seq
		v.loading = false
		if msg.Err != nil {
			v.loadErr = fetchErrorText(msg.Err)
			return nil
		}
		v.loadErr = ""
		switch msg.Tab {
		case tabUsers:
			v.users = msg.Users
		case tabEmployees:
			v.employees = msg.Employees
		case tabSubscribers:
			v.subscribers = msg.Subscribers
		}
		if v.cursor >= v.rowCount() {
			v.cursor = max(v.rowCount()-1, 0)
		}
		return nil

	case resourceSavedMsg:
		return v.handleSaved(msg)

	case resourceDeletedMsg:
		if !msg.Result.OK {
			return showToast(msg.Result.Message, ToastError)
		}
		return tea.Batch(
			showToast("Deleted "+msg.Name, ToastSuccess),
			v.fetch(),
		)

	case tea.KeyPressMsg:
		if v.editing {
			return v.handleFormKey(msg)
		}
		return v.handleListKey(msg)
	}
	return nil
}

func (v *ResourcesView) handleSaved(msg resourceSavedMsg) tea.Cmd {
	res := msg.Result
	if len(res.FieldErrors) > 0 {
		v.fieldErrs = make(map[string]string, len(res.FieldErrors))
		for _, fe := range res.FieldErrors {
			v.fieldErrs[fe.Field] = fe.Message
		}
		return nil
	}
	if !res.OK {
		return showToast(res.Message, ToastError)
	}
	v.closeForm()
	verb := "updated"
	if msg.Created {
		verb = "created"
	}
	return tea.Batch(
		showToast(strings.TrimSuffix(tabNames[msg.Tab], "s")+" "+verb, ToastSuccess),
		v.fetch(),
	)
}

func (v *ResourcesView) handleListKey(msg tea.KeyPressMsg) tea.Cmd {
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
	case "tab", "l":
		v.switchTab(1)
		return v.fetch()
	case "shift+tab", "h":
		v.switchTab(-1)
		return v.fetch()
	case "up", "k":
		v.move(-1)
	case "down", "j":
		v.move(1)
	case "r":
		return v.fetch()
	case "n":
		v.openForm(0)
		return v.focusField(0)
	case "enter", "e":
		if id := v.selectedID(); id != 0 {
			v.openForm(id)
			return v.focusField(0)
		}
	case "d":
		if v.selectedID() != 0 {
			v.confirmDelete = true
		}
	}
	return nil
}

func (v *ResourcesView) switchTab(delta int) {
	v.tab = resourceTab((int(v.tab) + delta + len(tabNames)) % len(tabNames))
	v.cursor = 0
	v.offset = 0
	v.loadErr = ""
}

func (v *ResourcesView) move(delta int) {
	v.cursor += delta
	v.cursor = max(0, min(v.cursor, v.rowCount()-1))
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

func (v *ResourcesView) visibleRows() int {
	return max(v.height-7, 4)
}

func (v *ResourcesView) rowCount() int {
	switch v.tab {
	case tabUsers:
		return len(v.users)
	case tabEmployees:
		return len(v.employees)
	default:
		return len(v.subscribers)
	}
}

func (v *ResourcesView) selectedID() int {
	if v.cursor < 0 || v.cursor >= v.rowCount() {
		return 0
	}
	switch v.tab {
	case tabUsers:
		return v.users[v.cursor].ID
	case tabEmployees:
		return v.employees[v.cursor].ID
	default:
		return v.subscribers[v.cursor].ID
	}
}

// openForm builds the modal inputs for the current tab, seeded from the
// selected record when id != 0.
func (v *ResourcesView) openForm(id int) {
	v.editing = true
	v.editID = id
	v.focusIdx = 0
	v.fieldErrs = nil
	v.hasActive = false
	v.isActive = true

	switch v.tab {
	case tabUsers:
		form := resources.UserForm{IsActive: true}
		if id != 0 {
			form = resources.UserFormFrom(v.users[v.cursor])
		}
		v.buildInputs(
			[]string{"username", "email", "fullName"},
			[]string{"Username", "Email", "Full name"},
			[]string{form.Username, form.Email, form.FullName},
		)
		v.hasActive = true
		v.isActive = form.IsActive

	case tabEmployees:
		form := resources.EmployeeForm{}
		if id != 0 {
			form = resources.EmployeeFormFrom(v.employees[v.cursor])
		}
		v.buildInputs(
			[]string{"firstName", "lastName", "email", "department", "title"},
			[]string{"First name", "Last name", "Email", "Department", "Title"},
			[]string{form.FirstName, form.LastName, form.Email, form.Department, form.Title},
		)

	case tabSubscribers:
		form := resources.SubscriberForm{IsActive: true}
		if id != 0 {
			form = resources.SubscriberFormFrom(v.subscribers[v.cursor])
		}
		v.buildInputs(
			[]string{"name", "email"},
			[]string{"Name", "Email"},
			[]string{form.Name, form.Email},
		)
		v.hasActive = true
		v.isActive = form.IsActive
	}
}

func (v *ResourcesView) buildInputs(keys, labels, values []string) {
	v.keys = keys
	v.labels = labels
	v.inputs = make([]textinput.Model, len(keys))
	for i := range keys {
		in := textinput.New()
		in.Prompt = ""
		in.SetWidth(40)
		in.SetValue(values[i])
		v.inputs[i] = in
	}
}

func (v *ResourcesView) closeForm() {
	v.editing = false
	v.inputs = nil
	v.fieldErrs = nil
}

// fieldCount includes the active toggle when the tab has one.
func (v *ResourcesView) fieldCount() int {
	n := len(v.inputs)
	if v.hasActive {
		n++
	}
	return n
}

func (v *ResourcesView) focusField(idx int) tea.Cmd {
	v.focusIdx = idx
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	if idx < len(v.inputs) {
		return v.inputs[idx].Focus()
	}
	return nil
}

func (v *ResourcesView) handleFormKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.closeForm()
		return nil
	case "tab", "down":
		return v.focusField((v.focusIdx + 1) % v.fieldCount())
	case "shift+tab", "up":
		return v.focusField((v.focusIdx + v.fieldCount() - 1) % v.fieldCount())
	case "enter":
		return v.submitForm()
	}

	// Active toggle row
	if v.focusIdx >= len(v.inputs) {
		if msg.String() == "space" {
			v.isActive = !v.isActive
		}
		return nil
	}

	var cmd tea.Cmd
	v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
	return cmd
}

func (v *ResourcesView) value(key string) string {
	for i, k := range v.keys {
		if k == key {
			return v.inputs[i].Value()
		}
	}
	return ""
}

// submitForm runs the save through the ops layer off the UI thread.
func (v *ResourcesView) submitForm() tea.Cmd {
	tab := v.tab
	id := v.editID
	ops := v.ops

	switch tab {
	case tabUsers:
		form := resources.UserForm{
			Username: v.value("username"),
			Email:    v.value("email"),
			FullName: v.value("fullName"),
			IsActive: v.isActive,
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return resourceSavedMsg{Tab: tab, Created: id == 0, Result: ops.SaveUser(ctx, id, form)}
		}
	case tabEmployees:
		form := resources.EmployeeForm{
			FirstName:  v.value("firstName"),
			LastName:   v.value("lastName"),
			Email:      v.value("email"),
			Department: v.value("department"),
			Title:      v.value("title"),
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return resourceSavedMsg{Tab: tab, Created: id == 0, Result: ops.SaveEmployee(ctx, id, form)}
		}
	default:
		form := resources.SubscriberForm{
			Name:     v.value("name"),
			Email:    v.value("email"),
			IsActive: v.isActive,
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return resourceSavedMsg{Tab: tab, Created: id == 0, Result: ops.SaveSubscriber(ctx, id, form)}
		}
	}
}

func (v *ResourcesView) deleteSelected() tea.Cmd {
	if v.cursor < 0 || v.cursor >= v.rowCount() {
		return nil
	}
	tab := v.tab
	ops := v.ops
	switch tab {
	case tabUsers:
		u := v.users[v.cursor]
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return resourceDeletedMsg{Tab: tab, Name: u.Username, Result: ops.DeleteUser(ctx, u)}
		}
	case tabEmployees:
		e := v.employees[v.cursor]
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return resourceDeletedMsg{Tab: tab, Name: e.FirstName + " " + e.LastName, Result: ops.DeleteEmployee(ctx, e)}
		}
	default:
		s := v.subscribers[v.cursor]
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return resourceDeletedMsg{Tab: tab, Name: s.Name, Result: ops.DeleteSubscriber(ctx, s)}
		}
	}
}

// View renders the tab bar, table, and modal.
func (v *ResourcesView) View() string {
	var b strings.Builder

	b.WriteString(v.renderTabs())
	b.WriteString("\n\n")

	if v.editing {
		b.WriteString(v.renderForm())
		return b.String()
	}

	switch {
	case v.loading && v.rowCount() == 0:
		b.WriteString(styleDim.Render("  Loading..."))
		b.WriteString("\n")
	case v.loadErr != "":
		b.WriteString(styleFieldError.Render("  " + v.loadErr))
		b.WriteString("\n")
	case v.rowCount() == 0:
		b.WriteString(styleEmptyState.Width(v.width).Render("Nothing here yet. Press n to add one."))
		b.WriteString("\n")
	default:
		rows := v.visibleRows()
		end := min(v.offset+rows, v.rowCount())
		for i := v.offset; i < end; i++ {
			b.WriteString(v.renderRow(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.confirmDelete {
		b.WriteString(styleFieldError.Render("Delete this record? (y/n)"))
	} else {
		b.WriteString(renderHintBar(
			"tab", "switch",
			"n", "new",
			"enter", "edit",
			"d", "delete",
			"r", "refresh",
		))
	}
	return b.String()
}

func (v *ResourcesView) renderTabs() string {
	var parts []string
	for i, name := range tabNames {
		if resourceTab(i) == v.tab {
			parts = append(parts, styleTableSelected.Render(" "+name+" "))
		} else {
			parts = append(parts, styleDim.Render(" "+name+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (v *ResourcesView) renderRow(i int) string {
	var line string
	switch v.tab {
	case tabUsers:
		u := v.users[i]
		active := "active"
		if !u.IsActive {
			active = "inactive"
		}
		line = fmt.Sprintf("  %-20s %-30s %-20s %s", u.Username, u.Email, u.FullName, active)
	case tabEmployees:
		e := v.employees[i]
		line = fmt.Sprintf("  %-25s %-30s %-15s %s", e.FirstName+" "+e.LastName, e.Email, e.Department, e.Title)
	default:
		s := v.subscribers[i]
		active := "active"
		if !s.IsActive {
			active = "inactive"
		}
		line = fmt.Sprintf("  %-25s %-30s %s", s.Name, s.Email, active)
	}
	if i == v.cursor {
		return styleTableSelected.Render(line)
	}
	return styleTableRow.Render(line)
}

func (v *ResourcesView) renderForm() string {
	var lines []string
	title := "New " + strings.TrimSuffix(tabNames[v.tab], "s")
	if v.editID != 0 {
		title = "Edit " + strings.TrimSuffix(tabNames[v.tab], "s")
	}
	lines = append(lines, stylePanelTitle.Render(title), "")

	for i, label := range v.labels {
		marker := "  "
		if i == v.focusIdx {
			marker = styleCheckedMark.Render("› ")
		}
		lines = append(lines, marker+styleDim.Render(label))
		lines = append(lines, "  "+v.inputs[i].View())
		if msg, ok := v.fieldErrs[v.keys[i]]; ok {
			lines = append(lines, "  "+styleFieldError.Render("✗ "+msg))
		}
	}

	if v.hasActive {
		marker := "  "
		if v.focusIdx == len(v.inputs) {
			marker = styleCheckedMark.Render("› ")
		}
		check := "[ ]"
		if v.isActive {
			check = "[✓]"
		}
		lines = append(lines, "", marker+check+" Active")
	}

	lines = append(lines, "", renderHintBar(
		"tab", "next field",
		"enter", "save",
		"esc", "cancel",
	))

	form := strings.Join(lines, "\n")
	return lipgloss.Place(v.width, max(v.height-4, 10), lipgloss.Center, lipgloss.Center, styleModal.Render(form))
}
