package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

// fetchErrorText turns a catalog fetch error into operator-facing text.
func fetchErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "Could not reach the reporting service. Please try again."
}

// DealStep is the multi-select deal picker.
type DealStep struct {
	client Client
	draft  *report.Draft

	deals    []api.Deal
	filtered []api.Deal
	issuers  []string
	// issuerIdx of -1 means all issuers
	issuerIdx int

	cursor    int
	offset    int
	filter    textinput.Model
	filtering bool

	fetchSeq uint64
	lastSeq  uint64
	loading  bool
	loadErr  string

	width  int
	height int
}

// NewDealStep creates the deal selection step.
func NewDealStep(client Client, draft *report.Draft) *DealStep {
	filter := textinput.New()
	filter.Placeholder = "Filter by deal number or issuer..."
	filter.Prompt = "/ "
	filter.SetStyles(inputStyles())
	filter.SetWidth(40)

	return &DealStep{
		client:    client,
		draft:     draft,
		filter:    filter,
		issuerIdx: -1,
		width:     60,
		height:    16,
	}
}

// Init kicks off the deal catalog and issuer code fetches.
func (s *DealStep) Init() tea.Cmd {
	return tea.Batch(s.fetch(), s.fetchIssuers())
}

// Capturing reports whether the filter input owns the keyboard.
func (s *DealStep) Capturing() bool { return s.filtering }

// SetSize updates the step dimensions.
func (s *DealStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.filter.SetWidth(width - 10)
}

func (s *DealStep) fetch() tea.Cmd {
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	client := s.client
	issuer := s.issuerCode()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		deals, err := client.ListDeals(ctx, issuer)
		return DealsLoadedMsg{Seq: seq, Deals: deals, Err: err}
	}
}

func (s *DealStep) fetchIssuers() tea.Cmd {
	client := s.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		issuers, err := client.ListIssuerCodes(ctx)
		return IssuersLoadedMsg{Issuers: issuers, Err: err}
	}
}

// issuerCode returns the active server-side issuer filter, "" for all.
func (s *DealStep) issuerCode() string {
	if s.issuerIdx < 0 || s.issuerIdx >= len(s.issuers) {
		return ""
	}
	return s.issuers[s.issuerIdx]
}

// Update handles messages for the deal step.
func (s *DealStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DealsLoadedMsg:
		if msg.Seq < s.lastSeq {
			return nil
		}
		s.lastSeq = msg.Seq
		s.loading = false
		if msg.Err != nil {
			s.loadErr = fetchErrorText(msg.Err)
			return nil
		}
		s.loadErr = ""
		s.deals = msg.Deals
		s.applyFilter()
		return nil

	case IssuersLoadedMsg:
		if msg.Err == nil {
			s.issuers = msg.Issuers
		}
		return nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *DealStep) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if s.filtering {
		switch msg.String() {
		case "enter", "esc":
			s.filtering = false
			s.filter.Blur()
			if msg.String() == "esc" {
				s.filter.SetValue("")
				s.applyFilter()
			}
			return nil
		}
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		s.applyFilter()
		return cmd
	}

	switch msg.String() {
	case "up", "k":
		s.move(-1)
	case "down", "j":
		s.move(1)
	case "pgup":
		s.move(-s.visibleRows())
	case "pgdown":
		s.move(s.visibleRows())
	case "space":
		if s.cursor < len(s.filtered) {
			s.draft.ToggleDeal(s.filtered[s.cursor].DlNbr)
		}
	case "/":
		s.filtering = true
		return s.filter.Focus()
	case "i":
		if len(s.issuers) > 0 {
			s.issuerIdx++
			if s.issuerIdx >= len(s.issuers) {
				s.issuerIdx = -1
			}
			return s.fetch()
		}
	case "r":
		return s.fetch()
	}
	return nil
}

func (s *DealStep) move(delta int) {
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= len(s.filtered) {
		s.cursor = len(s.filtered) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	rows := s.visibleRows()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
}

func (s *DealStep) visibleRows() int {
	return max(s.height-8, 4)
}

// applyFilter matches the filter text against deal number and issuer code.
func (s *DealStep) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(s.filter.Value()))
	if query == "" {
		s.filtered = s.deals
	} else {
		s.filtered = nil
		for _, d := range s.deals {
			if strings.Contains(strconv.Itoa(d.DlNbr), query) ||
				strings.Contains(strings.ToLower(d.IssrCde), query) {
				s.filtered = append(s.filtered, d)
			}
		}
	}
	if s.cursor >= len(s.filtered) {
		s.cursor = max(len(s.filtered)-1, 0)
	}
	s.offset = 0
}

// View renders the deal list with selection checkboxes.
func (s *DealStep) View() string {
	var b strings.Builder

	if s.filtering || s.filter.Value() != "" {
		b.WriteString(s.filter.View())
		b.WriteString("\n\n")
	}

	switch {
	case s.loading && len(s.deals) == 0:
		b.WriteString(styleDimText.Render("Loading deals..."))
		b.WriteString("\n")
	case s.loadErr != "":
		b.WriteString(styleErrorText.Render("✗ " + s.loadErr))
		b.WriteString("\n")
	case len(s.filtered) == 0:
		b.WriteString(styleDimText.Render("No deals match"))
		b.WriteString("\n")
	default:
		rows := s.visibleRows()
		end := min(s.offset+rows, len(s.filtered))
		for i := s.offset; i < end; i++ {
			b.WriteString(s.renderDeal(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	status := fmt.Sprintf("%d of %d deals selected", len(s.draft.SelectedDeals), len(s.deals))
	if issuer := s.issuerCode(); issuer != "" {
		status += fmt.Sprintf("  (issuer: %s)", issuer)
	}
	b.WriteString(styleLabel.Render(status))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar(
		"↑↓", "navigate",
		"space", "toggle",
		"/", "filter",
		"i", "issuer",
		"enter", "continue",
		"esc", "back",
	))
	return b.String()
}

func (s *DealStep) renderDeal(i int) string {
	d := s.filtered[i]
	mark := "[ ]"
	markStyle := styleUnchecked
	if _, selected := s.draft.SelectedDeals[d.DlNbr]; selected {
		mark = "[✓]"
		markStyle = styleChecked
	}
	line := fmt.Sprintf("%s %d  %s  cycle %d", markStyle.Render(mark), d.DlNbr, d.IssrCde, d.CycleCode)
	if i == s.cursor {
		return styleSelected.Render("› ") + line
	}
	return "  " + line
}
