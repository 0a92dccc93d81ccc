package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

// trancheRow is one line in the flattened deal→tranche list. Header rows
// have an empty TrID and cannot be toggled.
type trancheRow struct {
	DlNbr int
	TrID  string
	Cusip string
}

// TrancheStep is the per-deal tranche picker, shown only for TRANCHE scope.
type TrancheStep struct {
	client Client
	draft  *report.Draft

	tranches map[int][]api.Tranche
	rows     []trancheRow
	pending  int

	cursor int
	offset int

	fetchSeq uint64
	loadErr  string

	width  int
	height int
}

// NewTrancheStep creates the tranche selection step for the draft's deals.
func NewTrancheStep(client Client, draft *report.Draft) *TrancheStep {
	return &TrancheStep{
		client:   client,
		draft:    draft,
		tranches: make(map[int][]api.Tranche),
		width:    60,
		height:   16,
	}
}

// Init fetches the tranche list of every selected deal in parallel.
func (s *TrancheStep) Init() tea.Cmd {
	s.fetchSeq++
	seq := s.fetchSeq
	s.loadErr = ""
	deals := s.draft.DealNumbers()
	s.pending = len(deals)
	cmds := make([]tea.Cmd, 0, len(deals))
	for _, dlNbr := range deals {
		dlNbr := dlNbr
		client := s.client
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			tranches, err := client.ListTranches(ctx, dlNbr)
			return TranchesLoadedMsg{Seq: seq, DlNbr: dlNbr, Tranches: tranches, Err: err}
		})
	}
	return tea.Batch(cmds...)
}

// SetSize updates the step dimensions.
func (s *TrancheStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Update handles messages for the tranche step.
func (s *TrancheStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case TranchesLoadedMsg:
		if msg.Seq != s.fetchSeq {
			return nil
		}
		if s.pending > 0 {
			s.pending--
		}
		if msg.Err != nil {
			s.loadErr = fetchErrorText(msg.Err)
			return nil
		}
		s.tranches[msg.DlNbr] = msg.Tranches
		s.rebuildRows()
		return nil

	case tea.KeyPressMsg:
		s.handleKey(msg)
	}
	return nil
}

func (s *TrancheStep) handleKey(msg tea.KeyPressMsg) {
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
		if s.cursor < len(s.rows) {
			row := s.rows[s.cursor]
			if row.TrID != "" {
				s.draft.ToggleTranche(row.DlNbr, row.TrID)
			}
		}
	case "a":
		// Select every tranche of the deal under the cursor.
		if s.cursor < len(s.rows) {
			dlNbr := s.rows[s.cursor].DlNbr
			for _, tr := range s.tranches[dlNbr] {
				if _, on := s.draft.SelectedTranches[dlNbr][tr.TrID]; !on {
					s.draft.ToggleTranche(dlNbr, tr.TrID)
				}
			}
		}
	}
}

// move skips header rows so the cursor always rests on a tranche.
func (s *TrancheStep) move(delta int) {
	if len(s.rows) == 0 {
		return
	}
	step := 1
	if delta < 0 {
		step = -1
	}
	cursor := s.cursor
	for i := 0; i != delta; i += step {
		next := cursor + step
		for next >= 0 && next < len(s.rows) && s.rows[next].TrID == "" {
			next += step
		}
		if next < 0 || next >= len(s.rows) {
			break
		}
		cursor = next
	}
	s.cursor = cursor
	rows := s.visibleRows()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
}

func (s *TrancheStep) visibleRows() int {
	return max(s.height-8, 4)
}

// rebuildRows flattens the fetched tranches under deal headers, in deal order.
func (s *TrancheStep) rebuildRows() {
	s.rows = s.rows[:0]
	for _, dlNbr := range s.draft.DealNumbers() {
		tranches, ok := s.tranches[dlNbr]
		if !ok {
			continue
		}
		s.rows = append(s.rows, trancheRow{DlNbr: dlNbr})
		for _, tr := range tranches {
			s.rows = append(s.rows, trancheRow{DlNbr: dlNbr, TrID: tr.TrID, Cusip: tr.TrCusipID})
		}
	}
	// Land the cursor on the first tranche row.
	if s.cursor >= len(s.rows) {
		s.cursor = 0
	}
	if s.cursor < len(s.rows) && s.rows[s.cursor].TrID == "" {
		s.move(1)
	}
}

func (s *TrancheStep) selectedCount() int {
	count := 0
	for _, set := range s.draft.SelectedTranches {
		count += len(set)
	}
	return count
}

// View renders the grouped tranche list.
func (s *TrancheStep) View() string {
	var b strings.Builder

	switch {
	case s.pending > 0 && len(s.rows) == 0:
		b.WriteString(styleDimText.Render("Loading tranches..."))
		b.WriteString("\n")
	case s.loadErr != "":
		b.WriteString(styleErrorText.Render("✗ " + s.loadErr))
		b.WriteString("\n")
	case len(s.rows) == 0:
		b.WriteString(styleDimText.Render("No tranches found for the selected deals"))
		b.WriteString("\n")
	default:
		rows := s.visibleRows()
		end := min(s.offset+rows, len(s.rows))
		for i := s.offset; i < end; i++ {
			b.WriteString(s.renderRow(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styleLabel.Render(fmt.Sprintf("%d tranches selected", s.selectedCount())))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar(
		"↑↓", "navigate",
		"space", "toggle",
		"a", "select deal",
		"enter", "continue",
		"esc", "back",
	))
	return b.String()
}

func (s *TrancheStep) renderRow(i int) string {
	row := s.rows[i]
	if row.TrID == "" {
		return styleLabel.Render(fmt.Sprintf("Deal %d", row.DlNbr))
	}

	mark := "[ ]"
	markStyle := styleUnchecked
	if _, on := s.draft.SelectedTranches[row.DlNbr][row.TrID]; on {
		mark = "[✓]"
		markStyle = styleChecked
	}
	label := row.TrID
	if row.Cusip != "" {
		label += "  " + row.Cusip
	}
	line := fmt.Sprintf("  %s %s", markStyle.Render(mark), label)
	if i == s.cursor {
		return styleSelected.Render("› ") + line
	}
	return "  " + line
}
