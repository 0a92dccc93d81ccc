package wizard

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/x/editor"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/report"
)

// ReviewStep shows the final summary before saving. In edit mode it also
// fetches the server-generated SQL preview and diffs the description edit.
type ReviewStep struct {
	client  Client
	draft   *report.Draft
	editing *api.ReportConfig

	viewport viewport.Model

	preview    *api.SQLPreview
	previewErr string
	fetchSeq   uint64
	lastSeq    uint64

	tmpFile string

	width  int
	height int
}

// NewReviewStep creates the review step.
func NewReviewStep(client Client, draft *report.Draft, editing *api.ReportConfig) *ReviewStep {
	vp := viewport.New()
	return &ReviewStep{
		client:   client,
		draft:    draft,
		editing:  editing,
		viewport: vp,
		width:    80,
		height:   20,
	}
}

// Init fetches the SQL preview when editing an existing report. New reports
// have no server-side ID yet, so there is nothing to preview.
func (s *ReviewStep) Init() tea.Cmd {
	s.refreshContent()
	if s.editing == nil {
		return nil
	}
	return s.fetchPreview()
}

// SetSize updates the step dimensions.
func (s *ReviewStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.SetWidth(width - 4)
	s.viewport.SetHeight(max(height-6, 6))
	s.refreshContent()
}

func (s *ReviewStep) fetchPreview() tea.Cmd {
	s.fetchSeq++
	seq := s.fetchSeq
	client := s.client
	reportID := s.editing.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		// Preview against the most recent cycle, like every other
		// unspecified-cycle path.
		cycle := 0
		if cycles, err := client.ListCycleCodes(ctx); err == nil && len(cycles) > 0 {
			cycle = cycles[0]
		}
		preview, err := client.PreviewSQL(ctx, reportID, cycle)
		return PreviewLoadedMsg{Seq: seq, Preview: preview, Err: err}
	}
}

// Update handles messages for the review step.
func (s *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PreviewLoadedMsg:
		if msg.Seq < s.lastSeq {
			return nil
		}
		s.lastSeq = msg.Seq
		if msg.Err != nil {
			s.previewErr = fetchErrorText(msg.Err)
		} else {
			s.preview = msg.Preview
			s.previewErr = ""
		}
		s.refreshContent()
		return nil

	case DescriptionEditedMsg:
		if s.tmpFile != "" {
			_ = os.Remove(s.tmpFile)
			s.tmpFile = ""
		}
		s.draft.SetDescription(strings.TrimRight(msg.Content, "\n"))
		s.refreshContent()
		return nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "e":
			return s.openEditor()
		case "p":
			if s.editing != nil {
				return s.fetchPreview()
			}
			return nil
		}
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// openEditor writes the description to a temp file and hands the terminal
// to $EDITOR, reading the edit back when the process exits.
func (s *ReviewStep) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "dealdesk_description_*.md")
	if err != nil {
		return nil
	}
	if _, err := tmpfile.WriteString(s.draft.Description); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	s.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("dealdesk", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		s.tmpFile = ""
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return nil
		}
		content, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return nil
		}
		return DescriptionEditedMsg{Content: string(content)}
	})
}

// refreshContent rebuilds the viewport body from the draft.
func (s *ReviewStep) refreshContent() {
	var b strings.Builder

	b.WriteString(styleLabel.Render("Name        "))
	b.WriteString(styleValue.Render(s.draft.Name))
	b.WriteString("\n")
	b.WriteString(styleLabel.Render("Scope       "))
	b.WriteString(styleValue.Render(string(s.draft.Scope)))
	b.WriteString("\n")
	if s.draft.Description != "" {
		b.WriteString(styleLabel.Render("Description "))
		b.WriteString(styleValue.Render(s.draft.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	deals := s.draft.DealNumbers()
	b.WriteString(styleLabel.Render(fmt.Sprintf("Deals (%d)", len(deals))))
	b.WriteString("\n")
	for _, dlNbr := range deals {
		line := fmt.Sprintf("  %d", dlNbr)
		if tranches := s.draft.TrancheIDs(dlNbr); len(tranches) > 0 {
			line += styleDimText.Render("  tranches: " + strings.Join(tranches, ", "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styleLabel.Render(fmt.Sprintf("Calculations (%d)", len(s.draft.SelectedCalculations))))
	b.WriteString("\n")
	for _, calc := range s.draft.SelectedCalculations {
		name := fmt.Sprintf("Calculation %d", calc.CalculationID)
		if calc.DisplayName != nil && *calc.DisplayName != "" {
			name = *calc.DisplayName
		}
		b.WriteString("  " + name + "\n")
	}
	b.WriteString("\n")

	if s.draft.Columns != nil {
		visible := s.draft.Columns.VisibleColumns()
		b.WriteString(styleLabel.Render(fmt.Sprintf("Columns (%d visible)", len(visible))))
		b.WriteString("\n")
		for _, col := range visible {
			b.WriteString(fmt.Sprintf("  %s  %s\n", col.DisplayName, styleDimText.Render(col.Format.String())))
		}
		b.WriteString("\n")
	}

	if diff := s.descriptionDiff(); diff != "" {
		b.WriteString(styleLabel.Render("Description changes"))
		b.WriteString("\n")
		b.WriteString(diff)
		b.WriteString("\n")
	}

	if s.preview != nil {
		b.WriteString(styleLabel.Render("Generated SQL"))
		b.WriteString("\n")
		b.WriteString(highlightSQL(s.preview.BaseQuery))
		b.WriteString("\n")
		for _, cq := range s.preview.CalculationQueries {
			b.WriteString(styleDimText.Render("-- " + cq.Name))
			b.WriteString("\n")
			b.WriteString(highlightSQL(cq.Query))
			b.WriteString("\n")
		}
	} else if s.previewErr != "" {
		b.WriteString(styleErrorText.Render("SQL preview unavailable: " + s.previewErr))
		b.WriteString("\n")
	}

	s.viewport.SetContent(b.String())
}

// descriptionDiff renders a unified diff of the description against the
// saved config, only meaningful in edit mode.
func (s *ReviewStep) descriptionDiff() string {
	if s.editing == nil || s.editing.Description == s.draft.Description {
		return ""
	}
	diff := udiff.Unified("saved", "draft", s.editing.Description+"\n", s.draft.Description+"\n")
	var lines []string
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			lines = append(lines, styleChecked.Render(line))
		case strings.HasPrefix(line, "-"):
			lines = append(lines, styleErrorText.Render(line))
		default:
			lines = append(lines, styleDimText.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// View renders the review summary.
func (s *ReviewStep) View() string {
	var b strings.Builder
	b.WriteString(s.viewport.View())
	b.WriteString("\n\n")

	hints := []string{"↑↓", "scroll", "e", "edit description", "enter", "save", "esc", "back"}
	if s.editing != nil {
		hints = append(hints, "p", "refresh preview")
	}
	b.WriteString(renderHintBar(hints...))
	return b.String()
}

// highlightSQL renders SQL with ANSI colors. Detection falls back to plain
// text so a formatting failure never hides the query.
func highlightSQL(source string) string {
	lexer := lexers.Get("sql")
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("monokai")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}
	bgColour := chroma.MustParseColour("#313244")
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bgColour
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(sb.String(), "\n")
}
