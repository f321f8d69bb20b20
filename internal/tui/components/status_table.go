package components

import (
	"fmt"
	"strings"

	"github.com/addonindex/idxstat/internal/service"
	"github.com/addonindex/idxstat/internal/tui/styles"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// Layout constants for the status table
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// StatusTable is a scrollable, filterable list of status rows
type StatusTable struct {
	rows []service.Row

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	title string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int         // indices into rows
	matched      map[int][]int // row index -> matched rune positions in UID
}

// NewStatusTable creates a table over rows, kept in the given order
func NewStatusTable(title string, rows []service.Row) *StatusTable {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &StatusTable{
		rows:        rows,
		title:       title,
		filterInput: ti,
	}
}

// Update handles navigation and filter input
func (t *StatusTable) Update(msg tea.Msg) (*StatusTable, tea.Cmd) {
	// Filter input has the keyboard while typing
	if t.filterActive && t.filterInput.Focused() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, TableKeys.Escape):
				t.clearFilter()
				return t, nil
			case key.Matches(msg, TableKeys.Accept):
				// Accept filter, blur input to allow navigation
				t.filterInput.Blur()
				return t, nil
			case key.Matches(msg, TableKeys.Backspace):
				if t.filterInput.Value() == "" {
					t.clearFilter()
					return t, nil
				}
			}
		}

		var cmd tea.Cmd
		t.filterInput, cmd = t.filterInput.Update(msg)
		t.applyFilter()
		return t, cmd
	}

	if t.filterActive {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, TableKeys.Escape):
				t.clearFilter()
				return t, nil
			case key.Matches(msg, TableKeys.Filter):
				t.filterInput.Focus()
				return t, nil
			}
		}
	}

	count := t.ItemCount()
	if count == 0 {
		return t, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, TableKeys.Down):
			if t.cursor < count-1 {
				t.cursor++
				t.ensureVisible()
			}
		case key.Matches(msg, TableKeys.Up):
			if t.cursor > 0 {
				t.cursor--
				t.ensureVisible()
			}
		case key.Matches(msg, TableKeys.Home):
			t.cursor = 0
			t.offset = 0
		case key.Matches(msg, TableKeys.End):
			t.cursor = count - 1
			t.ensureVisible()
		case key.Matches(msg, TableKeys.HalfDown):
			t.cursor = min(t.cursor+t.maxVisible/2, count-1)
			t.ensureVisible()
		case key.Matches(msg, TableKeys.HalfUp):
			t.cursor = max(t.cursor-t.maxVisible/2, 0)
			t.ensureVisible()
		}
	}

	return t, nil
}

// View renders the table inside a border
func (t *StatusTable) View() string {
	style := styles.ActiveBorder
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(t.width-frameW, 0)).
		Height(max(t.height-frameH, 0)).
		Render(t.renderContent())
}

// SetSize sets the outer dimensions, border included
func (t *StatusTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.recalcMaxVisible()
	t.ensureVisible()
}

// SelectedRow returns the row under the cursor
func (t *StatusTable) SelectedRow() (service.Row, bool) {
	count := t.ItemCount()
	if count == 0 || t.cursor >= count {
		return service.Row{}, false
	}
	return t.rows[t.mapIndex(t.cursor)], true
}

// SelectedIndex returns the cursor position within the visible rows
func (t *StatusTable) SelectedIndex() int {
	return t.cursor
}

// ItemCount returns the number of rows currently shown
func (t *StatusTable) ItemCount() int {
	if t.filteredIdx != nil {
		return len(t.filteredIdx)
	}
	return len(t.rows)
}

// TotalCount returns the number of rows regardless of the filter
func (t *StatusTable) TotalCount() int {
	return len(t.rows)
}

// ToggleFilter activates the filter input
func (t *StatusTable) ToggleFilter() {
	t.filterActive = true
	t.filterInput.Focus()
	t.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (t *StatusTable) IsFiltering() bool {
	return t.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (t *StatusTable) IsFilterTyping() bool {
	return t.filterActive && t.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all rows
func (t *StatusTable) ClearFilter() {
	t.clearFilter()
}

// Internal methods

func (t *StatusTable) recalcMaxVisible() {
	// Interior height minus title line and scroll indicators
	t.maxVisible = t.height - BorderHeight - ScrollIndicatorLines - 1
	if t.filterActive {
		t.maxVisible--
	}
	if t.maxVisible < 1 {
		t.maxVisible = 1
	}
}

func (t *StatusTable) ensureVisible() {
	if t.maxVisible <= 0 {
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.maxVisible {
		t.offset = t.cursor - t.maxVisible + 1
	}
}

func (t *StatusTable) clearFilter() {
	t.filterActive = false
	t.filterQuery = ""
	t.filteredIdx = nil
	t.matched = nil
	t.filterInput.SetValue("")
	t.filterInput.Blur()
	t.recalcMaxVisible()
}

func (t *StatusTable) applyFilter() {
	query := t.filterInput.Value()
	t.filterQuery = query

	if query == "" {
		t.filteredIdx = nil
		t.matched = nil
		return
	}

	uids := make([]string, len(t.rows))
	for i, r := range t.rows {
		uids[i] = strings.ToLower(r.UID)
	}

	matches := fuzzy.Find(strings.ToLower(query), uids)

	t.filteredIdx = make([]int, len(matches))
	t.matched = make(map[int][]int, len(matches))
	for i, match := range matches {
		t.filteredIdx[i] = match.Index
		t.matched[match.Index] = match.MatchedIndexes
	}

	// Reset cursor to first match
	t.cursor = 0
	t.offset = 0
}

func (t *StatusTable) mapIndex(i int) int {
	if t.filteredIdx != nil && i < len(t.filteredIdx) {
		return t.filteredIdx[i]
	}
	return i
}

// Rendering

func (t *StatusTable) renderContent() string {
	itemWidth := max(t.width-BorderWidth, 10)

	titleLine := styles.AccentStyle.Render(styles.Truncate(t.title, itemWidth))

	count := t.ItemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No items")
		if t.filterActive && t.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n" + " " + "\n" + emptyMsg + "\n" + " "
		if t.filterActive {
			content += "\n" + t.renderFilterBar()
		}
		return content
	}

	end := min(t.offset+t.maxVisible, count)

	lines := make([]string, 0, end-t.offset)
	for i := t.offset; i < end; i++ {
		idx := t.mapIndex(i)
		lines = append(lines, t.renderRow(t.rows[idx], t.matched[idx], i == t.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if t.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if t.filterActive {
		content += "\n" + t.renderFilterBar()
	}
	return content
}

func (t *StatusTable) renderRow(row service.Row, matched []int, selected bool, width int) string {
	markerFg := styles.StateColor(row.Badge)
	badgeFg := markerFg
	label := row.Badge.String()

	// Available: width - marker(1) - space(1) - space(1) - label - margins(2)
	availableForUID := max(width-5-len(label), 5)
	uid := styles.Truncate(row.UID, availableForUID)

	parts := []styles.RowPart{
		{Text: styles.StateChar(row.Badge), Foreground: &markerFg},
		{Text: " "},
	}
	parts = append(parts, highlightParts(uid, matched)...)

	pad := availableForUID - lipgloss.Width(uid)
	if pad > 0 {
		parts = append(parts, styles.RowPart{Text: strings.Repeat(" ", pad)})
	}
	parts = append(parts, styles.RowPart{Text: " " + label, Foreground: &badgeFg, Bold: true})

	return styles.RenderListRow(parts, selected, width)
}

// highlightParts splits text so the matched rune positions render in the accent color
func highlightParts(text string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: text}}
	}

	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	accent := styles.Accent
	var parts []styles.RowPart
	var run strings.Builder
	runHit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		part := styles.RowPart{Text: run.String()}
		if runHit {
			part.Foreground = &accent
			part.Bold = true
		}
		parts = append(parts, part)
		run.Reset()
	}

	for i, r := range []rune(text) {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

func (t *StatusTable) renderFilterBar() string {
	input := t.filterInput.View()
	if t.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", t.ItemCount(), t.TotalCount()))
}
