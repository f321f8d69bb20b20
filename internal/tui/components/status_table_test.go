package components

import (
	"testing"

	"github.com/addonindex/idxstat/internal/domain"
	"github.com/addonindex/idxstat/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(uids ...string) []service.Row {
	out := make([]service.Row, len(uids))
	for i, uid := range uids {
		out[i] = service.Row{UID: uid, State: domain.StatePending, Badge: domain.StatePending}
	}
	return out
}

func press(t *StatusTable, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		t.Update(msg)
	}
}

func TestStatusTableCursorStaysInBounds(t *testing.T) {
	table := NewStatusTable("Items", rows("a", "b", "c"))
	table.SetSize(40, 12)

	press(table, "k")
	assert.Equal(t, 0, table.SelectedIndex())

	press(table, "j", "j", "j", "j")
	assert.Equal(t, 2, table.SelectedIndex())

	press(table, "g")
	assert.Equal(t, 0, table.SelectedIndex())
	press(table, "ctrl+d")
	assert.LessOrEqual(t, table.SelectedIndex(), 2)
}

func TestStatusTableEmpty(t *testing.T) {
	table := NewStatusTable("Items", nil)
	table.SetSize(40, 10)

	press(table, "j")
	_, ok := table.SelectedRow()
	assert.False(t, ok)
	assert.Contains(t, table.View(), "No items")
}

func TestStatusTableFilter(t *testing.T) {
	table := NewStatusTable("Items", rows("idgen", "reporting", "indexer"))
	table.SetSize(40, 12)

	table.ToggleFilter()
	press(table, "i", "d", "x")
	require.Equal(t, 1, table.ItemCount())
	row, ok := table.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, "indexer", row.UID)
	assert.Contains(t, table.View(), "[1/3]")

	// enter keeps the filter and hands keys back to navigation
	press(table, "enter")
	assert.True(t, table.IsFiltering())
	assert.False(t, table.IsFilterTyping())

	press(table, "esc")
	assert.False(t, table.IsFiltering())
	assert.Equal(t, 3, table.ItemCount())
}

func TestStatusTableBackspaceOnEmptyFilterCloses(t *testing.T) {
	table := NewStatusTable("Items", rows("a"))
	table.SetSize(40, 10)

	table.ToggleFilter()
	press(table, "backspace")
	assert.False(t, table.IsFiltering())
}

func TestHighlightParts(t *testing.T) {
	parts := highlightParts("idgen", []int{0, 1})
	require.Len(t, parts, 2)
	assert.Equal(t, "id", parts[0].Text)
	assert.NotNil(t, parts[0].Foreground)
	assert.Equal(t, "gen", parts[1].Text)
	assert.Nil(t, parts[1].Foreground)
}
