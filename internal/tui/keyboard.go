package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c quits even while typing a filter
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	// Nothing to navigate until the report is in
	if m.State.Phase != PhaseLoaded || m.Table == nil {
		if key.Matches(msg, Keys.Quit) {
			return m.quit()
		}
		return m, nil
	}

	// Filter input owns the keyboard while focused
	if m.Table.IsFilterTyping() {
		var cmd tea.Cmd
		m.Table, cmd = m.Table.Update(msg)
		m.updateLayout()
		m.updateInspector()
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m.quit()

	case key.Matches(msg, Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.Help.ShowAll {
			m.Help.ShowAll = false
			m.updateLayout()
			return m, nil
		}
		if m.Table.IsFiltering() {
			m.Table.ClearFilter()
			m.updateLayout()
			m.updateInspector()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.Table.ToggleFilter()
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.DetailUp, Keys.DetailDown):
		var cmd tea.Cmd
		m.Inspector, cmd = m.Inspector.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	m.updateInspector()
	return m, cmd
}
