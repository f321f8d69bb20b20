package tui

import (
	"fmt"
	"strings"

	"github.com/addonindex/idxstat/internal/render"
	"github.com/addonindex/idxstat/internal/tui/styles"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View renders the current state. It reads m and never mutates it.
func (m Model) View() string {
	switch m.State.Phase {
	case PhaseLoading:
		return render.Loading()
	case PhaseFailed:
		return m.renderFailure()
	}

	header := render.Heading(m.State.Report.Counts) + "\n" + render.Rule(m.Width)

	body := ""
	if m.Table != nil {
		body = m.Table.View()
		if layout := m.calculateLayout(); layout.inspectorWidth > 0 {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.Inspector.View())
		}
	}

	return header + "\n" + body + "\n" + m.renderFooter()
}

// renderFooter renders the legacy badge note, if any, and the help line
func (m Model) renderFooter() string {
	var lines []string
	if n := m.State.Report.LegacyPendingRows; n > 0 {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate(fmt.Sprintf(render.LegacyBadgeNote, n), m.Width)))
	}
	lines = append(lines, m.Help.View(Keys))
	return strings.Join(lines, "\n")
}

func (m Model) renderFailure() string {
	msg := styles.ErrorStyle.Render(render.Failure(m.State.Err))
	return msg + "\n\n" + m.Help.ShortHelpView([]key.Binding{Keys.Quit})
}
