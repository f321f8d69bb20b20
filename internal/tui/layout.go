package tui

import "github.com/charmbracelet/lipgloss"

// columnLayout holds calculated widths and the shared content height
type columnLayout struct {
	tableWidth     int
	inspectorWidth int // 0 if not shown
	contentHeight  int
}

// calculateLayout splits the window between table and record pane
func (m Model) calculateLayout() columnLayout {
	footerHeight := lipgloss.Height(m.renderFooter())
	layout := columnLayout{
		tableWidth:    m.Width,
		contentHeight: max(m.Height-HeaderHeight-footerHeight, 5),
	}

	if m.ShowInspector && m.Width >= MinColumnWidth+MinInspectorWidth {
		layout.tableWidth = max(m.Width*TableColumnPercent/100, MinColumnWidth)
		layout.inspectorWidth = m.Width - layout.tableWidth
	}
	return layout
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 || m.Table == nil {
		return
	}

	layout := m.calculateLayout()
	m.Table.SetSize(layout.tableWidth, layout.contentHeight)
	if layout.inspectorWidth > 0 {
		m.Inspector.SetSize(layout.inspectorWidth, layout.contentHeight)
	}
}
