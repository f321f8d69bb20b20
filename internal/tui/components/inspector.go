package components

import (
	"strings"

	"github.com/addonindex/idxstat/internal/render"
	"github.com/addonindex/idxstat/internal/service"
	"github.com/addonindex/idxstat/internal/tui/styles"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Layout constants for inspector
const (
	InspectorBorderHeight = 2
	InspectorHeaderLines  = 2 // title + blank line
)

// Inspector displays the raw record of the selected row
type Inspector struct {
	row    *service.Row
	width  int
	height int
	vp     viewport.Model
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	vp := viewport.New(0, 0)
	// j/k belong to the table; the record scrolls by page only
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown", "J")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "K")),
	}
	return Inspector{vp: vp}
}

// SetRow sets the row to display
func (i *Inspector) SetRow(row service.Row) {
	if i.row != nil && i.row.UID == row.UID && i.row.State == row.State {
		return
	}
	i.row = &row
	i.vp.SetContent(i.body())
	i.vp.GotoTop() // Reset scroll on row change
}

// Clear removes the displayed row
func (i *Inspector) Clear() {
	i.row = nil
	i.vp.SetContent("")
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	i.vp.Width = max(width-BorderWidth-1, 1)
	i.vp.Height = max(height-InspectorBorderHeight-InspectorHeaderLines, 1)
	if i.row != nil {
		i.vp.SetContent(i.body())
	}
}

// Update scrolls the record
func (i Inspector) Update(msg tea.Msg) (Inspector, tea.Cmd) {
	var cmd tea.Cmd
	i.vp, cmd = i.vp.Update(msg)
	return i, cmd
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder
	frameW, frameH := style.GetFrameSize()

	var content string
	if i.row == nil {
		content = styles.DimStyle.Render("Nothing selected")
	} else {
		content = i.header() + "\n\n" + i.vp.View()
	}

	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(content)
}

func (i Inspector) header() string {
	title := styles.TitleStyle.Render(styles.Truncate(i.row.UID, max(i.width-BorderWidth-len(i.row.Badge.String())-4, 5)))
	return title + " " + render.RowBadge(i.row.Badge)
}

func (i Inspector) body() string {
	if i.row == nil {
		return ""
	}
	if !i.row.HasRecord {
		return styles.DimStyle.Render("No status record yet")
	}

	// Wrap long lines so nothing is clipped horizontally
	width := max(i.vp.Width, 1)
	var lines []string
	for _, line := range strings.Split(i.row.RecordJSON, "\n") {
		for len([]rune(line)) > width {
			r := []rune(line)
			lines = append(lines, string(r[:width]))
			line = string(r[width:])
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
