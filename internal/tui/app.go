package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/addonindex/idxstat/internal/service"
	"github.com/addonindex/idxstat/internal/tui/components"
	"github.com/addonindex/idxstat/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Layout proportions for the table and record pane
const (
	TableColumnPercent = 45

	MinColumnWidth    = 20
	MinInspectorWidth = 30

	// Vertical layout: heading + rule
	HeaderHeight = 2

	// Used until the first WindowSizeMsg arrives
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Fetch lifecycle, the single source for what View draws
	State ViewState

	// Services
	StatusSvc *service.StatusService

	// UI Components, built once the report arrives
	Table     *components.StatusTable
	Inspector components.Inspector
	Help      help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	ShowInspector bool

	ctx      context.Context
	cancel   context.CancelFunc
	quitting bool
	logger   *slog.Logger
}

// NewModel creates a model that fetches once on Init
func NewModel(statusSvc *service.StatusService, showInspector bool, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	return Model{
		State:         NewViewState(uuid.NewString()),
		StatusSvc:     statusSvc,
		Inspector:     components.NewInspector(),
		Help:          h,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		ShowInspector: showInspector,
		ctx:           ctx,
		cancel:        cancel,
		logger:        logger,
	}
}

// Init issues the one status fetch
func (m Model) Init() tea.Cmd {
	m.logger.Debug("fetching status", "fetch_id", m.State.FetchID)
	return FetchStatusCmd(m.ctx, m.StatusSvc, m.State.FetchID)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case StatusLoadedMsg, ErrMsg:
		return m.handleFetchResult(msg), nil
	}

	// Cursor blink and other input plumbing for the filter box
	if m.Table != nil && m.Table.IsFilterTyping() {
		var cmd tea.Cmd
		m.Table, cmd = m.Table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFetchResult(msg tea.Msg) Model {
	if m.quitting {
		return m
	}
	if e, ok := msg.(ErrMsg); ok && errors.Is(e.Err, context.Canceled) {
		m.logger.Debug("discarding cancelled fetch", "fetch_id", e.FetchID)
		return m
	}

	if m.State.Terminal() {
		m.logger.Debug("discarding result after resolution", "phase", m.State.Phase.String())
		return m
	}
	m.State = m.State.Apply(msg)
	if !m.State.Terminal() {
		m.logger.Debug("discarding stale fetch result", "fetch_id", m.State.FetchID)
		return m
	}

	// Terminal; release the fetch context
	m.cancel()

	switch m.State.Phase {
	case PhaseLoaded:
		report := m.State.Report
		m.logger.Info("status loaded",
			"items", len(report.Rows),
			"okay", report.Counts.Okay,
			"error", report.Counts.Error,
			"pending", report.Counts.Pending)
		m.Table = components.NewStatusTable(fmt.Sprintf("Items (%d)", len(report.Rows)), report.Rows)
		m.updateLayout()
		m.updateInspector()
	case PhaseFailed:
		m.logger.Error("status fetch failed", "error", m.State.Err)
	}
	return m
}

// quit cancels any in-flight fetch and stops the program
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

// updateInspector points the record pane at the table selection
func (m *Model) updateInspector() {
	if m.Table == nil {
		return
	}
	if row, ok := m.Table.SelectedRow(); ok {
		m.Inspector.SetRow(row)
		return
	}
	m.Inspector.Clear()
}
