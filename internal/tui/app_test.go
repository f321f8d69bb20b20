package tui

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/addonindex/idxstat/internal/domain"
	"github.com/addonindex/idxstat/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	resp  *domain.StatusResponse
	err   error
	calls int
}

func (s *stubSource) FetchStatus(_ context.Context) (*domain.StatusResponse, error) {
	s.calls++
	return s.resp, s.err
}

func payload(t *testing.T, body string) *domain.StatusResponse {
	t.Helper()
	var resp domain.StatusResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

func newTestModel(src *stubSource, policy service.RowBadgePolicy) Model {
	return NewModel(service.NewStatusService(src, policy, nil), true, nil)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// load runs the Init fetch and feeds its result back into the model
func load(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.Init()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

func TestLoadingViewIsPlaceholder(t *testing.T) {
	m := newTestModel(&stubSource{}, service.BadgeLegacy)
	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, "Loading...", m.View())
}

func TestInitFetchesOnce(t *testing.T) {
	src := &stubSource{resp: payload(t, `{"toIndex":{"toIndex":[{"uid":"a"}]},"statuses":{}}`)}
	m := load(t, newTestModel(src, service.BadgeLegacy))

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, PhaseLoaded, m.State.Phase)
	assert.Error(t, m.ctx.Err(), "fetch context is released once resolved")
}

func TestLoadedViewShowsSummaryAndRows(t *testing.T) {
	src := &stubSource{resp: payload(t, `{
		"toIndex":{"toIndex":[{"uid":"idgen"},{"uid":"reporting"}]},
		"statuses":{"idgen":{"error":"bad manifest"}}
	}`)}
	m := newTestModel(src, service.BadgeStrict)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = load(t, m)

	view := m.View()
	assert.Contains(t, view, "Indexing Status")
	assert.Contains(t, view, "Error: 1")
	assert.Contains(t, view, "Pending: 1")
	assert.NotContains(t, view, "Okay: ")
	assert.Contains(t, view, "idgen")
	assert.Contains(t, view, "reporting")
	assert.Contains(t, view, `"error": "bad manifest"`, "record pane shows the selected row")
}

func TestLegacyNoteShownForPendingRows(t *testing.T) {
	src := &stubSource{resp: payload(t, `{"toIndex":{"toIndex":[{"uid":"a"}]},"statuses":{}}`)}
	m := load(t, newTestModel(src, service.BadgeLegacy))

	assert.Equal(t, 1, m.State.Report.LegacyPendingRows)
	assert.Contains(t, m.View(), "ui.row_badges=legacy")
}

func TestFailedView(t *testing.T) {
	src := &stubSource{err: &domain.FetchError{
		Kind:       domain.FailureNetwork,
		Source:     "http://status",
		StatusCode: 500,
		Err:        domain.ErrUnexpectedStatus,
	}}
	m := load(t, newTestModel(src, service.BadgeLegacy))

	assert.Equal(t, PhaseFailed, m.State.Phase)
	view := m.View()
	assert.Contains(t, view, "Error loading status (network failure)")
	assert.Contains(t, view, "HTTP 500")
	assert.NotContains(t, view, "Loading...")
}

func TestStaleResultIgnored(t *testing.T) {
	m := newTestModel(&stubSource{}, service.BadgeLegacy)

	m, _ = update(t, m, StatusLoadedMsg{FetchID: "someone-else"})
	assert.Equal(t, PhaseLoading, m.State.Phase)
	assert.Equal(t, "Loading...", m.View())
}

func TestQuitCancelsFetchAndDropsLateResult(t *testing.T) {
	m := newTestModel(&stubSource{}, service.BadgeLegacy)
	id := m.State.FetchID

	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.ErrorIs(t, m.ctx.Err(), context.Canceled)

	m, _ = update(t, m, StatusLoadedMsg{FetchID: id})
	assert.Equal(t, PhaseLoading, m.State.Phase)
}

func TestCancelledFetchIsNotAFailure(t *testing.T) {
	m := newTestModel(&stubSource{}, service.BadgeLegacy)

	m, _ = update(t, m, ErrMsg{FetchID: m.State.FetchID, Err: context.Canceled})
	assert.Equal(t, PhaseLoading, m.State.Phase)
}

func TestFilterNarrowsRows(t *testing.T) {
	src := &stubSource{resp: payload(t, `{
		"toIndex":{"toIndex":[{"uid":"idgen"},{"uid":"reporting"},{"uid":"other"}]},
		"statuses":{}
	}`)}
	m := newTestModel(src, service.BadgeStrict)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = load(t, m)
	require.Equal(t, 3, m.Table.ItemCount())

	m, _ = update(t, m, runes("/"))
	assert.True(t, m.Table.IsFilterTyping())
	for _, r := range "idg" {
		m, _ = update(t, m, runes(string(r)))
	}
	assert.Equal(t, 1, m.Table.ItemCount())
	row, ok := m.Table.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, "idgen", row.UID)

	// q is text while typing
	m, _ = update(t, m, runes("q"))
	assert.False(t, m.quitting)
	assert.Equal(t, PhaseLoaded, m.State.Phase)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Table.IsFiltering())
	assert.Equal(t, 3, m.Table.ItemCount())
}

func TestNavigationMovesSelection(t *testing.T) {
	src := &stubSource{resp: payload(t, `{"toIndex":{"toIndex":[{"uid":"a"},{"uid":"b"},{"uid":"c"}]},"statuses":{}}`)}
	m := load(t, newTestModel(src, service.BadgeLegacy))

	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 1, m.Table.SelectedIndex())
	m, _ = update(t, m, runes("G"))
	assert.Equal(t, 2, m.Table.SelectedIndex())
	m, _ = update(t, m, runes("g"))
	assert.Equal(t, 0, m.Table.SelectedIndex())
}

func TestToggleInspector(t *testing.T) {
	src := &stubSource{resp: payload(t, `{"toIndex":{"toIndex":[{"uid":"a"}]},"statuses":{"a":{"indexed":true}}}`)}
	m := newTestModel(src, service.BadgeLegacy)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m = load(t, m)
	assert.Contains(t, m.View(), `"indexed": true`)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.ShowInspector)
	assert.NotContains(t, m.View(), `"indexed": true`)
}

func TestResultAfterResolutionIgnored(t *testing.T) {
	src := &stubSource{resp: payload(t, `{"toIndex":{"toIndex":[{"uid":"a"}]},"statuses":{}}`)}
	m := load(t, newTestModel(src, service.BadgeStrict))
	require.Equal(t, PhaseLoaded, m.State.Phase)
	table := m.Table

	m, _ = update(t, m, ErrMsg{FetchID: m.State.FetchID, Err: domain.ErrServerOffline})
	assert.Equal(t, PhaseLoaded, m.State.Phase)
	assert.NoError(t, m.State.Err)
	assert.Same(t, table, m.Table, "table is not rebuilt")
}
