package tui

import (
	"context"

	"github.com/addonindex/idxstat/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// Command factories for async operations

// FetchStatusCmd loads the status report once. The context is owned by the
// model and cancelled on quit; the request timeout lives in the client.
func FetchStatusCmd(ctx context.Context, svc *service.StatusService, fetchID string) tea.Cmd {
	return func() tea.Msg {
		report, err := svc.Load(ctx)
		if err != nil {
			return ErrMsg{FetchID: fetchID, Err: err, Context: "loading status"}
		}
		return StatusLoadedMsg{FetchID: fetchID, Report: report}
	}
}
