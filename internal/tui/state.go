package tui

import (
	"github.com/addonindex/idxstat/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// Phase is the lifecycle position of the view
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "loading"
	}
}

// ViewState is everything the status view renders from. It starts in
// PhaseLoading and moves at most once, to PhaseLoaded or PhaseFailed.
type ViewState struct {
	Phase   Phase
	Report  service.Report
	Err     error
	FetchID string
}

// NewViewState returns the loading state for the fetch with the given id
func NewViewState(fetchID string) ViewState {
	return ViewState{Phase: PhaseLoading, FetchID: fetchID}
}

// Apply returns the state after msg. Results for another fetch and any
// result arriving after a terminal phase leave the state unchanged.
func (s ViewState) Apply(msg tea.Msg) ViewState {
	if s.Phase != PhaseLoading {
		return s
	}

	switch msg := msg.(type) {
	case StatusLoadedMsg:
		if msg.FetchID != s.FetchID {
			return s
		}
		s.Phase = PhaseLoaded
		s.Report = msg.Report
		s.Err = nil
	case ErrMsg:
		if msg.FetchID != s.FetchID {
			return s
		}
		s.Phase = PhaseFailed
		s.Err = msg.Err
	}
	return s
}

// Terminal reports whether the fetch has resolved
func (s ViewState) Terminal() bool {
	return s.Phase != PhaseLoading
}
