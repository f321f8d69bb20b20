package tui

import (
	"github.com/addonindex/idxstat/internal/service"
)

// Message types for the TUI. Fetch results carry the id of the fetch that
// produced them so a late reply from an abandoned fetch can be dropped.

// ErrMsg represents a failed fetch
type ErrMsg struct {
	FetchID string
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap exposes the underlying fetch error
func (e ErrMsg) Unwrap() error {
	return e.Err
}

// StatusLoadedMsg signals that the status report is ready
type StatusLoadedMsg struct {
	FetchID string
	Report  service.Report
}
