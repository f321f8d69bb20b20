package indexstatus

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/addonindex/idxstat/internal/domain"
)

// FileSource reads a saved status payload from disk
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source backed by path
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger}
}

// FetchStatus reads and validates the file
func (f *FileSource) FetchStatus(ctx context.Context) (*domain.StatusResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := os.ReadFile(f.path)
	if err != nil {
		f.logger.Error("status file unreadable", "path", f.path, "error", err)
		return nil, &domain.FetchError{
			Kind:   domain.FailureNetwork,
			Source: f.path,
			Err:    fmt.Errorf("failed to read status file: %w", err),
		}
	}

	resp, err := DecodeStatus(body)
	if err != nil {
		f.logger.Error("status file rejected", "path", f.path, "error", err)
		return nil, failureFor(f.path, 0, err)
	}

	f.logger.Info("status loaded from file", "path", f.path, "items", len(resp.Items()))
	return resp, nil
}
