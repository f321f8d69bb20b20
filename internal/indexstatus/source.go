package indexstatus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/addonindex/idxstat/internal/config"
	"github.com/addonindex/idxstat/internal/domain"
)

const probeTimeout = 10 * time.Second

// Source provides the indexing status payload
type Source interface {
	FetchStatus(ctx context.Context) (*domain.StatusResponse, error)
}

// NewSource creates the Source selected by the configured strategy
func NewSource(cfg *config.Config, logger *slog.Logger) (Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	switch cfg.Source.Strategy {
	case config.StrategyLocal:
		if cfg.Source.File == "" {
			return nil, fmt.Errorf("source.file is required for the local strategy")
		}
		return NewFileSource(cfg.Source.File, logger), nil

	case config.StrategyFetch, "":
		if cfg.Server.URL == "" {
			return nil, fmt.Errorf("server URL is required")
		}
		creds := Credentials{
			Token:    cfg.Server.Token,
			Username: cfg.Server.Username,
			Password: cfg.Server.Password,
		}
		return NewClient(cfg.StatusURL(), creds, cfg.Server.Timeout, logger), nil

	default:
		return nil, fmt.Errorf("unknown source strategy: %s", cfg.Source.Strategy)
	}
}

// Probe checks that statusURL serves an indexing status payload. It
// returns domain.ErrAuthFailed (wrapped) when a credential is needed.
func Probe(ctx context.Context, statusURL string, creds Credentials) (int, error) {
	if !strings.HasPrefix(statusURL, "http://") && !strings.HasPrefix(statusURL, "https://") {
		return 0, fmt.Errorf("URL must start with http:// or https://")
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client := NewClient(statusURL, creds, probeTimeout, slog.Default())
	resp, err := client.FetchStatus(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("probe timed out")
		}
		return 0, err
	}
	return len(resp.Items()), nil
}
