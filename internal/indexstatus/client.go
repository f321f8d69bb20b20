package indexstatus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/addonindex/idxstat/internal/domain"
	"github.com/google/uuid"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "idxstat/1.0"

	// maxBodyBytes bounds how much of a response we are willing to buffer
	maxBodyBytes = 32 << 20
)

// Credentials are optional; the endpoint is normally public
type Credentials struct {
	Token    string
	Username string
	Password string
}

// Client fetches the indexing status over HTTP
type Client struct {
	statusURL  string
	creds      Credentials
	httpClient *http.Client
	maxBody    int64
	logger     *slog.Logger
}

// NewClient creates a client for the full status endpoint URL
func NewClient(statusURL string, creds Credentials, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		statusURL: statusURL,
		creds:     creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBody: maxBodyBytes,
		logger:  logger,
	}
}

// URL returns the endpoint this client reads
func (c *Client) URL() string {
	return c.statusURL
}

// FetchStatus issues one GET against the status endpoint
func (c *Client) FetchStatus(ctx context.Context) (*domain.StatusResponse, error) {
	body, status, err := c.doRequest(ctx)
	if err != nil {
		return nil, failureFor(c.statusURL, status, err)
	}

	resp, err := DecodeStatus(body)
	if err != nil {
		c.logger.Error("status payload rejected", "url", c.statusURL, "error", err, "bodyLen", len(body))
		return nil, failureFor(c.statusURL, status, err)
	}

	c.logger.Info("status fetched", "url", c.statusURL, "items", len(resp.Items()), "records", len(resp.Statuses))
	return resp, nil
}

// doRequest performs the GET and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	switch {
	case c.creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	case c.creds.Username != "":
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	c.logger.Debug("status request", "url", c.statusURL, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, 0, err
		}
		c.logger.Error("status request failed", "request_id", requestID, "error", err)
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	// One byte past the limit tells a full body from a cut one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %v", domain.ErrServerOffline, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn("status request rejected", "request_id", requestID, "status", resp.StatusCode)
		return nil, resp.StatusCode, domain.ErrAuthFailed
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("status request error", "request_id", requestID, "status", resp.StatusCode, "body", truncate(string(body), 512))
		return nil, resp.StatusCode, domain.ErrUnexpectedStatus
	}

	if int64(len(body)) > c.maxBody {
		c.logger.Error("status response too large", "request_id", requestID, "limit_bytes", c.maxBody)
		return nil, resp.StatusCode, fmt.Errorf("%w: more than %d bytes", domain.ErrResponseTooLarge, c.maxBody)
	}

	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
