package indexstatus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/addonindex/idxstat/internal/config"
	"github.com/addonindex/idxstat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"toIndex": {"toIndex": [{"uid": "reporting-module"}, {"uid": "htmlformentry"}]},
	"statuses": {"reporting-module": {"error": "404 from bintray"}}
}`

func newServer(t *testing.T, status int, body string, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchStatusSuccess(t *testing.T) {
	srv := newServer(t, http.StatusOK, samplePayload, func(r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, config.DefaultStatusPath, r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))
	})

	client := NewClient(srv.URL+config.DefaultStatusPath, Credentials{}, time.Second, nil)
	resp, err := client.FetchStatus(context.Background())
	require.NoError(t, err)

	require.Len(t, resp.Items(), 2)
	assert.Equal(t, "reporting-module", resp.Items()[0].UID)
	assert.Equal(t, domain.StateError, resp.Classify("reporting-module"))
	assert.Equal(t, domain.StatePending, resp.Classify("htmlformentry"))
}

func TestFetchStatusSendsCredentials(t *testing.T) {
	srv := newServer(t, http.StatusOK, samplePayload, func(r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
	})
	_, err := NewClient(srv.URL, Credentials{Token: "s3cret"}, time.Second, nil).FetchStatus(context.Background())
	require.NoError(t, err)

	srv = newServer(t, http.StatusOK, samplePayload, func(r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "pw", pass)
	})
	_, err = NewClient(srv.URL, Credentials{Username: "admin", Password: "pw"}, time.Second, nil).FetchStatus(context.Background())
	require.NoError(t, err)
}

func TestFetchStatusFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		kind     domain.FailureKind
	}{
		{"server error", http.StatusBadGateway, "upstream down", domain.ErrUnexpectedStatus, domain.FailureNetwork},
		{"not found", http.StatusNotFound, "", domain.ErrUnexpectedStatus, domain.FailureNetwork},
		{"unauthorized", http.StatusUnauthorized, "", domain.ErrAuthFailed, domain.FailureNetwork},
		{"html body", http.StatusOK, "<html>oops</html>", domain.ErrInvalidJSON, domain.FailureParse},
		{"truncated json", http.StatusOK, `{"toIndex": {`, domain.ErrInvalidJSON, domain.FailureParse},
		{"empty body", http.StatusOK, "", domain.ErrInvalidJSON, domain.FailureParse},
		{"array payload", http.StatusOK, `[1,2,3]`, domain.ErrMalformedPayload, domain.FailureMalformed},
		{"missing statuses", http.StatusOK, `{"toIndex":{"toIndex":[]}}`, domain.ErrMalformedPayload, domain.FailureMalformed},
		{"wrong item type", http.StatusOK, `{"toIndex":{"toIndex":["a"]},"statuses":{}}`, domain.ErrMalformedPayload, domain.FailureMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body, nil)
			_, err := NewClient(srv.URL, Credentials{}, time.Second, nil).FetchStatus(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, domain.FailureKindOf(err))

			var fe *domain.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, srv.URL, fe.Source)
		})
	}
}

func TestFetchStatusResponseTooLarge(t *testing.T) {
	srv := newServer(t, http.StatusOK, samplePayload, nil)
	client := NewClient(srv.URL, Credentials{}, time.Second, nil)
	client.maxBody = 16

	_, err := client.FetchStatus(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResponseTooLarge)
	assert.NotErrorIs(t, err, domain.ErrInvalidJSON)
	assert.Equal(t, domain.FailureNetwork, domain.FailureKindOf(err))

	client.maxBody = int64(len(samplePayload))
	resp, err := client.FetchStatus(context.Background())
	require.NoError(t, err, "a body exactly at the limit is accepted")
	assert.Len(t, resp.Items(), 2)
}

func TestFetchStatusServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, Credentials{}, time.Second, nil).FetchStatus(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, domain.FailureNetwork, domain.FailureKindOf(err))
}

func TestFetchStatusCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, Credentials{}, 5*time.Second, nil).FetchStatus(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrServerOffline)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "status.json")
	require.NoError(t, os.WriteFile(good, []byte(samplePayload), 0644))

	resp, err := NewFileSource(good, nil).FetchStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{Error: 1, Pending: 1}, resp.Counts())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	_, err = NewFileSource(bad, nil).FetchStatus(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidJSON)

	_, err = NewFileSource(filepath.Join(dir, "missing.json"), nil).FetchStatus(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewSource(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := NewSource(cfg, nil)
	assert.Error(t, err, "fetch strategy needs a URL")

	cfg.Server.URL = "http://localhost:9"
	src, err := NewSource(cfg, nil)
	require.NoError(t, err)
	client, ok := src.(*Client)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9/api/v1/indexingstatus", client.URL())

	cfg.Source.Strategy = config.StrategyLocal
	_, err = NewSource(cfg, nil)
	assert.Error(t, err, "local strategy needs a file")

	cfg.Source.File = "status.json"
	src, err = NewSource(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)
}

func TestProbe(t *testing.T) {
	srv := newServer(t, http.StatusOK, samplePayload, nil)
	n, err := Probe(context.Background(), srv.URL, Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	locked := newServer(t, http.StatusUnauthorized, "", nil)
	_, err = Probe(context.Background(), locked.URL, Credentials{})
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	_, err = Probe(context.Background(), "ftp://example.org", Credentials{})
	assert.Error(t, err)
}
