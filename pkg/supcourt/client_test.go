package supcourt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/logger"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newTestClient(log logger.Logger) *Client {
	return NewClient(ClientOptions{UserAgent: "rozhodnutia-test", Timeout: 5 * time.Second}, log)
}

func TestGetText(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<table class=\"rozlist\"></table>"))
	}))
	defer server.Close()

	body, status, err := newTestClient(nil).GetText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `<table class="rozlist"></table>`, body)
	assert.Equal(t, "rozhodnutia-test", gotUA)
}

func TestGetTextDecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1250")
		// "Kolégium" in windows-1250
		_, _ = w.Write([]byte{'K', 'o', 'l', 0xE9, 'g', 'i', 'u', 'm'})
	}))
	defer server.Close()

	body, _, err := newTestClient(nil).GetText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Kolégium", body)
}

func TestGetTextNon200(t *testing.T) {
	for _, code := range []int{http.StatusNoContent, http.StatusNotFound, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))
			defer server.Close()

			log := logger.NewTestLogger()
			_, status, err := newTestClient(log).GetText(context.Background(), server.URL)
			require.Error(t, err)
			assert.Equal(t, code, status)
			assert.ErrorIs(t, err, errs.ErrUnexpectedStatus)
			var typed *errs.Error
			require.True(t, errors.As(err, &typed))
			assert.Equal(t, code, typed.Code)
			assert.True(t, log.HasMessage("unexpected status"))
		})
	}
}

func TestGetTextNetworkError(t *testing.T) {
	refused := errors.New("connection refused")
	c := NewClient(ClientOptions{
		Transport: &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
			return nil, refused
		}},
	}, nil)

	_, status, err := c.GetText(context.Background(), "http://court.invalid/rozhodnutia/")
	require.Error(t, err)
	assert.Equal(t, 0, status)
	assert.ErrorIs(t, err, refused)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.ErrorTypeNetwork, typed.Type)
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4 decision"))
	}))
	defer server.Close()

	dir := t.TempDir()
	c := newTestClient(nil)

	dest := filepath.Join(dir, "ok.pdf")
	status, err := c.Download(context.Background(), server.URL+"/ok.pdf", dest)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 decision", string(data))

	// non-200 bodies are still written; the caller removes them
	dest = filepath.Join(dir, "missing.pdf")
	status, err = c.Download(context.Background(), server.URL+"/missing.pdf", dest)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.FileExists(t, dest)
}

func newSlowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 "))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		time.Sleep(delay)
		_, _ = w.Write([]byte("large decision"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownloadIgnoresListingTimeout(t *testing.T) {
	server := newSlowServer(t, 300*time.Millisecond)
	c := NewClient(ClientOptions{Timeout: 100 * time.Millisecond}, nil)

	_, _, err := c.GetText(context.Background(), server.URL+"/page")
	require.Error(t, err, "listing requests are bounded by Timeout")

	dest := filepath.Join(t.TempDir(), "large.pdf")
	status, err := c.Download(context.Background(), server.URL+"/large.pdf", dest)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 large decision", string(data))
}

func TestDownloadTimeout(t *testing.T) {
	server := newSlowServer(t, 300*time.Millisecond)
	c := NewClient(ClientOptions{Timeout: 5 * time.Second, DownloadTimeout: 100 * time.Millisecond}, nil)

	_, err := c.Download(context.Background(), server.URL+"/large.pdf", filepath.Join(t.TempDir(), "large.pdf"))
	require.Error(t, err)
	var typed *errs.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, errs.ErrorTypeNetwork, typed.Type)
}

func TestRequestsWaitForLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewClient(ClientOptions{Limiter: blockingLimiter{}}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := c.GetText(ctx, server.URL)
	assert.Error(t, err)
}

type blockingLimiter struct{}

func (blockingLimiter) Allow() bool { return false }

func (blockingLimiter) Wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
