package supcourt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/ratelimit"
)

// ClientOptions configures the HTTP client
type ClientOptions struct {
	UserAgent string
	// Timeout bounds one listing request including its body
	Timeout time.Duration
	// DownloadTimeout bounds one file download; zero means no limit
	DownloadTimeout time.Duration
	// Limiter paces every request; nil means unlimited
	Limiter ratelimit.Limiter
	// Transport overrides the underlying round tripper, mainly for tests
	Transport http.RoundTripper
}

// Client talks to the court site. Each call performs exactly one request.
type Client struct {
	http            *resty.Client
	timeout         time.Duration
	downloadTimeout time.Duration
	logger          logger.Logger
}

// NewClient creates a new court site client
func NewClient(opts ClientOptions, log logger.Logger) *Client {
	log = logger.OrNop(log).WithField("component", "supcourt")

	httpClient := resty.New()
	if opts.Transport != nil {
		httpClient.SetTransport(opts.Transport)
	}
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}
	httpClient.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpClient.SetLogger(restyLogger{log})

	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Client{
		http:            httpClient,
		timeout:         opts.Timeout,
		downloadTimeout: opts.DownloadTimeout,
		logger:          log,
	}
}

// withTimeout derives a request context; a zero timeout keeps ctx as is
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// GetText fetches url and returns its body decoded to UTF-8. Any status
// other than 200 is an error carrying that status.
func (c *Client) GetText(ctx context.Context, url string) (string, int, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		logger.LogRequest(c.logger, http.MethodGet, url, 0, 0)
		return "", 0, errs.New(errs.ErrorTypeNetwork, 0, err, "GET %s: %v", url, err)
	}

	body := resp.RawBody()
	defer body.Close()

	status := resp.StatusCode()
	logger.LogRequest(c.logger, http.MethodGet, url, status, resp.Time().Milliseconds())

	if status != http.StatusOK {
		_, _ = io.Copy(io.Discard, body)
		return "", status, errs.New(errs.ErrorTypeHTTPStatus, status, errs.ErrUnexpectedStatus,
			"GET %s returned %d", url, status)
	}

	reader, err := charset.NewReader(body, resp.Header().Get("Content-Type"))
	if err != nil {
		return "", status, errs.New(errs.ErrorTypeParsing, status, err, "decoding %s: %v", url, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", status, errs.New(errs.ErrorTypeNetwork, status, err, "reading %s: %v", url, err)
	}

	return string(data), status, nil
}

// Download streams the body of url into dest whatever the status code and
// returns that status. Callers decide what to do with a non-200 file.
// Only DownloadTimeout bounds the transfer, so large files are not cut off
// by the listing timeout.
func (c *Client) Download(ctx context.Context, url, dest string) (int, error) {
	ctx, cancel := withTimeout(ctx, c.downloadTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(url)
	if err != nil {
		status := 0
		if resp != nil && resp.RawResponse != nil {
			status = resp.StatusCode()
		}
		logger.LogRequest(c.logger, http.MethodGet, url, status, 0)
		return status, errs.New(errs.ErrorTypeNetwork, status, err, "downloading %s: %v", url, err)
	}

	logger.LogRequest(c.logger, http.MethodGet, url, resp.StatusCode(), resp.Time().Milliseconds())
	return resp.StatusCode(), nil
}

// restyLogger routes resty's internal messages through our logger
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
