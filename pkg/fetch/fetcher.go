package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/logger"
	"rozhodnutia/pkg/retry"
)

// Getter performs one GET and returns the decoded body and status code
type Getter interface {
	GetText(ctx context.Context, url string) (string, int, error)
}

// Failure describes one failed fetch attempt
type Failure struct {
	URL        string
	StatusCode int
	Attempt    int
	Err        error
}

// Acknowledger blocks until an operator allows the next attempt
type Acknowledger interface {
	Acknowledge(ctx context.Context, failure Failure) error
}

// Options holds the fetch retry policy
type Options struct {
	// MaxAttempts bounds attempts per URL outside wait mode
	MaxAttempts int
	// RetryDelay is the pause between attempts outside wait mode
	RetryDelay time.Duration
	// Backoff overrides the constant RetryDelay when set
	Backoff retry.BackoffStrategy
	// WaitForOperator retries without limit, pausing on Acknowledger
	WaitForOperator bool
	Acknowledger    Acknowledger
}

// DefaultOptions returns five attempts ten seconds apart
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 5,
		RetryDelay:  10 * time.Second,
	}
}

// Fetcher retrieves listing pages from an unreliable server
type Fetcher struct {
	getter Getter
	opts   Options
	logger logger.Logger
}

// New creates a fetcher. Wait mode requires an Acknowledger.
func New(getter Getter, opts Options, log logger.Logger) (*Fetcher, error) {
	if getter == nil {
		return nil, errors.New("fetch: getter is required")
	}
	if opts.WaitForOperator && opts.Acknowledger == nil {
		return nil, errors.New("fetch: wait mode requires an acknowledger")
	}
	if !opts.WaitForOperator && opts.MaxAttempts <= 0 {
		return nil, fmt.Errorf("fetch: max attempts must be positive, got %d", opts.MaxAttempts)
	}
	if opts.Backoff == nil {
		opts.Backoff = &retry.ConstantBackoff{Delay: opts.RetryDelay}
	}

	return &Fetcher{
		getter: getter,
		opts:   opts,
		logger: logger.OrNop(log).WithField("component", "fetcher"),
	}, nil
}

// Fetch returns the body of url once a request answers 200. Outside wait
// mode it fails with an error matching errors.ErrFetchExhausted after
// MaxAttempts failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var (
		body       string
		lastStatus int
	)

	cfg := &retry.Config{
		MaxAttempts: f.opts.MaxAttempts,
		Backoff:     f.opts.Backoff,
		Context:     ctx,
		Logger:      f.logger,
		RetryIf: func(err error) bool {
			return ctx.Err() == nil
		},
		OnFailure: func(attempt, remaining int, err error, delay time.Duration) {
			f.logFailure(url, attempt, remaining, lastStatus, err, delay)
		},
	}

	if f.opts.WaitForOperator {
		cfg.MaxAttempts = 0
		cfg.Pause = func(ctx context.Context, attempt int, err error) error {
			return f.opts.Acknowledger.Acknowledge(ctx, Failure{
				URL:        url,
				StatusCode: lastStatus,
				Attempt:    attempt,
				Err:        err,
			})
		}
	}

	err := retry.Do(func() error {
		text, status, err := f.getter.GetText(ctx, url)
		lastStatus = status
		if err != nil {
			return err
		}
		body = text
		return nil
	}, cfg)

	if err == nil {
		return body, nil
	}
	if errors.Is(err, retry.ErrMaxAttempts) {
		return "", fmt.Errorf("%w: %s after %d attempts: %w", errs.ErrFetchExhausted, url, f.opts.MaxAttempts, err)
	}
	return "", err
}

func (f *Fetcher) logFailure(url string, attempt, remaining, status int, err error, delay time.Duration) {
	fields := map[string]interface{}{
		"url":         url,
		"status_code": status,
		"attempt":     attempt,
		"error":       err.Error(),
	}

	if f.opts.WaitForOperator {
		f.logger.WarnWithFields("Failed to fetch, waiting for operator", fields)
		return
	}

	fields["attempts_remaining"] = remaining
	if remaining > 0 {
		fields["retry_in"] = delay
		f.logger.WarnWithFields("Failed to fetch, retrying", fields)
		return
	}
	f.logger.ErrorWithFields("Failed to fetch, no attempts left", fields)
}
