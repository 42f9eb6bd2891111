package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "rozhodnutia/pkg/errors"
	"rozhodnutia/pkg/logger"
)

// ErrMaxAttempts is wrapped by Do once every permitted attempt has failed
var ErrMaxAttempts = errors.New("max retry attempts exceeded")

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// PauseFunc replaces the backoff delay between attempts. It blocks until the
// next attempt may start, or returns an error to stop retrying.
type PauseFunc func(ctx context.Context, attempt int, err error) error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff strategy to use
	Backoff BackoffStrategy
	// Pause, when set, is used between attempts instead of Backoff
	Pause PauseFunc
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnFailure is called after every retryable failure, including the last.
	// remaining is -1 when attempts are unlimited.
	OnFailure func(attempt, remaining int, err error, delay time.Duration)
	// Context for cancellation
	Context context.Context
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig returns the listing fetch policy: five attempts, ten seconds apart
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

// DefaultRetryIf retries typed transient errors and anything untyped,
// but never a cancelled context.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var typed *errs.Error
	if errors.As(err, &typed) {
		return errs.IsRetryable(typed.Type)
	}

	return true
}

// Do executes op until it succeeds, a non-retryable error occurs, the
// attempt budget is spent or the context is cancelled. No delay follows
// the final failed attempt.
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}
	log := logger.OrNop(cfg.Logger)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := op()
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if !retryIf(err) {
			log.DebugWithFields("error is not retryable", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}

		remaining := -1
		if cfg.MaxAttempts > 0 {
			remaining = cfg.MaxAttempts - attempt
		}

		var delay time.Duration
		if cfg.Pause == nil && cfg.Backoff != nil && remaining != 0 {
			delay = cfg.Backoff.NextDelay(attempt)
		}

		if cfg.OnFailure != nil {
			cfg.OnFailure(attempt, remaining, err, delay)
		}

		if remaining == 0 {
			log.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
				"attempts":   attempt,
				"last_error": err.Error(),
			})
			return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, cfg.MaxAttempts, err)
		}

		if cfg.Pause != nil {
			if perr := cfg.Pause(ctx, attempt, err); perr != nil {
				return fmt.Errorf("retry cancelled: %w", perr)
			}
			continue
		}

		if werr := Wait(ctx, delay); werr != nil {
			log.WarnWithFields("retry cancelled", map[string]interface{}{
				"attempt": attempt,
				"reason":  werr.Error(),
			})
			return fmt.Errorf("retry cancelled: %w", werr)
		}
	}
}
