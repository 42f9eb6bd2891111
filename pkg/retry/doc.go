// Package retry runs an operation repeatedly until it succeeds.
//
// Between attempts it either sleeps according to a BackoffStrategy or hands
// control to a PauseFunc, which the harvester uses to block until an
// operator acknowledges a failure. A MaxAttempts of zero retries forever.
//
//	err := retry.Do(func() error {
//		_, err := client.GetText(ctx, url)
//		return err
//	}, &retry.Config{
//		MaxAttempts: 5,
//		Backoff:     &retry.ConstantBackoff{Delay: 10 * time.Second},
//		Context:     ctx,
//	})
//
// Once the budget is spent the returned error wraps ErrMaxAttempts together
// with the last failure.
package retry
