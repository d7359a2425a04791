package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// RetryableError marks an error as transient. [Retry] re-attempts only
// errors wrapped in this type.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times, doubling delay after each retryable
// failure. A rate-limit error asking for a longer wait than the current
// delay is honored. Non-retryable errors are returned at once; ctx.Err()
// is returned if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) || i == attempts-1 {
			break
		}

		wait := delay
		var rl *errors.RateLimitedError
		if stderrors.As(err, &rl) && time.Duration(rl.RetryAfter)*time.Second > wait {
			wait = time.Duration(rl.RetryAfter) * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff is [Retry] with 3 attempts and a 1 second initial delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

func isRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError))
}
