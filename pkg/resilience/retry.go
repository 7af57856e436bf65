package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// DefaultBackoff is the base delay of the linear backoff: attempt n waits
// n * DefaultBackoff before running.
const DefaultBackoff = time.Second

// WithRetry invokes op up to maxRetries+1 times, waiting 1s, 2s, ... between
// attempts. The last error is returned unchanged so callers can branch on it.
func WithRetry[T any](ctx context.Context, maxRetries int, op Operation[T]) (T, error) {
	return retry(ctx, maxRetries, DefaultBackoff, op)
}

func retry[T any](ctx context.Context, maxRetries int, backoff time.Duration, op Operation[T]) (T, error) {
	var zero T
	var lastErr error

	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff * time.Duration(attempt)

			l := log.Ctx(ctx)
			l.Debug().
				Err(lastErr).
				Int(log.FieldAttempt, attempt+1).
				Dur("wait", wait).
				Msg("retrying operation")

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return zero, p.err
		}
		lastErr = err
	}

	return zero, lastErr
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. The retry loop stops at once
// and returns err itself, unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
