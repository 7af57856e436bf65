package resilience

import (
	"context"
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// Policy describes how a remote call is guarded.
type Policy struct {
	// Timeout bounds each individual attempt. Zero disables the guard.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// Backoff is the linear backoff base. Zero means DefaultBackoff.
	Backoff time.Duration
}

// Do runs op under p and propagates the final error. Use it on critical
// paths: writes and reads whose failure the caller must see.
func Do[T any](ctx context.Context, p Policy, op Operation[T]) (T, error) {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return retry(ctx, p.MaxRetries, backoff, func(ctx context.Context) (T, error) {
		return WithTimeout(ctx, p.Timeout, op)
	})
}

// Optional runs op once under timeout, without retry, and reports failure
// through ok instead of an error. The failure is logged at warn level.
// Use it for non-critical reads that must never block or break rendering.
func Optional[T any](ctx context.Context, timeout time.Duration, op Operation[T]) (val T, ok bool) {
	v, err := WithTimeout(ctx, timeout, op)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Bool("timeout", IsTimeout(err)).Msg("optional read failed, using default")
		var zero T
		return zero, false
	}
	return v, true
}

// OrDefault is Optional with an explicit fallback value.
func OrDefault[T any](ctx context.Context, timeout time.Duration, op Operation[T], fallback T) T {
	if v, ok := Optional(ctx, timeout, op); ok {
		return v
	}
	return fallback
}
