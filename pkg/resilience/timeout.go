// Package resilience wraps remote operations with timeout and retry policy.
//
// Retry is always the outer policy and timeout the inner guard, so every
// attempt gets its own full time budget:
//
//	resilience.Do(ctx, policy, op) == WithRetry(ctx, n, func(ctx) { WithTimeout(ctx, d, op) })
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when an operation exceeds its time budget.
var ErrTimeout = errors.New("operation timed out")

// Operation is a single remote call. It is invoked afresh for every attempt
// and must not cache its own result between invocations.
type Operation[T any] func(ctx context.Context) (T, error)

type outcome[T any] struct {
	val T
	err error
}

// WithTimeout races op against a timer. When the timer fires first the call
// fails with ErrTimeout, op's context is cancelled and its eventual result or
// panic is discarded. A non-positive timeout runs op unguarded.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, op Operation[T]) (T, error) {
	var zero T
	if timeout <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so the losing goroutine never blocks on send.
	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("operation panicked: %v", r)}
			}
		}()
		v, err := op(opCtx)
		done <- outcome[T]{val: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.val, res.err
	case <-timer.C:
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// IsTimeout reports whether err came from an exceeded time budget.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
