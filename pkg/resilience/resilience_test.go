package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient store error")

func TestWithTimeout_ReturnsResultBeforeDeadline(t *testing.T) {
	v, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestWithTimeout_TimerWinsAndLoserIsDiscarded(t *testing.T) {
	cancelled := make(chan struct{})

	start := time.Now()
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		// A late failure from the loser must go nowhere.
		return 0, errTransient
	})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, IsTimeout(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("losing operation was not cancelled")
	}
}

func TestWithTimeout_RecoversPanic(t *testing.T) {
	_, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWithTimeout_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout_ZeroTimeoutRunsUnguarded(t *testing.T) {
	v, err := WithTimeout(context.Background(), 0, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	// Given: an operation that fails twice then succeeds
	var calls int32
	op := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errTransient
		}
		return "done", nil
	}

	// When: retrying with two retries and a short backoff
	v, err := retry(context.Background(), 2, 5*time.Millisecond, op)

	// Then: the third attempt wins
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetry_ReturnsLastErrorUnchanged(t *testing.T) {
	var calls int32
	final := errors.New("final failure")
	op := func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 3 {
			return 0, final
		}
		return 0, errTransient
	}

	_, err := retry(context.Background(), 2, time.Millisecond, op)

	assert.Same(t, final, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls)) // initial + 2 retries
}

func TestRetry_LinearBackoff(t *testing.T) {
	var stamps []time.Time
	op := func(ctx context.Context) (int, error) {
		stamps = append(stamps, time.Now())
		return 0, errTransient
	}

	_, err := retry(context.Background(), 2, 20*time.Millisecond, op)
	require.Error(t, err)
	require.Len(t, stamps, 3)

	// 1 * base, then 2 * base.
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 40*time.Millisecond)
}

func TestRetry_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	op := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return 0, errTransient
	}

	_, err := retry(ctx, 5, time.Hour, op)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetry_NegativeRetriesRunsOnce(t *testing.T) {
	var calls int32
	_, err := retry(context.Background(), -1, time.Millisecond, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	errDuplicate := errors.New("duplicate")
	var calls int32
	_, err := Do(context.Background(), Policy{MaxRetries: 3, Backoff: time.Millisecond}, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, Permanent(errDuplicate)
	})

	assert.Equal(t, errDuplicate, err, "returned unwrapped")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Nil(t, Permanent(nil))
}

func TestDo_TimeoutPerAttemptThenSuccess(t *testing.T) {
	// Given: the first attempt hangs, the second answers at once
	var calls int32
	op := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "fresh", nil
	}

	p := Policy{Timeout: 20 * time.Millisecond, MaxRetries: 2, Backoff: 5 * time.Millisecond}
	v, err := Do(context.Background(), p, op)

	// Then: the retry re-invokes the operation instead of replaying the first call
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_ExhaustedTimeoutsSurfaceErrTimeout(t *testing.T) {
	p := Policy{Timeout: 5 * time.Millisecond, MaxRetries: 1, Backoff: time.Millisecond}
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestOptional(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		v, ok := Optional(context.Background(), time.Second, func(ctx context.Context) (int64, error) {
			return 12, nil
		})
		assert.True(t, ok)
		assert.Equal(t, int64(12), v)
	})

	t.Run("error is not retried", func(t *testing.T) {
		var calls int32
		v, ok := Optional(context.Background(), time.Second, func(ctx context.Context) (int64, error) {
			atomic.AddInt32(&calls, 1)
			return 99, errTransient
		})
		assert.False(t, ok)
		assert.Zero(t, v)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("timeout defaults", func(t *testing.T) {
		v := OrDefault(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int64, error) {
			<-ctx.Done()
			return 5, nil
		}, -1)
		assert.Equal(t, int64(-1), v)
	})
}
