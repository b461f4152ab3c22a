package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
)

func testRetrier(maxAttempts int) *Retrier {
	return NewRetrier(config.RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
	}, zap.NewNop())
}

func TestRetrier_SucceedsAfterTransientFaults(t *testing.T) {
	r := testRetrier(5)
	calls := 0

	err := r.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewTransient("op", errors.New("flaky"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrier_TerminalFaultNotRetried(t *testing.T) {
	r := testRetrier(5)
	calls := 0
	boom := errors.New("bad request")

	err := r.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return NewTerminal("op", boom)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)
}

func TestRetrier_UnclassifiedErrorIsTerminal(t *testing.T) {
	r := testRetrier(5)
	calls := 0

	err := r.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return errors.New("plain error")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrier_ExhaustionBecomesTerminal(t *testing.T) {
	r := testRetrier(3)
	calls := 0

	err := r.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return NewTransient("op", errors.New("still down"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.False(t, IsTransient(err), "exhausted retries must not look retryable to an outer layer")
	assert.Contains(t, err.Error(), "retry budget exhausted after 3 attempts")
}

func TestRetrier_ContextCancelAbortsBackoff(t *testing.T) {
	r := NewRetrier(config.RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Minute,
		MaxDelay:    time.Minute,
		Multiplier:  2,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, "op", func(ctx context.Context) error {
		calls++
		return NewTransient("op", errors.New("down"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTransient(err))
}
