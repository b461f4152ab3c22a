package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
)

// Retrier executes remote units of work with bounded exponential backoff.
// Transient faults are retried up to the attempt ceiling; terminal faults
// propagate immediately. Exhausting the ceiling converts the last transient
// fault into a terminal one so callers never loop forever.
type Retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	multiplier  float64
	logger      *zap.Logger
}

// NewRetrier builds a Retrier from configuration.
func NewRetrier(cfg config.RetryConfig, logger *zap.Logger) *Retrier {
	r := &Retrier{
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		multiplier:  cfg.Multiplier,
		logger:      logger,
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = 5
	}
	if r.baseDelay <= 0 {
		r.baseDelay = 2 * time.Second
	}
	if r.maxDelay < r.baseDelay {
		r.maxDelay = 30 * time.Second
	}
	if r.multiplier < 1 {
		r.multiplier = 2
	}
	return r
}

// Do runs fn until it succeeds, fails terminally, or the attempt ceiling is
// reached. Each retry is logged before the backoff sleep. Context
// cancellation during the sleep aborts with a terminal fault.
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	delay := r.baseDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
		if attempt == r.maxAttempts {
			break
		}

		r.logger.Warn("transient fault, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return NewTerminal(op, ctx.Err())
		}

		delay = time.Duration(float64(delay) * r.multiplier)
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}

	return NewTerminal(op, fmt.Errorf("retry budget exhausted after %d attempts: %w", r.maxAttempts, lastErr))
}
