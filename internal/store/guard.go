package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Guard serializes mutating remote operations behind a single exclusive
// region. The external store has no transactions or row locking, so the
// correctness of every read-verify-write transition rests on this region
// being global: request and user mutations share one guard, never one lock
// per entity or row.
type Guard struct {
	slot    chan struct{}
	timeout time.Duration
	logger  *zap.Logger
}

// NewGuard creates a guard. A zero timeout waits for admission until the
// context is done.
func NewGuard(timeout time.Duration, logger *zap.Logger) *Guard {
	g := &Guard{
		slot:    make(chan struct{}, 1),
		timeout: timeout,
		logger:  logger,
	}
	g.slot <- struct{}{}
	return g
}

// Do runs fn exclusively. Acquisition that outlives the configured timeout
// fails fast with a transient fault so the caller may retry instead of
// queueing behind a stalled remote call. Once admitted, fn runs to
// completion; cancellation is not observed mid-flight.
func (g *Guard) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var timeoutCh <-chan time.Time
	if g.timeout > 0 {
		timer := time.NewTimer(g.timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-g.slot:
	case <-ctx.Done():
		return NewTerminal(op, ctx.Err())
	case <-timeoutCh:
		g.logger.Warn("guard acquisition timed out", zap.String("op", op), zap.Duration("timeout", g.timeout))
		return NewTransient(op, errors.New("serialized access region busy"))
	}
	defer func() { g.slot <- struct{}{} }()

	g.logger.Debug("guard acquired", zap.String("op", op))
	return fn(ctx)
}
