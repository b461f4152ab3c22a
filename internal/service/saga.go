package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// sagaStep pairs a forward action with its compensating action. A nil action
// marks work performed before the saga started; a nil compensation marks a
// step that needs no rollback.
type sagaStep struct {
	name       string
	action     func(context.Context) error
	compensate func(context.Context) error
}

// saga executes its steps in order. When step i fails, the compensations of
// the steps before it run in reverse order. Compensation failures are logged
// and surfaced alongside the original failure; the caller decides what
// residual state that leaves behind.
type saga struct {
	logger *zap.Logger
	steps  []sagaStep
}

func newSaga(logger *zap.Logger) *saga {
	return &saga{logger: logger}
}

// completed registers already-performed work so its compensation
// participates in rollback.
func (s *saga) completed(name string, compensate func(context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, compensate: compensate})
}

// step appends a forward action with an optional compensation.
func (s *saga) step(name string, action, compensate func(context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, action: action, compensate: compensate})
}

func (s *saga) run(ctx context.Context) error {
	for i, st := range s.steps {
		if st.action == nil {
			continue
		}
		err := st.action(ctx)
		if err == nil {
			continue
		}
		s.logger.Error("saga step failed, rolling back",
			zap.String("step", st.name),
			zap.Error(err))
		if rollbackErr := s.rollback(ctx, i-1); rollbackErr != nil {
			return errors.Join(fmt.Errorf("step %q: %w", st.name, err), rollbackErr)
		}
		return fmt.Errorf("step %q: %w", st.name, err)
	}
	return nil
}

func (s *saga) rollback(ctx context.Context, from int) error {
	var errs []error
	for i := from; i >= 0; i-- {
		st := s.steps[i]
		if st.compensate == nil {
			continue
		}
		s.logger.Warn("running saga compensation", zap.String("step", st.name))
		if err := st.compensate(ctx); err != nil {
			s.logger.Error("saga compensation failed", zap.String("step", st.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("compensation for %q: %w", st.name, err))
		}
	}
	return errors.Join(errs...)
}
