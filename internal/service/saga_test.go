package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaga_RunsStepsInOrder(t *testing.T) {
	var order []string
	sg := newSaga(zap.NewNop())
	sg.step("one", func(ctx context.Context) error {
		order = append(order, "one")
		return nil
	}, nil)
	sg.step("two", func(ctx context.Context) error {
		order = append(order, "two")
		return nil
	}, nil)

	require.NoError(t, sg.run(context.Background()))
	assert.Equal(t, []string{"one", "two"}, order)
}

func TestSaga_FailureCompensatesInReverse(t *testing.T) {
	var order []string
	boom := errors.New("boom")

	sg := newSaga(zap.NewNop())
	sg.completed("pre", func(ctx context.Context) error {
		order = append(order, "undo pre")
		return nil
	})
	sg.step("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	}, func(ctx context.Context) error {
		order = append(order, "undo first")
		return nil
	})
	sg.step("second", func(ctx context.Context) error {
		return boom
	}, func(ctx context.Context) error {
		order = append(order, "undo second")
		return nil
	})

	err := sg.run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "undo first", "undo pre"}, order,
		"the failing step's own compensation must not run")
}

func TestSaga_CompensationFailureIsSurfaced(t *testing.T) {
	boom := errors.New("boom")
	undoFail := errors.New("undo failed")

	sg := newSaga(zap.NewNop())
	sg.completed("pre", func(ctx context.Context) error { return undoFail })
	sg.step("work", func(ctx context.Context) error { return boom }, nil)

	err := sg.run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, undoFail)
}
