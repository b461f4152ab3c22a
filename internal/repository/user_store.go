package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/store"
)

// User sheet column layout (1-indexed).
const (
	userColID   = 1
	userColName = 2
	userColRole = 3

	userColumnCount = 3
)

// UserStore provides typed access to directory rows. Mutations share the
// same guard as request mutations; ListAll is a read and bypasses it.
type UserStore interface {
	ListAll(ctx context.Context) ([]domain.User, error)
	Append(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) (bool, error)
	UpdateName(ctx context.Context, id, name string) (bool, error)
}

type userStore struct {
	rows    store.RowStore
	table   string
	guard   *store.Guard
	retrier *store.Retrier
	logger  *zap.Logger
}

// NewUserStore returns a UserStore backed by the given row store.
func NewUserStore(rows store.RowStore, table string, guard *store.Guard, retrier *store.Retrier, logger *zap.Logger) UserStore {
	return &userStore{rows: rows, table: table, guard: guard, retrier: retrier, logger: logger}
}

// ListAll fetches the full directory.
func (s *userStore) ListAll(ctx context.Context) ([]domain.User, error) {
	const op = "users.list"
	var rows []store.Row
	err := s.retrier.Do(ctx, op, func(ctx context.Context) error {
		var innerErr error
		rows, innerErr = s.rows.Rows(ctx, s.table)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		if row.Cell(userColID) == "" {
			s.logger.Warn("skipping user row without id", zap.Int("row", row.Index))
			continue
		}
		users = append(users, domain.User{
			ID:   row.Cell(userColID),
			Name: row.Cell(userColName),
			Role: domain.Role(row.Cell(userColRole)),
		})
	}
	return users, nil
}

// Append adds a user row.
func (s *userStore) Append(ctx context.Context, user domain.User) error {
	const op = "users.append"
	cells := make([]string, userColumnCount)
	cells[userColID-1] = user.ID
	cells[userColName-1] = user.Name
	cells[userColRole-1] = string(user.Role)
	return s.guard.Do(ctx, op, func(ctx context.Context) error {
		return s.retrier.Do(ctx, op, func(ctx context.Context) error {
			return s.rows.AppendRow(ctx, s.table, cells)
		})
	})
}

// Delete removes a user row; false means the user was not present.
func (s *userStore) Delete(ctx context.Context, id string) (bool, error) {
	const op = "users.delete"
	deleted := false
	err := s.guard.Do(ctx, op, func(ctx context.Context) error {
		row, err := s.find(ctx, op, id)
		if errors.Is(err, store.ErrRowNotFound) {
			s.logger.Warn("user not found for deletion", zap.String("user_id", id))
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.retrier.Do(ctx, op, func(ctx context.Context) error {
			return s.rows.DeleteRow(ctx, s.table, row.Index)
		}); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// UpdateName rewrites the display name; false means the user was not present.
func (s *userStore) UpdateName(ctx context.Context, id, name string) (bool, error) {
	const op = "users.update_name"
	updated := false
	err := s.guard.Do(ctx, op, func(ctx context.Context) error {
		row, err := s.find(ctx, op, id)
		if errors.Is(err, store.ErrRowNotFound) {
			s.logger.Warn("user not found for rename", zap.String("user_id", id))
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.retrier.Do(ctx, op, func(ctx context.Context) error {
			return s.rows.UpdateCell(ctx, s.table, row.Index, userColName, name)
		}); err != nil {
			return err
		}
		updated = true
		return nil
	})
	return updated, err
}

func (s *userStore) find(ctx context.Context, op, id string) (store.Row, error) {
	var row store.Row
	err := s.retrier.Do(ctx, op, func(ctx context.Context) error {
		var innerErr error
		row, innerErr = s.rows.FindRow(ctx, s.table, id)
		return innerErr
	})
	return row, err
}
