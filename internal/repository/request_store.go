package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/store"
)

// Request sheet column layout (1-indexed). Exact positions are part of the
// external contract and must match the hosted sheet.
const (
	reqColID           = 1
	reqColStatus       = 2
	reqColLocation     = 3
	reqColIssueType    = 4
	reqColPhotoURL     = 5
	reqColReporterID   = 6
	reqColReporterName = 7
	reqColCreatedAt    = 8
	reqColAssigneeID   = 9
	reqColAssigneeName = 10
	reqColAcceptedAt   = 11
	reqColCompletedAt  = 12

	reqColumnCount = 12
)

// RequestStore provides typed access to request rows. Every mutating method
// runs inside the shared serialized-access guard with each remote call
// retried; the guard makes the read-verify-write of Accept and Complete
// race-free against all other guarded mutations.
type RequestStore interface {
	Append(ctx context.Context, req *domain.Request) error
	Commit(ctx context.Context, id, photoURL string) error
	Accept(ctx context.Context, id, actorID, actorName string, at time.Time) (bool, error)
	Complete(ctx context.Context, id, actorID string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	List(ctx context.Context) ([]domain.Request, error)
}

type requestStore struct {
	rows    store.RowStore
	table   string
	guard   *store.Guard
	retrier *store.Retrier
	logger  *zap.Logger
}

// NewRequestStore returns a RequestStore backed by the given row store.
func NewRequestStore(rows store.RowStore, table string, guard *store.Guard, retrier *store.Retrier, logger *zap.Logger) RequestStore {
	return &requestStore{rows: rows, table: table, guard: guard, retrier: retrier, logger: logger}
}

// Append writes the request as a new row.
func (s *requestStore) Append(ctx context.Context, req *domain.Request) error {
	const op = "requests.append"
	cells := marshalRequest(req)
	return s.guard.Do(ctx, op, func(ctx context.Context) error {
		return s.retrier.Do(ctx, op, func(ctx context.Context) error {
			return s.rows.AppendRow(ctx, s.table, cells)
		})
	})
}

// Commit marks the draft row as new and records the photo reference.
// Status and photo are two separate remote writes; if the process dies
// between them the row is left with status new and no photo reference.
// Known limitation, the remote API has no multi-cell write.
func (s *requestStore) Commit(ctx context.Context, id, photoURL string) error {
	const op = "requests.commit"
	return s.guard.Do(ctx, op, func(ctx context.Context) error {
		row, err := s.find(ctx, op, id)
		if err != nil {
			return err
		}
		if err := s.updateCell(ctx, op, row.Index, reqColStatus, string(domain.RequestStatusNew)); err != nil {
			return err
		}
		if photoURL != "" {
			if err := s.updateCell(ctx, op, row.Index, reqColPhotoURL, photoURL); err != nil {
				return err
			}
		}
		return nil
	})
}

// Accept transitions the request to in_progress and records the assignee.
// Returns false without error when the row is missing or no longer new;
// that is a guard rejection, not a fault.
func (s *requestStore) Accept(ctx context.Context, id, actorID, actorName string, at time.Time) (bool, error) {
	const op = "requests.accept"
	accepted := false
	err := s.guard.Do(ctx, op, func(ctx context.Context) error {
		row, err := s.find(ctx, op, id)
		if errors.Is(err, store.ErrRowNotFound) {
			s.logger.Warn("request not found for accept", zap.String("request_id", id))
			return nil
		}
		if err != nil {
			return err
		}

		if status := domain.RequestStatus(row.Cell(reqColStatus)); status != domain.RequestStatusNew {
			s.logger.Warn("accept rejected, request already taken",
				zap.String("request_id", id),
				zap.String("actor_id", actorID),
				zap.String("status", string(status)))
			return nil
		}

		writes := []struct {
			col   int
			value string
		}{
			{reqColStatus, string(domain.RequestStatusInProgress)},
			{reqColAssigneeID, actorID},
			{reqColAssigneeName, actorName},
			{reqColAcceptedAt, formatTime(at)},
		}
		for _, w := range writes {
			if err := s.updateCell(ctx, op, row.Index, w.col, w.value); err != nil {
				return err
			}
		}
		accepted = true
		return nil
	})
	return accepted, err
}

// Complete transitions the request to completed. Returns false without error
// when the status is not in_progress or the actor is not the recorded
// assignee; the two causes are distinguished only in logs.
func (s *requestStore) Complete(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	const op = "requests.complete"
	completed := false
	err := s.guard.Do(ctx, op, func(ctx context.Context) error {
		row, err := s.find(ctx, op, id)
		if errors.Is(err, store.ErrRowNotFound) {
			s.logger.Warn("request not found for complete", zap.String("request_id", id))
			return nil
		}
		if err != nil {
			return err
		}

		if status := domain.RequestStatus(row.Cell(reqColStatus)); status != domain.RequestStatusInProgress {
			s.logger.Warn("complete rejected, request not in progress",
				zap.String("request_id", id),
				zap.String("actor_id", actorID),
				zap.String("status", string(status)))
			return nil
		}
		if assignee := row.Cell(reqColAssigneeID); assignee != actorID {
			s.logger.Warn("complete rejected, actor is not the assignee",
				zap.String("request_id", id),
				zap.String("actor_id", actorID),
				zap.String("assignee_id", assignee))
			return nil
		}

		if err := s.updateCell(ctx, op, row.Index, reqColStatus, string(domain.RequestStatusCompleted)); err != nil {
			return err
		}
		if err := s.updateCell(ctx, op, row.Index, reqColCompletedAt, formatTime(at)); err != nil {
			return err
		}
		completed = true
		return nil
	})
	return completed, err
}

// Delete removes the request row. Used as the creation saga's compensation.
func (s *requestStore) Delete(ctx context.Context, id string) (bool, error) {
	const op = "requests.delete"
	deleted := false
	err := s.guard.Do(ctx, op, func(ctx context.Context) error {
		row, err := s.find(ctx, op, id)
		if errors.Is(err, store.ErrRowNotFound) {
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

// GetByID fetches a request. Reads are idempotent and bypass the guard.
func (s *requestStore) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	const op = "requests.get"
	row, err := s.find(ctx, op, id)
	if err != nil {
		return nil, err
	}
	return unmarshalRequest(row)
}

// List fetches every request row, skipping rows that fail to parse.
func (s *requestStore) List(ctx context.Context) ([]domain.Request, error) {
	const op = "requests.list"
	var rows []store.Row
	err := s.retrier.Do(ctx, op, func(ctx context.Context) error {
		var innerErr error
		rows, innerErr = s.rows.Rows(ctx, s.table)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	requests := make([]domain.Request, 0, len(rows))
	for _, row := range rows {
		req, err := unmarshalRequest(row)
		if err != nil {
			s.logger.Warn("skipping malformed request row", zap.Int("row", row.Index), zap.Error(err))
			continue
		}
		requests = append(requests, *req)
	}
	return requests, nil
}

func (s *requestStore) find(ctx context.Context, op, id string) (store.Row, error) {
	var row store.Row
	err := s.retrier.Do(ctx, op, func(ctx context.Context) error {
		var innerErr error
		row, innerErr = s.rows.FindRow(ctx, s.table, id)
		return innerErr
	})
	return row, err
}

func (s *requestStore) updateCell(ctx context.Context, op string, row, col int, value string) error {
	return s.retrier.Do(ctx, op, func(ctx context.Context) error {
		return s.rows.UpdateCell(ctx, s.table, row, col, value)
	})
}

func marshalRequest(req *domain.Request) []string {
	cells := make([]string, reqColumnCount)
	cells[reqColID-1] = req.ID
	cells[reqColStatus-1] = string(req.Status)
	cells[reqColLocation-1] = req.Location
	cells[reqColIssueType-1] = req.IssueType
	cells[reqColPhotoURL-1] = req.PhotoURL
	cells[reqColReporterID-1] = req.ReporterID
	cells[reqColReporterName-1] = req.ReporterName
	cells[reqColCreatedAt-1] = formatTime(req.CreatedAt)
	cells[reqColAssigneeID-1] = req.AssigneeID
	cells[reqColAssigneeName-1] = req.AssigneeName
	if req.AcceptedAt != nil {
		cells[reqColAcceptedAt-1] = formatTime(*req.AcceptedAt)
	}
	if req.CompletedAt != nil {
		cells[reqColCompletedAt-1] = formatTime(*req.CompletedAt)
	}
	return cells
}

func unmarshalRequest(row store.Row) (*domain.Request, error) {
	createdAt, err := parseTime(row.Cell(reqColCreatedAt))
	if err != nil {
		return nil, err
	}
	req := &domain.Request{
		ID:           row.Cell(reqColID),
		Status:       domain.RequestStatus(row.Cell(reqColStatus)),
		Location:     row.Cell(reqColLocation),
		IssueType:    row.Cell(reqColIssueType),
		PhotoURL:     row.Cell(reqColPhotoURL),
		ReporterID:   row.Cell(reqColReporterID),
		ReporterName: row.Cell(reqColReporterName),
		CreatedAt:    createdAt,
		AssigneeID:   row.Cell(reqColAssigneeID),
		AssigneeName: row.Cell(reqColAssigneeName),
	}
	if req.AcceptedAt, err = parseOptionalTime(row.Cell(reqColAcceptedAt)); err != nil {
		return nil, err
	}
	if req.CompletedAt, err = parseOptionalTime(row.Cell(reqColCompletedAt)); err != nil {
		return nil, err
	}
	return req, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := parseTime(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
