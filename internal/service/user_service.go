package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

// UserService serves directory lookups from a TTL-bounded snapshot and
// routes directory mutations through the guarded store. Callers receive the
// snapshot slice as a read-only view and must not mutate it.
type UserService struct {
	users      repository.UserStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ttl        time.Duration

	mu        sync.Mutex
	snapshot  []domain.User
	fetchedAt time.Time
}

// NewUserService constructs the service.
func NewUserService(users repository.UserStore, dispatcher events.Dispatcher, ttl time.Duration, logger *zap.Logger) *UserService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UserService{users: users, dispatcher: dispatcher, ttl: ttl, logger: logger}
}

// GetAll returns the current directory snapshot. Within the TTL the same
// slice is returned without a remote fetch. When a refresh fails, a stale
// snapshot is served if one exists; otherwise the result is empty and
// indistinguishable from a truly empty directory.
func (s *UserService) GetAll(ctx context.Context) []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil && time.Since(s.fetchedAt) < s.ttl {
		return s.snapshot
	}

	users, err := s.users.ListAll(ctx)
	if err != nil {
		s.logger.Error("directory refresh failed", zap.Error(err))
		if s.snapshot != nil {
			s.logger.Warn("serving stale directory snapshot",
				zap.Time("fetched_at", s.fetchedAt))
			return s.snapshot
		}
		return []domain.User{}
	}

	s.snapshot = users
	s.fetchedAt = time.Now()
	s.logger.Info("directory snapshot refreshed", zap.Int("users", len(users)))
	return s.snapshot
}

// GetByID scans the snapshot for the user.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, bool) {
	for _, user := range s.GetAll(ctx) {
		if user.ID == id {
			return &user, true
		}
	}
	return nil, false
}

// AddUser appends a directory row and invalidates the snapshot.
func (s *UserService) AddUser(ctx context.Context, user domain.User) error {
	if err := s.users.Append(ctx, user); err != nil {
		return err
	}
	s.invalidate()
	s.publish(ctx, events.Event{
		Type:    events.EventUserAdded,
		ActorID: user.ID,
		Payload: events.UserDirectoryPayload{UserID: user.ID, Name: user.Name, Role: user.Role},
	})
	return nil
}

// RemoveUser deletes a directory row; false means the user was not present.
func (s *UserService) RemoveUser(ctx context.Context, id string) (bool, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.invalidate()
	s.publish(ctx, events.Event{
		Type:    events.EventUserRemoved,
		Payload: events.UserDirectoryPayload{UserID: id},
	})
	return true, nil
}

// RenameUser updates a display name; false means the user was not present.
func (s *UserService) RenameUser(ctx context.Context, id, name string) (bool, error) {
	updated, err := s.users.UpdateName(ctx, id, name)
	if err != nil || !updated {
		return updated, err
	}
	s.invalidate()
	s.publish(ctx, events.Event{
		Type:    events.EventUserRenamed,
		Payload: events.UserDirectoryPayload{UserID: id, Name: name},
	})
	return true, nil
}

// invalidate drops the snapshot unconditionally so the next read refetches,
// even when the cache had not expired yet.
func (s *UserService) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
	s.logger.Debug("directory snapshot invalidated")
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
