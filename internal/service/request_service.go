package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/blob"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/store"
)

// RequestService coordinates the maintenance request lifecycle: the creation
// saga with compensating rollback and the guarded accept/complete
// transitions. All correctness comes from the coordinator, not the store.
type RequestService struct {
	requests   repository.RequestStore
	uploader   blob.Uploader
	retrier    *store.Retrier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestStore repository.RequestStore
	Uploader     blob.Uploader
	Retrier      *store.Retrier
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// CreateInput describes a new request.
type CreateInput struct {
	ReporterID   string
	ReporterName string
	Location     string
	IssueType    string
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestStore,
		uploader:   deps.Uploader,
		retrier:    deps.Retrier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create appends a draft row in creating state and returns the request.
// The draft is not announced; it becomes visible as a request only once a
// commit succeeds.
func (s *RequestService) Create(ctx context.Context, input CreateInput) (*domain.Request, error) {
	req := &domain.Request{
		ID:           uuid.NewString(),
		Status:       domain.RequestStatusCreating,
		Location:     input.Location,
		IssueType:    input.IssueType,
		ReporterID:   input.ReporterID,
		ReporterName: input.ReporterName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.requests.Append(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("draft request created",
		zap.String("request_id", req.ID),
		zap.String("reporter_id", req.ReporterID))
	return req, nil
}

// AttachPhotoAndCommit runs the creation saga for a draft produced by
// Create: upload the photo, then commit the row to status new with the photo
// reference. If either step fails the draft row is deleted; if that rollback
// also fails an orphaned creating row remains and needs external cleanup.
// The creation notification is dispatched after commit and is never rolled
// back.
func (s *RequestService) AttachPhotoAndCommit(ctx context.Context, req *domain.Request, photo []byte) error {
	var photoURL string

	sg := newSaga(s.logger)
	sg.completed("append draft row", func(ctx context.Context) error {
		deleted, err := s.requests.Delete(ctx, req.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("draft row %s not found during rollback", req.ID)
		}
		return nil
	})
	sg.step("upload photo", func(ctx context.Context) error {
		name := fmt.Sprintf("request_%s.jpg", req.ID)
		return s.retrier.Do(ctx, "blob.upload", func(ctx context.Context) error {
			var err error
			photoURL, err = s.uploader.Upload(ctx, name, photo)
			return err
		})
	}, nil)
	sg.step("commit request row", func(ctx context.Context) error {
		return s.requests.Commit(ctx, req.ID, photoURL)
	}, nil)

	if err := sg.run(ctx); err != nil {
		s.logger.Error("request creation saga aborted",
			zap.String("request_id", req.ID),
			zap.Error(err))
		return err
	}

	req.Status = domain.RequestStatusNew
	req.PhotoURL = photoURL
	s.publishCreated(ctx, req)
	s.logger.Info("request committed with photo", zap.String("request_id", req.ID))
	return nil
}

// CommitWithoutPhoto creates a request in a single append with status new;
// no intermediate creating row is ever externally visible, so there is
// nothing to compensate.
func (s *RequestService) CommitWithoutPhoto(ctx context.Context, input CreateInput) (*domain.Request, error) {
	req := &domain.Request{
		ID:           uuid.NewString(),
		Status:       domain.RequestStatusNew,
		Location:     input.Location,
		IssueType:    input.IssueType,
		ReporterID:   input.ReporterID,
		ReporterName: input.ReporterName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.requests.Append(ctx, req); err != nil {
		return nil, err
	}
	s.publishCreated(ctx, req)
	s.logger.Info("request committed without photo", zap.String("request_id", req.ID))
	return req, nil
}

// Accept claims a request for the actor. False means the request was not in
// status new anymore, typically because another actor won the race.
func (s *RequestService) Accept(ctx context.Context, id, actorID, actorName string) (bool, error) {
	accepted, err := s.requests.Accept(ctx, id, actorID, actorName, time.Now().UTC())
	if err != nil || !accepted {
		return false, err
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestAccepted,
		RequestID: id,
		ActorID:   actorID,
		Payload:   events.RequestAcceptedPayload{AssigneeID: actorID, AssigneeName: actorName},
	})
	return true, nil
}

// Complete finishes a request. False means the request was not in progress
// or the actor is not its assignee.
func (s *RequestService) Complete(ctx context.Context, id, actorID string) (bool, error) {
	completed, err := s.requests.Complete(ctx, id, actorID, time.Now().UTC())
	if err != nil || !completed {
		return false, err
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestCompleted,
		RequestID: id,
		ActorID:   actorID,
		Payload:   events.RequestCompletedPayload{AssigneeID: actorID},
	})
	return true, nil
}

// Get fetches a request by identity.
func (s *RequestService) Get(ctx context.Context, id string) (*domain.Request, error) {
	return s.requests.GetByID(ctx, id)
}

// List returns every request currently in the store.
func (s *RequestService) List(ctx context.Context) ([]domain.Request, error) {
	return s.requests.List(ctx)
}

// IsNotFound reports whether err stems from a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrRowNotFound)
}

func (s *RequestService) publishCreated(ctx context.Context, req *domain.Request) {
	s.publish(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		ActorID:   req.ReporterID,
		Payload:   events.RequestCreatedPayload{Request: *req},
	})
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
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
		// Handler failures (notifications included) never roll back the
		// committed state they announce.
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("request_id", event.RequestID),
			zap.Error(err))
	}
}
