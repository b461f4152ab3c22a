package events

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated   EventType = "request_created"
	EventRequestAccepted  EventType = "request_accepted"
	EventRequestCompleted EventType = "request_completed"
	EventUserAdded        EventType = "user_added"
	EventUserRemoved      EventType = "user_removed"
	EventUserRenamed      EventType = "user_renamed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload carries the committed request so notification
// handlers need no second store read.
type RequestCreatedPayload struct {
	Request domain.Request `json:"request"`
}

// RequestAcceptedPayload payload.
type RequestAcceptedPayload struct {
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
}

// RequestCompletedPayload payload.
type RequestCompletedPayload struct {
	AssigneeID string `json:"assignee_id"`
}

// UserDirectoryPayload payload for directory mutations.
type UserDirectoryPayload struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}
