package domain

import "time"

// RequestStatus enumerates lifecycle states for maintenance requests.
//
// The sequence is one-directional: creating -> new -> in_progress -> completed.
// A request in creating may instead be deleted when its creation saga aborts.
// The literal tokens are part of the external sheet contract and must not change.
type RequestStatus string

const (
	RequestStatusCreating   RequestStatus = "creating"
	RequestStatusNew        RequestStatus = "new"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// Request is the aggregate for maintenance requests.
//
// ID, ReporterID, ReporterName and CreatedAt are assigned at creation and
// immutable afterwards. AssigneeID, AssigneeName and AcceptedAt are either all
// unset or all set (written together by a successful accept). CompletedAt is
// only set on a completed request.
type Request struct {
	ID           string
	Status       RequestStatus
	Location     string
	IssueType    string
	PhotoURL     string
	ReporterID   string
	ReporterName string
	CreatedAt    time.Time
	AssigneeID   string
	AssigneeName string
	AcceptedAt   *time.Time
	CompletedAt  *time.Time
}

// Accepted reports whether the request has a recorded assignee.
func (r *Request) Accepted() bool {
	return r.AssigneeID != "" && r.AcceptedAt != nil
}

var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusCreating:   {RequestStatusNew, RequestStatusCancelled},
	RequestStatusNew:        {RequestStatusInProgress},
	RequestStatusInProgress: {RequestStatusCompleted},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
}

// IsValidTransition reports whether current may move to next.
func IsValidTransition(current, next RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
