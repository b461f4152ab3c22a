package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateRequestRequest is the payload for new maintenance requests. A photo,
// when present, arrives as the multipart file field "photo" next to this form.
type CreateRequestRequest struct {
	Location  string `json:"location" form:"location"`
	IssueType string `json:"issue_type" form:"issue_type"`
}

// RequestResponse is the API shape of a request.
type RequestResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Location     string `json:"location"`
	IssueType    string `json:"issue_type"`
	PhotoURL     string `json:"photo_url,omitempty"`
	ReporterID   string `json:"reporter_id"`
	ReporterName string `json:"reporter_name"`
	CreatedAt    string `json:"created_at"`
	AssigneeID   string `json:"assignee_id,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
	AcceptedAt   string `json:"accepted_at,omitempty"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

// NewRequestResponse maps a domain request to its API shape.
func NewRequestResponse(req *domain.Request) RequestResponse {
	resp := RequestResponse{
		ID:           req.ID,
		Status:       string(req.Status),
		Location:     req.Location,
		IssueType:    req.IssueType,
		PhotoURL:     req.PhotoURL,
		ReporterID:   req.ReporterID,
		ReporterName: req.ReporterName,
		CreatedAt:    req.CreatedAt.UTC().Format(time.RFC3339),
		AssigneeID:   req.AssigneeID,
		AssigneeName: req.AssigneeName,
	}
	if req.AcceptedAt != nil {
		resp.AcceptedAt = req.AcceptedAt.UTC().Format(time.RFC3339)
	}
	if req.CompletedAt != nil {
		resp.CompletedAt = req.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
