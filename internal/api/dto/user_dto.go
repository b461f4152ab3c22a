package dto

import "github.com/spec-kit/maintenance-service/internal/domain"

// AddUserRequest payload for directory additions.
type AddUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// RenameUserRequest payload for display name changes.
type RenameUserRequest struct {
	Name string `json:"name"`
}

// UserResponse is the API shape of a directory user.
type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewUserResponse maps a domain user to its API shape.
func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Role: string(user.Role)}
}
