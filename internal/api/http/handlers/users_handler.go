package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// UsersHandler exposes directory management for admins.
type UsersHandler struct {
	directory *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.UserService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users := h.directory.GetAll(c.Context())
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Add handles POST /users.
func (h *UsersHandler) Add(c *fiber.Ctx) error {
	var req dto.AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Role = strings.TrimSpace(strings.ToLower(req.Role))
	if req.ID == "" || req.Role == "" {
		return apperrors.NewValidationError("id and role required", nil)
	}
	if !domain.ValidRole(domain.Role(req.Role)) {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}
	if _, exists := h.directory.GetByID(c.Context(), req.ID); exists {
		return apperrors.NewConflict("user already exists", map[string]any{"id": req.ID})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "User_" + req.ID
	}
	user := domain.User{ID: req.ID, Name: name, Role: domain.Role(req.Role)}
	if err := h.directory.AddUser(c.Context(), user); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.directory.RemoveUser(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !deleted {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

// Rename handles PATCH /users/:id.
func (h *UsersHandler) Rename(c *fiber.Ctx) error {
	var req dto.RenameUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	id := c.Params("id")
	updated, err := h.directory.RenameUser(c.Context(), id, name)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !updated {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "name": name}})
}
