package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// RequestsHandler exposes the maintenance request lifecycle.
type RequestsHandler struct {
	requests *service.RequestService
	app      config.AppConfig
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requests *service.RequestService, app config.AppConfig) *RequestsHandler {
	return &RequestsHandler{requests: requests, app: app}
}

// Create handles POST /requests. With a multipart "photo" file the creation
// runs as the upload-then-commit saga; without one the request is committed
// in a single append.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Location = strings.TrimSpace(req.Location)
	req.IssueType = strings.TrimSpace(req.IssueType)
	if req.Location == "" {
		return apperrors.NewValidationError("location required", nil)
	}
	if !h.app.ValidIssueType(req.IssueType) {
		return apperrors.NewValidationError("unknown issue type", map[string]any{
			"issue_type": req.IssueType,
			"allowed":    h.app.IssueTypes,
		})
	}

	input := service.CreateInput{
		ReporterID:   principal.User.ID,
		ReporterName: principal.User.Name,
		Location:     req.Location,
		IssueType:    req.IssueType,
	}

	photo, hasPhoto, err := readPhoto(c)
	if err != nil {
		return err
	}

	if !hasPhoto {
		created, err := h.requests.CommitWithoutPhoto(c.Context(), input)
		if err != nil {
			return apperrors.MapError(err)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"data": dto.NewRequestResponse(created),
		})
	}

	created, err := h.requests.Create(c.Context(), input)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := h.requests.AttachPhotoAndCommit(c.Context(), created, photo); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewRequestResponse(created),
	})
}

// List handles GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	requests, err := h.requests.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewRequestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	req, err := h.requests.Get(c.Context(), c.Params("id"))
	if err != nil {
		if service.IsNotFound(err) {
			return apperrors.NewNotFound("request", map[string]any{"id": c.Params("id")})
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponse(req)})
}

// Accept handles POST /requests/:id/accept. A guard rejection maps to 409:
// another actor already took the request.
func (h *RequestsHandler) Accept(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	id := c.Params("id")
	accepted, err := h.requests.Accept(c.Context(), id, principal.User.ID, principal.User.Name)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !accepted {
		return apperrors.NewConflict("request already taken", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "accepted": true}})
}

// Complete handles POST /requests/:id/complete. A guard rejection maps to
// 409: the request is not in progress, or the caller is not its assignee.
func (h *RequestsHandler) Complete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	id := c.Params("id")
	completed, err := h.requests.Complete(c.Context(), id, principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !completed {
		return apperrors.NewConflict("request cannot be completed", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "completed": true}})
}

func readPhoto(c *fiber.Ctx) ([]byte, bool, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		// No multipart body or no photo field; the request is photoless.
		return nil, false, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, false, apperrors.NewValidationError("unreadable photo", nil)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, false, apperrors.NewValidationError("unreadable photo", nil)
	}
	if len(data) == 0 {
		return nil, false, apperrors.NewValidationError("empty photo", nil)
	}
	return data, true, nil
}
