package handler

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/maxwellyoung/cinesync/internal/middleware"
	"github.com/maxwellyoung/cinesync/internal/models"
	"github.com/maxwellyoung/cinesync/internal/service"
)

// UserHandler handles identity sync from the auth provider.
type UserHandler struct {
	svc      *service.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc, validate: validator.New()}
}

// Sync fills in the profile fields for the authenticated identity, creating
// the internal identity if this is its first use.
// POST /api/v1/users/sync
func (h *UserHandler) Sync(c fiber.Ctx) error {
	var req models.SyncUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	user, err := h.svc.SyncProfile(c.Context(), middleware.ExternalID(c), req)
	if err != nil {
		slog.Error("failed to sync user profile", "error", err)
		return writeError(c, err, "failed to sync user")
	}
	return c.JSON(user)
}

// Me returns the authenticated user's record.
// GET /api/v1/users/me
func (h *UserHandler) Me(c fiber.Ctx) error {
	id, err := h.svc.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	user, err := h.svc.GetUser(c.Context(), id)
	if err != nil {
		return writeError(c, err, "failed to load user")
	}
	return c.JSON(user)
}
