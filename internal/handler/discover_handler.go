package handler

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/maxwellyoung/cinesync/internal/middleware"
	"github.com/maxwellyoung/cinesync/internal/models"
	"github.com/maxwellyoung/cinesync/internal/service"
)

// DiscoverHandler handles recommendation generation requests.
type DiscoverHandler struct {
	svc      *service.DiscoverService
	users    *service.UserService
	validate *validator.Validate
}

// NewDiscoverHandler creates a new DiscoverHandler.
func NewDiscoverHandler(svc *service.DiscoverService, users *service.UserService) *DiscoverHandler {
	return &DiscoverHandler{
		svc:      svc,
		users:    users,
		validate: validator.New(),
	}
}

// Generate produces one movie recommendation.
// POST /api/v1/discover/generate
func (h *DiscoverHandler) Generate(c fiber.Ctx) error {
	var req models.GenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	candidate, err := h.svc.Generate(c.Context(), userID, req)
	if err != nil {
		slog.Error("failed to generate movie", "user_id", userID, "error", err)
		return writeError(c, err, "failed to generate movie")
	}

	return c.JSON(candidate)
}

// SuggestPrompts returns refinement suggestions for a prompt.
// POST /api/v1/discover/suggestions
func (h *DiscoverHandler) SuggestPrompts(c fiber.Ctx) error {
	var req models.SuggestPromptsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	resp, err := h.svc.SuggestPrompts(c.Context(), req)
	if err != nil {
		slog.Error("failed to generate suggestions", "error", err)
		return writeError(c, err, "failed to generate suggestions")
	}

	return c.JSON(resp)
}

// ResetSession starts a fresh discovery session.
// DELETE /api/v1/discover/sessions/:id
func (h *DiscoverHandler) ResetSession(c fiber.Ctx) error {
	h.svc.ResetSession(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}
