package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Raw   string `json:"raw_reply,omitempty"`
}

// Health returns service health status.
func Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "cinesync-backend",
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Malformed model
// replies carry the raw reply for diagnostics.
func writeError(c fiber.Ctx, err error, fallback string) error {
	var malformed *models.MalformedSuggestionError
	switch {
	case errors.As(err, &malformed):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: malformed.Error(),
			Raw:   malformed.Raw,
		})
	case errors.Is(err, models.ErrNoNovelSuggestion):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error: "could not find a fresh suggestion, try broadening your prompt",
		})
	case errors.Is(err, models.ErrNotFriends):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error: "you are not friends with this user",
		})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "not found",
		})
	case errors.Is(err, models.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "storage unavailable, please retry",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: fallback,
		})
	}
}
