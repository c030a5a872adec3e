package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/maxwellyoung/cinesync/internal/middleware"
	"github.com/maxwellyoung/cinesync/internal/models"
	"github.com/maxwellyoung/cinesync/internal/service"
)

// WatchlistHandler handles HTTP requests for the watchlist.
type WatchlistHandler struct {
	svc   *service.WatchlistService
	users *service.UserService
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(svc *service.WatchlistService, users *service.UserService) *WatchlistHandler {
	return &WatchlistHandler{svc: svc, users: users}
}

// Add accepts a candidate into the user's watchlist.
// POST /api/v1/watchlist
func (h *WatchlistHandler) Add(c fiber.Ctx) error {
	var candidate models.MovieCandidate
	if err := c.Bind().JSON(&candidate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	result, err := h.svc.Add(c.Context(), userID, &candidate)
	if err != nil {
		var malformed *models.MalformedSuggestionError
		if errors.As(err, &malformed) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: malformed.Error()})
		}
		slog.Error("failed to add to watchlist", "user_id", userID, "error", err)
		return writeError(c, err, "failed to add to watchlist")
	}

	status := fiber.StatusOK
	if result.Added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

// Remove deletes an entry; removing a missing entry succeeds.
// DELETE /api/v1/watchlist/:movieId
func (h *WatchlistHandler) Remove(c fiber.Ctx) error {
	movieID, err := strconv.Atoi(c.Params("movieId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	if err := h.svc.Remove(c.Context(), userID, movieID); err != nil {
		slog.Error("failed to remove from watchlist", "user_id", userID, "movie_id", movieID, "error", err)
		return writeError(c, err, "failed to remove from watchlist")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetStatus toggles an entry between to_watch and watched.
// PATCH /api/v1/watchlist/:movieId/status
func (h *WatchlistHandler) SetStatus(c fiber.Ctx) error {
	movieID, err := strconv.Atoi(c.Params("movieId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if !models.ValidWatchlistStatuses[body.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid status"})
	}

	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	if err := h.svc.SetStatus(c.Context(), userID, movieID, body.Status); err != nil {
		return writeError(c, err, "failed to update status")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List returns the user's watchlist.
// GET /api/v1/watchlist
func (h *WatchlistHandler) List(c fiber.Ctx) error {
	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	entries, err := h.svc.List(c.Context(), userID)
	if err != nil {
		slog.Error("failed to list watchlist", "user_id", userID, "error", err)
		return writeError(c, err, "failed to retrieve watchlist")
	}
	return c.JSON(fiber.Map{"watchlist": entries})
}

// ListCombined returns the union of the user's and a friend's watchlists.
// GET /api/v1/watchlist/combined/:friendId
func (h *WatchlistHandler) ListCombined(c fiber.Ctx) error {
	friendID := c.Params("friendId")
	if friendID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "missing friend ID"})
	}

	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	entries, err := h.svc.ListCombined(c.Context(), userID, friendID)
	if err != nil {
		return writeError(c, err, "failed to retrieve combined watchlist")
	}
	return c.JSON(fiber.Map{"watchlist": entries})
}
