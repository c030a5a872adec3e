package handler

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/maxwellyoung/cinesync/internal/middleware"
	"github.com/maxwellyoung/cinesync/internal/service"
)

// FriendHandler handles the friend request/accept flow.
type FriendHandler struct {
	svc      *service.FriendService
	users    *service.UserService
	validate *validator.Validate
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(svc *service.FriendService, users *service.UserService) *FriendHandler {
	return &FriendHandler{svc: svc, users: users, validate: validator.New()}
}

type inviteRequest struct {
	FriendExternalID string `json:"friend_external_id" validate:"required,min=1,max=200"`
}

// Invite sends a friend request.
// POST /api/v1/friends/requests
func (h *FriendHandler) Invite(c fiber.Ctx) error {
	var req inviteRequest
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

	fr, err := h.svc.Invite(c.Context(), userID, req.FriendExternalID)
	if err != nil {
		slog.Error("failed to send friend request", "user_id", userID, "error", err)
		return writeError(c, err, "failed to send friend request")
	}
	return c.Status(fiber.StatusCreated).JSON(fr)
}

// Accept confirms a pending friend request.
// POST /api/v1/friends/requests/:id/accept
func (h *FriendHandler) Accept(c fiber.Ctx) error {
	requestID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request ID"})
	}

	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	if err := h.svc.Accept(c.Context(), userID, requestID); err != nil {
		return writeError(c, err, "failed to accept friend request")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PendingRequests lists invitations awaiting the user's acceptance.
// GET /api/v1/friends/requests
func (h *FriendHandler) PendingRequests(c fiber.Ctx) error {
	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	reqs, err := h.svc.PendingRequests(c.Context(), userID)
	if err != nil {
		return writeError(c, err, "failed to list friend requests")
	}
	return c.JSON(fiber.Map{"requests": reqs})
}

// List returns the user's confirmed friends.
// GET /api/v1/friends
func (h *FriendHandler) List(c fiber.Ctx) error {
	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	friends, err := h.svc.List(c.Context(), userID)
	if err != nil {
		slog.Error("failed to list friends", "user_id", userID, "error", err)
		return writeError(c, err, "failed to list friends")
	}
	return c.JSON(fiber.Map{"friends": friends})
}

// Remove deletes a friendship.
// DELETE /api/v1/friends/:friendId
func (h *FriendHandler) Remove(c fiber.Ctx) error {
	friendID := c.Params("friendId")
	if friendID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "missing friend ID"})
	}

	userID, err := h.users.Resolve(c.Context(), middleware.ExternalID(c))
	if err != nil {
		return writeError(c, err, "failed to resolve user")
	}

	if err := h.svc.Remove(c.Context(), userID, friendID); err != nil {
		return writeError(c, err, "failed to remove friend")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
