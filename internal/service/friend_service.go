package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// FriendStore is the storage side of the friend graph.
type FriendStore interface {
	CreateRequest(userID, friendID string) (*models.FriendRequest, error)
	GetRequest(id int) (*models.FriendRequest, error)
	AcceptRequest(id int) error
	RemoveFriend(userID, friendID string) error
	ListFriends(userID string) ([]models.Friend, error)
	AreFriends(a, b string) (bool, error)
	ListPendingRequests(userID string) ([]models.FriendRequest, error)
}

// FriendService manages the request/accept friendship flow. Friendship is
// two-sided: an invitation stays pending until the invitee accepts, and only
// confirmed edges gate combined-watchlist access.
type FriendService struct {
	repo  FriendStore
	users IdentityStore
}

// NewFriendService creates a new FriendService.
func NewFriendService(repo FriendStore, users IdentityStore) *FriendService {
	return &FriendService{repo: repo, users: users}
}

// Invite creates a pending request to the user with the given external id.
// The invitee's internal identity is created on first reference.
func (s *FriendService) Invite(ctx context.Context, userID, friendExternalID string) (*models.FriendRequest, error) {
	friendID, err := s.resolveFriendID(friendExternalID)
	if err != nil {
		return nil, err
	}
	if friendID == userID {
		return nil, fmt.Errorf("cannot invite yourself")
	}

	req, err := s.repo.CreateRequest(userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return req, nil
}

// Accept confirms a pending request. Only the invitee may accept.
func (s *FriendService) Accept(ctx context.Context, userID string, requestID int) error {
	req, err := s.repo.GetRequest(requestID)
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	if req.FriendID != userID {
		return models.ErrNotFound
	}

	err = s.repo.AcceptRequest(requestID)
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return nil
}

// Remove deletes the friendship in both directions.
func (s *FriendService) Remove(ctx context.Context, userID, friendID string) error {
	if err := s.repo.RemoveFriend(userID, friendID); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return nil
}

// List returns the user's confirmed friends.
func (s *FriendService) List(ctx context.Context, userID string) ([]models.Friend, error) {
	friends, err := s.repo.ListFriends(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return friends, nil
}

// PendingRequests returns invitations awaiting the user's acceptance.
func (s *FriendService) PendingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	reqs, err := s.repo.ListPendingRequests(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return reqs, nil
}

// AreFriends reports whether a confirmed edge exists in either direction.
func (s *FriendService) AreFriends(a, b string) (bool, error) {
	return s.repo.AreFriends(a, b)
}

func (s *FriendService) resolveFriendID(friendExternalID string) (string, error) {
	user, err := s.users.GetByExternalID(friendExternalID)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	id, err := s.users.Resolve(friendExternalID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return id, nil
}
