package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// FriendRepository handles database operations for friend requests and
// confirmed friendships.
type FriendRepository struct {
	db *sql.DB
}

// NewFriendRepository creates a new FriendRepository.
func NewFriendRepository(db *sql.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// CreateRequest records a pending invitation. Re-inviting the same user is a
// no-op on the existing row.
func (r *FriendRepository) CreateRequest(userID, friendID string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.QueryRow(`
		INSERT INTO friend_requests (user_id, friend_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, friend_id, status, created_at
	`, userID, friendID).Scan(&req.ID, &req.UserID, &req.FriendID, &req.Status, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	return &req, nil
}

// GetRequest returns a pending request by id.
func (r *FriendRepository) GetRequest(id int) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.QueryRow(`
		SELECT id, user_id, friend_id, status, created_at
		FROM friend_requests WHERE id = $1
	`, id).Scan(&req.ID, &req.UserID, &req.FriendID, &req.Status, &req.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	return &req, nil
}

// AcceptRequest marks the request accepted and creates the friendship edge in
// one transaction.
func (r *FriendRepository) AcceptRequest(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	defer tx.Rollback()

	var userID, friendID string
	err = tx.QueryRow(`
		UPDATE friend_requests SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING user_id, friend_id
	`, models.FriendRequestAccepted, id, models.FriendRequestPending).Scan(&userID, &friendID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("create friendship: %w", err)
	}

	return tx.Commit()
}

// RemoveFriend deletes the edge in both directions. Removing a non-friend is
// a no-op.
func (r *FriendRepository) RemoveFriend(userID, friendID string) error {
	_, err := r.db.Exec(`
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	return nil
}

// ListFriends returns the confirmed friends of a user. Edges are stored once
// per accepted request, so both directions are read.
func (r *FriendRepository) ListFriends(userID string) ([]models.Friend, error) {
	rows, err := r.db.Query(`
		SELECT u.id, u.username
		FROM friendships f
		INNER JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE f.user_id = $1 OR f.friend_id = $1
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	friends := make([]models.Friend, 0)
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// AreFriends reports whether a confirmed edge exists in either direction.
func (r *FriendRepository) AreFriends(a, b string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		)
	`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return exists, nil
}

// ListPendingRequests returns requests awaiting the user's acceptance.
func (r *FriendRepository) ListPendingRequests(userID string) ([]models.FriendRequest, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, friend_id, status, created_at
		FROM friend_requests
		WHERE friend_id = $1 AND status = $2
		ORDER BY created_at
	`, userID, models.FriendRequestPending)
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	defer rows.Close()

	reqs := make([]models.FriendRequest, 0)
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.FriendID, &req.Status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
