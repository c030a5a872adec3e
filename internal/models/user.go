package models

import "time"

// User maps an external auth-provider identity to the internal storage
// identity. The mapping is created lazily on first use and never changes for
// the lifetime of the external id.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// SyncUserRequest is the request body the auth provider pushes to fill in
// placeholder profile fields.
type SyncUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

// Friend is a confirmed friend edge as returned to the caller.
type Friend struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// FriendRequest is a pending invitation; accepting it creates the friendship.
type FriendRequest struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend request statuses.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
)
