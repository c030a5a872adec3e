package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// UserRepository handles database operations for identity mappings.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Resolve returns the internal id for an external auth id, creating the
// mapping on first use. The upsert resolves concurrent first calls to a
// single row: the conflict branch is a no-op update so RETURNING always
// yields the surviving id.
func (r *UserRepository) Resolve(externalID string) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO users (id, external_id)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id
	`, uuid.NewString(), externalID).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("resolve identity: %w", err)
	}
	return id, nil
}

// GetByID returns a user by internal id.
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		SELECT id, external_id, username, email, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.ExternalID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByExternalID returns a user by external auth id.
func (r *UserRepository) GetByExternalID(externalID string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		SELECT id, external_id, username, email, created_at
		FROM users WHERE external_id = $1
	`, externalID).Scan(&user.ID, &user.ExternalID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile fills in the placeholder profile fields. The identity mapping
// itself is immutable; only username and email change.
func (r *UserRepository) UpdateProfile(id, username, email string) error {
	_, err := r.db.Exec(`
		UPDATE users SET username = $1, email = $2 WHERE id = $3
	`, username, email, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
