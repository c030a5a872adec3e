package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// The mapping is immutable once created, so a long TTL is safe.
const identityCacheTTL = 24 * time.Hour

// IdentityStore is the storage side of the identity resolver.
type IdentityStore interface {
	Resolve(externalID string) (string, error)
	GetByID(id string) (*models.User, error)
	GetByExternalID(externalID string) (*models.User, error)
	UpdateProfile(id, username, email string) error
}

// UserService resolves external auth identities to internal storage
// identities, creating the mapping lazily on first use.
type UserService struct {
	repo  IdentityStore
	cache cache
}

// NewUserService creates a new UserService.
func NewUserService(repo IdentityStore, rdb *redis.Client) *UserService {
	return &UserService{repo: repo, cache: cache{rdb: rdb}}
}

// Resolve returns the internal id for an external auth id. The storage-side
// upsert makes concurrent first calls converge on a single identity; no
// identity is ever fabricated on storage failure.
func (s *UserService) Resolve(ctx context.Context, externalID string) (string, error) {
	cacheKey := "user:ext:" + externalID
	if id, err := s.cache.get(ctx, cacheKey); err == nil && id != "" {
		return id, nil
	}

	id, err := s.repo.Resolve(externalID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	s.cache.set(ctx, cacheKey, id, identityCacheTTL)
	return id, nil
}

// GetUser returns the user record for an internal id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return user, nil
}

// SyncProfile fills in the placeholder profile fields pushed by the auth
// provider. The identity mapping itself never changes.
func (s *UserService) SyncProfile(ctx context.Context, externalID string, req models.SyncUserRequest) (*models.User, error) {
	id, err := s.Resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(id, req.Username, req.Email); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	return s.GetUser(ctx, id)
}
