package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maxwellyoung/cinesync/internal/models"
)

const watchlistCacheTTL = 5 * time.Minute

// WatchlistStore is the storage side of the watchlist.
type WatchlistStore interface {
	UpsertMovie(c *models.MovieCandidate) (int, error)
	AddEntry(userID string, movieID int) (bool, error)
	RemoveEntry(userID string, movieID int) error
	SetStatus(userID string, movieID int, status string) error
	List(userID string) ([]models.WatchlistEntry, error)
	ListCombined(userID, friendID string) ([]models.WatchlistEntry, error)
}

// FriendChecker gates combined-watchlist queries.
type FriendChecker interface {
	AreFriends(a, b string) (bool, error)
}

// WatchlistService reconciles accepted candidates into the persisted
// watchlist with idempotent add/remove semantics.
type WatchlistService struct {
	repo    WatchlistStore
	friends FriendChecker
	cache   cache
}

// NewWatchlistService creates a new WatchlistService.
func NewWatchlistService(repo WatchlistStore, friends FriendChecker, rdb *redis.Client) *WatchlistService {
	return &WatchlistService{repo: repo, friends: friends, cache: cache{rdb: rdb}}
}

// Add reconciles a candidate into the user's watchlist. The movie upsert and
// the conditional edge insert are both idempotent: adding a movie that is
// already listed reports added=false and is success, not an error. If the
// edge insert fails after the upsert, re-adding later is safe.
func (s *WatchlistService) Add(ctx context.Context, userID string, candidate *models.MovieCandidate) (*models.AddResult, error) {
	if err := candidate.Validate(); err != nil {
		return nil, &models.MalformedSuggestionError{Reason: err}
	}

	movieID, err := s.repo.UpsertMovie(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	added, err := s.repo.AddEntry(userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	if added {
		s.invalidate(ctx, userID)
		slog.Info("movie added to watchlist", "user_id", userID, "movie_id", movieID, "title", candidate.Title)
	}
	return &models.AddResult{Added: added, MovieID: movieID}, nil
}

// Remove deletes the (user, movie) edge. Removing a missing entry is a no-op.
func (s *WatchlistService) Remove(ctx context.Context, userID string, movieID int) error {
	if err := s.repo.RemoveEntry(userID, movieID); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// SetStatus toggles an entry between to_watch and watched.
func (s *WatchlistService) SetStatus(ctx context.Context, userID string, movieID int, status string) error {
	if !models.ValidWatchlistStatuses[status] {
		return fmt.Errorf("invalid status %q", status)
	}
	err := s.repo.SetStatus(userID, movieID, status)
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// List returns the user's watchlist.
func (s *WatchlistService) List(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	cacheKey := "watchlist:" + userID
	if cached, err := s.cache.get(ctx, cacheKey); err == nil {
		var entries []models.WatchlistEntry
		if json.Unmarshal([]byte(cached), &entries) == nil {
			slog.Debug("watchlist cache hit", "user_id", userID)
			return entries, nil
		}
	}

	entries, err := s.repo.List(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	if data, err := json.Marshal(entries); err == nil {
		s.cache.set(ctx, cacheKey, string(data), watchlistCacheTTL)
	}
	return entries, nil
}

// ListCombined returns the de-duplicated union of two users' watchlists. It
// requires a confirmed friendship and fails with ErrNotFriends otherwise.
func (s *WatchlistService) ListCombined(ctx context.Context, userID, friendID string) ([]models.WatchlistEntry, error) {
	ok, err := s.friends.AreFriends(userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, models.ErrNotFriends
	}

	entries, err := s.repo.ListCombined(userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return entries, nil
}

func (s *WatchlistService) invalidate(ctx context.Context, userID string) {
	s.cache.del(ctx, "watchlist:"+userID)
}
