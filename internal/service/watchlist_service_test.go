package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwellyoung/cinesync/internal/models"
)

type fakeWatchlistStore struct {
	movies  map[string]int
	entries map[string]map[int]string
	nextID  int
	failing bool
}

func newFakeWatchlistStore() *fakeWatchlistStore {
	return &fakeWatchlistStore{
		movies:  make(map[string]int),
		entries: make(map[string]map[int]string),
		nextID:  1,
	}
}

func (f *fakeWatchlistStore) movieKey(c *models.MovieCandidate) string {
	if c.TMDBId != 0 {
		return fmt.Sprintf("tmdb:%d", c.TMDBId)
	}
	return fmt.Sprintf("%s|%d", models.TitleKey(c.Title), c.Year)
}

func (f *fakeWatchlistStore) UpsertMovie(c *models.MovieCandidate) (int, error) {
	if f.failing {
		return 0, fmt.Errorf("db down")
	}
	key := f.movieKey(c)
	if id, ok := f.movies[key]; ok {
		return id, nil
	}
	id := f.nextID
	f.nextID++
	f.movies[key] = id
	return id, nil
}

func (f *fakeWatchlistStore) AddEntry(userID string, movieID int) (bool, error) {
	if f.failing {
		return false, fmt.Errorf("db down")
	}
	if f.entries[userID] == nil {
		f.entries[userID] = make(map[int]string)
	}
	if _, ok := f.entries[userID][movieID]; ok {
		return false, nil
	}
	f.entries[userID][movieID] = models.StatusToWatch
	return true, nil
}

func (f *fakeWatchlistStore) RemoveEntry(userID string, movieID int) error {
	delete(f.entries[userID], movieID)
	return nil
}

func (f *fakeWatchlistStore) SetStatus(userID string, movieID int, status string) error {
	if _, ok := f.entries[userID][movieID]; !ok {
		return models.ErrNotFound
	}
	f.entries[userID][movieID] = status
	return nil
}

func (f *fakeWatchlistStore) List(userID string) ([]models.WatchlistEntry, error) {
	var out []models.WatchlistEntry
	for id, status := range f.entries[userID] {
		out = append(out, models.WatchlistEntry{MovieID: id, Status: status})
	}
	return out, nil
}

func (f *fakeWatchlistStore) ListCombined(userID, friendID string) ([]models.WatchlistEntry, error) {
	seen := make(map[int]bool)
	var out []models.WatchlistEntry
	for _, uid := range []string{userID, friendID} {
		for id, status := range f.entries[uid] {
			if !seen[id] {
				seen[id] = true
				out = append(out, models.WatchlistEntry{MovieID: id, Status: status})
			}
		}
	}
	return out, nil
}

type fakeFriendChecker struct {
	friends bool
	err     error
}

func (f *fakeFriendChecker) AreFriends(a, b string) (bool, error) {
	return f.friends, f.err
}

func TestWatchlistAddIdempotent(t *testing.T) {
	store := newFakeWatchlistStore()
	svc := NewWatchlistService(store, &fakeFriendChecker{}, nil)
	candidate := &models.MovieCandidate{
		Title:    "Forrest Gump",
		Year:     1994,
		Director: "Robert Zemeckis",
		Overview: "A man witnesses history.",
		Rating:   8.8,
	}

	first, err := svc.Add(context.Background(), "u1", candidate)
	require.NoError(t, err)
	assert.True(t, first.Added)

	second, err := svc.Add(context.Background(), "u1", candidate)
	require.NoError(t, err)
	assert.False(t, second.Added)
	assert.Equal(t, first.MovieID, second.MovieID)
}

func TestWatchlistAddMergesOnCatalogID(t *testing.T) {
	store := newFakeWatchlistStore()
	svc := NewWatchlistService(store, &fakeFriendChecker{}, nil)

	a := &models.MovieCandidate{Title: "Forrest Gump", Year: 1994, Director: "Robert Zemeckis", Overview: "x", Rating: 8.8, TMDBId: 13}
	b := &models.MovieCandidate{Title: "FORREST GUMP", Year: 1994, Director: "Robert Zemeckis", Overview: "x", Rating: 8.8, TMDBId: 13}

	ra, err := svc.Add(context.Background(), "u1", a)
	require.NoError(t, err)
	rb, err := svc.Add(context.Background(), "u2", b)
	require.NoError(t, err)
	assert.Equal(t, ra.MovieID, rb.MovieID)
}

func TestWatchlistAddRejectsInvalidCandidate(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), &fakeFriendChecker{}, nil)

	_, err := svc.Add(context.Background(), "u1", &models.MovieCandidate{Title: "No Overview", Year: 2020, Director: "Someone"})
	var malformed *models.MalformedSuggestionError
	require.True(t, errors.As(err, &malformed))
}

func TestWatchlistAddStorageFailure(t *testing.T) {
	store := newFakeWatchlistStore()
	store.failing = true
	svc := NewWatchlistService(store, &fakeFriendChecker{}, nil)

	_, err := svc.Add(context.Background(), "u1", &models.MovieCandidate{
		Title: "Heat", Year: 1995, Director: "Michael Mann", Overview: "x", Rating: 8.3,
	})
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestWatchlistRemoveMissingEntryIsNoOp(t *testing.T) {
	svc := NewWatchlistService(newFakeWatchlistStore(), &fakeFriendChecker{}, nil)
	assert.NoError(t, svc.Remove(context.Background(), "u1", 42))
}

func TestWatchlistSetStatus(t *testing.T) {
	store := newFakeWatchlistStore()
	svc := NewWatchlistService(store, &fakeFriendChecker{}, nil)

	res, err := svc.Add(context.Background(), "u1", &models.MovieCandidate{
		Title: "Heat", Year: 1995, Director: "Michael Mann", Overview: "x", Rating: 8.3,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(context.Background(), "u1", res.MovieID, models.StatusWatched))
	assert.Equal(t, models.StatusWatched, store.entries["u1"][res.MovieID])

	err = svc.SetStatus(context.Background(), "u1", res.MovieID, "abandoned")
	assert.Error(t, err)

	err = svc.SetStatus(context.Background(), "u1", 9999, models.StatusWatched)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListCombinedRequiresFriendship(t *testing.T) {
	store := newFakeWatchlistStore()

	svc := NewWatchlistService(store, &fakeFriendChecker{friends: false}, nil)
	_, err := svc.ListCombined(context.Background(), "u1", "u2")
	assert.ErrorIs(t, err, models.ErrNotFriends)

	svc = NewWatchlistService(store, &fakeFriendChecker{friends: true}, nil)
	_, err = svc.ListCombined(context.Background(), "u1", "u2")
	assert.NoError(t, err)
}

func TestListCombinedDeduplicates(t *testing.T) {
	store := newFakeWatchlistStore()
	svc := NewWatchlistService(store, &fakeFriendChecker{friends: true}, nil)
	shared := &models.MovieCandidate{Title: "Heat", Year: 1995, Director: "Michael Mann", Overview: "x", Rating: 8.3}

	_, err := svc.Add(context.Background(), "u1", shared)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), "u2", shared)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), "u2", &models.MovieCandidate{
		Title: "Se7en", Year: 1995, Director: "David Fincher", Overview: "x", Rating: 8.6,
	})
	require.NoError(t, err)

	combined, err := svc.ListCombined(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Len(t, combined, 2)
}
