package models

import (
	"fmt"
	"strings"
	"time"
)

// MovieCandidate is a single generated movie recommendation: produced by the
// generator, optionally enriched with catalog metadata, and persisted on
// acceptance.
type MovieCandidate struct {
	Title      string  `json:"title"`
	Year       int     `json:"year"`
	Director   string  `json:"director"`
	Overview   string  `json:"overview"`
	Rating     float64 `json:"rating"`
	PosterPath string  `json:"poster_path,omitempty"`
	TMDBId     int     `json:"tmdb_id,omitempty"`
}

// Candidate years outside this range are treated as model hallucinations.
const (
	MinMovieYear = 1870
)

// Validate checks the required-field invariant. A candidate may be shown to
// the user or persisted only if this returns nil.
func (c *MovieCandidate) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Director = strings.TrimSpace(c.Director)
	c.Overview = strings.TrimSpace(c.Overview)

	if c.Title == "" {
		return fmt.Errorf("missing title")
	}
	if c.Director == "" {
		return fmt.Errorf("missing director")
	}
	if c.Overview == "" {
		return fmt.Errorf("missing overview")
	}
	maxYear := time.Now().Year() + 2
	if c.Year < MinMovieYear || c.Year > maxYear {
		return fmt.Errorf("implausible year %d", c.Year)
	}
	if c.Rating < 0 || c.Rating > 10 {
		return fmt.Errorf("rating %.2f out of range", c.Rating)
	}
	return nil
}

// TitleKey returns the normalized dedup/merge key for a title:
// case-insensitive, surrounding whitespace stripped.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// WatchlistEntry is a persisted (user, movie) edge joined with its canonical
// movie record.
type WatchlistEntry struct {
	MovieID    int       `json:"movie_id"`
	TMDBId     int       `json:"tmdb_id,omitempty"`
	Title      string    `json:"title"`
	Year       int       `json:"year"`
	Director   string    `json:"director"`
	Overview   string    `json:"overview"`
	Rating     float64   `json:"rating"`
	PosterPath string    `json:"poster_path,omitempty"`
	Status     string    `json:"status"`
	AddedAt    time.Time `json:"added_at"`
}

// Watchlist entry statuses.
const (
	StatusToWatch = "to_watch"
	StatusWatched = "watched"
)

// ValidWatchlistStatuses enumerates the allowed status toggles.
var ValidWatchlistStatuses = map[string]bool{
	StatusToWatch: true,
	StatusWatched: true,
}

// AddResult reports whether an add created a new watchlist entry. Added is
// false when the entry already existed, which is still success.
type AddResult struct {
	Added   bool `json:"added"`
	MovieID int  `json:"movie_id"`
}

// EncodeRating converts a 0-10 rating to the 0-1000 integer the watchlist
// table stores. Applied only at the repository boundary.
func EncodeRating(r float64) int {
	return int(r*100 + 0.5)
}

// DecodeRating is the inverse of EncodeRating.
func DecodeRating(stored int) float64 {
	return float64(stored) / 100
}

// CatalogResult is the enrichment payload for one catalog match.
type CatalogResult struct {
	TMDBId      int     `json:"tmdb_id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseYear int     `json:"release_year"`
}
