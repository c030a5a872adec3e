package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// WatchlistRepository handles database operations for canonical movies and
// watchlist edges. Rating encode/decode happens here and nowhere else.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// UpsertMovie inserts or updates the canonical movie record for a candidate
// and returns its internal id. The catalog id is the stronger key and wins
// when present; otherwise (title_key, year) dedups the record.
func (r *WatchlistRepository) UpsertMovie(c *models.MovieCandidate) (int, error) {
	var id int
	var err error

	titleKey := models.TitleKey(c.Title)
	rating := models.EncodeRating(c.Rating)

	if c.TMDBId > 0 {
		err = r.db.QueryRow(`
			INSERT INTO movies (tmdb_id, title, title_key, year, director, overview, rating, poster_path, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (tmdb_id) DO UPDATE SET
				title = EXCLUDED.title,
				title_key = EXCLUDED.title_key,
				year = EXCLUDED.year,
				director = EXCLUDED.director,
				overview = EXCLUDED.overview,
				rating = EXCLUDED.rating,
				poster_path = EXCLUDED.poster_path,
				updated_at = EXCLUDED.updated_at
			RETURNING id
		`, c.TMDBId, c.Title, titleKey, c.Year, c.Director, c.Overview,
			rating, c.PosterPath, time.Now()).Scan(&id)
	} else {
		err = r.db.QueryRow(`
			INSERT INTO movies (title, title_key, year, director, overview, rating, poster_path, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (title_key, year) DO UPDATE SET
				title = EXCLUDED.title,
				director = EXCLUDED.director,
				overview = EXCLUDED.overview,
				rating = EXCLUDED.rating,
				poster_path = EXCLUDED.poster_path,
				updated_at = EXCLUDED.updated_at
			RETURNING id
		`, c.Title, titleKey, c.Year, c.Director, c.Overview,
			rating, c.PosterPath, time.Now()).Scan(&id)
	}

	if err != nil {
		return 0, fmt.Errorf("upsert movie: %w", err)
	}
	return id, nil
}

// AddEntry inserts a (user, movie) edge. The uniqueness constraint serializes
// concurrent adds; an existing edge reports added=false without error.
func (r *WatchlistRepository) AddEntry(userID string, movieID int) (bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO watchlist (user_id, movie_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, movie_id) DO NOTHING
	`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("add watchlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add watchlist entry: %w", err)
	}
	return n > 0, nil
}

// RemoveEntry deletes the (user, movie) edge. Removing a missing edge is a
// no-op.
func (r *WatchlistRepository) RemoveEntry(userID string, movieID int) error {
	_, err := r.db.Exec(`
		DELETE FROM watchlist WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if err != nil {
		return fmt.Errorf("remove watchlist entry: %w", err)
	}
	return nil
}

// SetStatus toggles a watchlist entry between to_watch and watched.
func (r *WatchlistRepository) SetStatus(userID string, movieID int, status string) error {
	res, err := r.db.Exec(`
		UPDATE watchlist SET status = $1 WHERE user_id = $2 AND movie_id = $3
	`, status, userID, movieID)
	if err != nil {
		return fmt.Errorf("set watchlist status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set watchlist status: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List returns a user's watchlist in insertion order.
func (r *WatchlistRepository) List(userID string) ([]models.WatchlistEntry, error) {
	rows, err := r.db.Query(`
		SELECT m.id, COALESCE(m.tmdb_id, 0), m.title, m.year, m.director,
			m.overview, COALESCE(m.rating, 0), COALESCE(m.poster_path, ''),
			w.status, w.created_at
		FROM watchlist w
		INNER JOIN movies m ON m.id = w.movie_id
		WHERE w.user_id = $1
		ORDER BY w.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListCombined returns the union of two users' watchlists, de-duplicated by
// movie identity. The friendship check is the caller's responsibility.
func (r *WatchlistRepository) ListCombined(userID, friendID string) ([]models.WatchlistEntry, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT ON (m.id)
			m.id, COALESCE(m.tmdb_id, 0), m.title, m.year, m.director,
			m.overview, COALESCE(m.rating, 0), COALESCE(m.poster_path, ''),
			w.status, w.created_at
		FROM watchlist w
		INNER JOIN movies m ON m.id = w.movie_id
		WHERE w.user_id = $1 OR w.user_id = $2
		ORDER BY m.id, w.created_at
	`, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("list combined watchlist: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.WatchlistEntry, error) {
	entries := make([]models.WatchlistEntry, 0)
	for rows.Next() {
		var e models.WatchlistEntry
		var rating int
		if err := rows.Scan(&e.MovieID, &e.TMDBId, &e.Title, &e.Year, &e.Director,
			&e.Overview, &rating, &e.PosterPath, &e.Status, &e.AddedAt); err != nil {
			slog.Error("failed to scan watchlist row", "error", err)
			continue
		}
		e.Rating = models.DecodeRating(rating)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
