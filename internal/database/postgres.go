package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/maxwellyoung/cinesync/internal/config"
)

// NewPostgres creates a new PostgreSQL connection and runs migrations.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			external_id VARCHAR(200) UNIQUE NOT NULL,
			username VARCHAR(100) NOT NULL DEFAULT '',
			email VARCHAR(200) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		// rating holds the 0-1000 encoded external rating; tmdb_id is the
		// strong dedup key, (title_key, year) the fallback. NULL tmdb_id rows
		// do not collide under the unique constraint.
		`CREATE TABLE IF NOT EXISTS movies (
			id SERIAL PRIMARY KEY,
			tmdb_id INTEGER UNIQUE,
			title VARCHAR(500) NOT NULL,
			title_key VARCHAR(500) NOT NULL,
			year INTEGER NOT NULL,
			director VARCHAR(300) DEFAULT '',
			overview TEXT DEFAULT '',
			rating INTEGER,
			poster_path VARCHAR(500) DEFAULT '',
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE (title_key, year)
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			movie_id INTEGER REFERENCES movies(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'to_watch',
			created_at TIMESTAMP DEFAULT NOW(),
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS friend_requests (
			id SERIAL PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			friend_id UUID REFERENCES users(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE (user_id, friend_id)
		)`,
		`CREATE TABLE IF NOT EXISTS friendships (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			friend_id UUID REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP DEFAULT NOW(),
			PRIMARY KEY (user_id, friend_id)
		)`,
		`CREATE TABLE IF NOT EXISTS prompt_suggestions (
			id SERIAL PRIMARY KEY,
			suggestion TEXT NOT NULL
		)`,
		// Seed fallback suggestions once; the table may be curated afterwards.
		`INSERT INTO prompt_suggestions (suggestion)
		SELECT s FROM unnest(ARRAY[
			'a feel-good movie for a rainy day',
			'a mind-bending sci-fi thriller',
			'an underrated gem from the 90s',
			'a slow-burn crime drama',
			'something visually stunning',
			'a movie with an unforgettable ending',
			'a foreign film worth the subtitles',
			'a comedy that actually lands'
		]) AS s
		WHERE NOT EXISTS (SELECT 1 FROM prompt_suggestions)`,
		// Indexes for common query patterns
		`CREATE INDEX IF NOT EXISTS idx_movies_title_key ON movies(title_key)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_user ON watchlist(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_friend ON friendships(friend_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
