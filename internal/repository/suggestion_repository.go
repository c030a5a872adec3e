package repository

import (
	"database/sql"
	"fmt"
)

// SuggestionRepository handles the stored prompt-suggestion fallbacks used
// when the model cannot produce refinement suggestions.
type SuggestionRepository struct {
	db *sql.DB
}

// NewSuggestionRepository creates a new SuggestionRepository.
func NewSuggestionRepository(db *sql.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// ListRandom returns up to n stored suggestions in random order.
func (r *SuggestionRepository) ListRandom(n int) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT suggestion FROM prompt_suggestions
		ORDER BY RANDOM()
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("list prompt suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := make([]string, 0, n)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan prompt suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}
