package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the discovery and watchlist flows. Handlers map these to
// HTTP statuses; everything else is an internal failure.
var (
	// ErrNoNovelSuggestion means the duplicate-retry budget was exhausted
	// without a fresh candidate. The caller should broaden the prompt.
	ErrNoNovelSuggestion = errors.New("no novel suggestion within retry budget")

	// ErrStorageUnavailable wraps any relational-store failure. Add/remove are
	// idempotent, so caller-level retry is safe.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFriends gates combined-watchlist queries.
	ErrNotFriends = errors.New("users are not friends")

	// ErrNotFound is returned by catalog lookups with no results and by point
	// lookups on missing rows.
	ErrNotFound = errors.New("not found")
)

// MalformedSuggestionError reports a model reply that failed field extraction
// or validation. Raw carries the unmodified reply for diagnostics.
type MalformedSuggestionError struct {
	Raw    string
	Reason error
}

func (e *MalformedSuggestionError) Error() string {
	return fmt.Sprintf("malformed suggestion: %v", e.Reason)
}

func (e *MalformedSuggestionError) Unwrap() error {
	return e.Reason
}
