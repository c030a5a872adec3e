package models

// GenerateRequest drives one recommendation attempt. ExcludedTitles is
// threaded explicitly so the generator stays a pure function of its inputs
// plus the model call; SessionID scopes the server-side suggestion history.
type GenerateRequest struct {
	Prompt           string   `json:"prompt" validate:"required,min=1,max=500"`
	SessionID        string   `json:"session_id" validate:"required,max=100"`
	ExcludedTitles   []string `json:"excluded_titles" validate:"max=100"`
	FriendID         string   `json:"friend_id"`
	IncludeWatchlist bool     `json:"include_watchlist"`
}

// SuggestPromptsRequest asks for refinement suggestions for a search prompt.
type SuggestPromptsRequest struct {
	Prompt      string   `json:"prompt" validate:"required,min=1,max=500"`
	Refinements []string `json:"refinements" validate:"max=20"`
}

// SuggestPromptsResponse wraps the refinement suggestions.
type SuggestPromptsResponse struct {
	Suggestions []string `json:"suggestions"`
}
