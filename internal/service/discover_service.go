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

const (
	// maxDuplicateRetries bounds regeneration when the model keeps repeating
	// itself or a heavily constrained prompt exhausts the title space.
	maxDuplicateRetries = 3

	suggestionsCacheTTL = 30 * time.Minute
	suggestionCount     = 5
)

// ChatModel is the language model service: one system+user exchange per call.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Catalog is the movie catalog used for enrichment.
type Catalog interface {
	SearchMovie(ctx context.Context, title string, year int) (*models.CatalogResult, error)
}

// WatchlistReader supplies watchlist titles for the prompt context clauses.
type WatchlistReader interface {
	List(userID string) ([]models.WatchlistEntry, error)
}

// UserReader supplies display names for the friend clause.
type UserReader interface {
	GetByID(id string) (*models.User, error)
}

// SuggestionStore supplies stored refinement-suggestion fallbacks.
type SuggestionStore interface {
	ListRandom(n int) ([]string, error)
}

// DiscoverService generates movie recommendations: it composes the model
// request, parses and validates the reply, retries duplicates within a
// bounded budget, and merges catalog enrichment.
type DiscoverService struct {
	model       ChatModel
	catalog     Catalog
	watchlists  WatchlistReader
	users       UserReader
	suggestions SuggestionStore
	sessions    *SessionRegistry
	cache       cache
}

// NewDiscoverService creates a new DiscoverService.
func NewDiscoverService(
	model ChatModel,
	catalog Catalog,
	watchlists WatchlistReader,
	users UserReader,
	suggestions SuggestionStore,
	rdb *redis.Client,
) *DiscoverService {
	return &DiscoverService{
		model:       model,
		catalog:     catalog,
		watchlists:  watchlists,
		users:       users,
		suggestions: suggestions,
		sessions:    NewSessionRegistry(),
		cache:       cache{rdb: rdb},
	}
}

// Generate produces one validated, enriched movie candidate for the user.
// Duplicate suggestions within the session are retried up to the budget;
// enrichment failure degrades to a candidate without poster or catalog id.
func (s *DiscoverService) Generate(ctx context.Context, userID string, req models.GenerateRequest) (*models.MovieCandidate, error) {
	history := s.sessions.History(req.SessionID)

	userTitles, friendName, friendTitles := s.promptContext(userID, req)

	excludedKeys := make(map[string]bool, len(req.ExcludedTitles))
	for _, t := range req.ExcludedTitles {
		excludedKeys[models.TitleKey(t)] = true
	}

	for attempt := 0; attempt <= maxDuplicateRetries; attempt++ {
		excluded := append(history.Titles(), req.ExcludedTitles...)
		content := buildUserContent(req.Prompt, excluded, friendName, userTitles, friendTitles, req.IncludeWatchlist)

		reply, err := s.model.Complete(ctx, movieSystemPrompt, content)
		if err != nil {
			return nil, fmt.Errorf("language model call: %w", err)
		}

		candidate, err := parseCandidate(reply)
		if err != nil {
			return nil, err
		}

		if history.IsDuplicate(candidate.Title, candidate.Year) || excludedKeys[models.TitleKey(candidate.Title)] {
			slog.Debug("duplicate suggestion rejected",
				"title", candidate.Title, "year", candidate.Year, "attempt", attempt)
			continue
		}

		s.enrich(ctx, candidate)
		history.Record(candidate.Title, candidate.Year)
		return candidate, nil
	}

	return nil, models.ErrNoNovelSuggestion
}

// ResetSession starts a fresh discovery session.
func (s *DiscoverService) ResetSession(sessionID string) {
	s.sessions.Reset(sessionID)
}

// enrich merges catalog metadata into the candidate. Failures never leave
// this boundary: no match, network errors and catalog outages all degrade to
// a candidate without poster or catalog id.
func (s *DiscoverService) enrich(ctx context.Context, c *models.MovieCandidate) {
	result, err := s.catalog.SearchMovie(ctx, c.Title, c.Year)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			slog.Warn("catalog enrichment unavailable", "title", c.Title, "error", err)
		}
		return
	}
	c.TMDBId = result.TMDBId
	c.PosterPath = result.PosterPath
	if result.VoteAverage > 0 {
		c.Rating = result.VoteAverage
	}
}

// promptContext gathers the watchlist and friend clauses. All of it is
// best-effort: a failed lookup drops the clause rather than the generation.
func (s *DiscoverService) promptContext(userID string, req models.GenerateRequest) (userTitles []string, friendName string, friendTitles []string) {
	entries, err := s.watchlists.List(userID)
	if err != nil {
		slog.Warn("could not load watchlist for prompt context", "user_id", userID, "error", err)
	}
	for _, e := range entries {
		userTitles = append(userTitles, e.Title)
	}

	if req.FriendID == "" {
		return userTitles, "", nil
	}

	friend, err := s.users.GetByID(req.FriendID)
	if err != nil {
		slog.Warn("could not load friend for prompt context", "friend_id", req.FriendID, "error", err)
		return userTitles, "", nil
	}
	friendName = friend.Username
	if friendName == "" {
		friendName = "your friend"
	}

	friendEntries, err := s.watchlists.List(req.FriendID)
	if err != nil {
		slog.Warn("could not load friend watchlist for prompt context", "friend_id", req.FriendID, "error", err)
	}
	for _, e := range friendEntries {
		friendTitles = append(friendTitles, e.Title)
	}
	return userTitles, friendName, friendTitles
}

// SuggestPrompts returns refinement suggestions for a search prompt. The
// model reply is expected as {"suggestions": [...]}; on any failure the
// stored suggestions serve as fallback.
func (s *DiscoverService) SuggestPrompts(ctx context.Context, req models.SuggestPromptsRequest) (*models.SuggestPromptsResponse, error) {
	cacheKey := fmt.Sprintf("discover:suggestions:%s", req.Prompt)
	if cached, err := s.cache.get(ctx, cacheKey); err == nil {
		var resp models.SuggestPromptsResponse
		if json.Unmarshal([]byte(cached), &resp) == nil {
			slog.Debug("suggestions cache hit", "prompt", req.Prompt)
			return &resp, nil
		}
	}

	suggestions, err := s.modelSuggestions(ctx, req)
	if err != nil {
		slog.Warn("falling back to stored prompt suggestions", "error", err)
		suggestions, err = s.suggestions.ListRandom(suggestionCount)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
		}
	}

	resp := &models.SuggestPromptsResponse{Suggestions: suggestions}
	if data, err := json.Marshal(resp); err == nil {
		s.cache.set(ctx, cacheKey, string(data), suggestionsCacheTTL)
	}
	return resp, nil
}

func (s *DiscoverService) modelSuggestions(ctx context.Context, req models.SuggestPromptsRequest) ([]string, error) {
	reply, err := s.model.Complete(ctx, suggestionSystemPrompt, buildSuggestionContent(req.Prompt, req.Refinements))
	if err != nil {
		return nil, fmt.Errorf("language model call: %w", err)
	}

	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil || len(parsed.Suggestions) == 0 {
		return nil, fmt.Errorf("unusable suggestions reply")
	}
	if len(parsed.Suggestions) > suggestionCount {
		parsed.Suggestions = parsed.Suggestions[:suggestionCount]
	}
	return parsed.Suggestions, nil
}
