package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwellyoung/cinesync/internal/models"
)

type stubModel struct {
	replies []string
	err     error
	calls   int
	content []string
}

func (m *stubModel) Complete(ctx context.Context, system, user string) (string, error) {
	m.content = append(m.content, user)
	if m.err != nil {
		return "", m.err
	}
	i := m.calls
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	m.calls++
	return m.replies[i], nil
}

type stubCatalog struct {
	result *models.CatalogResult
	err    error
}

func (c *stubCatalog) SearchMovie(ctx context.Context, title string, year int) (*models.CatalogResult, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.result == nil {
		return nil, models.ErrNotFound
	}
	return c.result, nil
}

type stubWatchlists struct {
	lists map[string][]models.WatchlistEntry
}

func (w *stubWatchlists) List(userID string) ([]models.WatchlistEntry, error) {
	return w.lists[userID], nil
}

type stubUsers struct {
	users map[string]*models.User
}

func (u *stubUsers) GetByID(id string) (*models.User, error) {
	if user, ok := u.users[id]; ok {
		return user, nil
	}
	return nil, models.ErrNotFound
}

type stubSuggestions struct {
	stored []string
	err    error
}

func (s *stubSuggestions) ListRandom(n int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if n > len(s.stored) {
		n = len(s.stored)
	}
	return s.stored[:n], nil
}

func jsonReplyFor(title string, year int) string {
	return fmt.Sprintf(`{"title": %q, "year": %d, "director": "Some Director", "rating": 7.5, "overview": "An overview."}`, title, year)
}

func newTestDiscoverService(model *stubModel, catalog *stubCatalog) *DiscoverService {
	return NewDiscoverService(
		model,
		catalog,
		&stubWatchlists{},
		&stubUsers{},
		&stubSuggestions{stored: []string{"something uplifting", "a slow burn"}},
		nil,
	)
}

func TestGenerateEnrichesFromCatalog(t *testing.T) {
	model := &stubModel{replies: []string{jsonReplyFor("Forrest Gump", 1994)}}
	catalog := &stubCatalog{result: &models.CatalogResult{
		TMDBId:      13,
		Title:       "Forrest Gump",
		PosterPath:  "/poster.jpg",
		VoteAverage: 8.5,
	}}
	svc := newTestDiscoverService(model, catalog)

	c, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{Prompt: "a classic", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Forrest Gump", c.Title)
	assert.Equal(t, 13, c.TMDBId)
	assert.Equal(t, "/poster.jpg", c.PosterPath)
	assert.Equal(t, 8.5, c.Rating)
}

func TestGenerateLabeledLineReply(t *testing.T) {
	model := &stubModel{replies: []string{
		"Title: Forrest Gump\nYear: 1994\nDirector: Robert Zemeckis\nRating: 8.8/10\nOverview: A man witnesses history.",
	}}
	svc := newTestDiscoverService(model, &stubCatalog{})

	c, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{Prompt: "a classic", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Forrest Gump", c.Title)
	assert.Equal(t, 1994, c.Year)
}

func TestGenerateRetriesDuplicates(t *testing.T) {
	model := &stubModel{replies: []string{
		jsonReplyFor("Alien", 1979),
		jsonReplyFor("Alien", 1979),
		jsonReplyFor("Aliens", 1986),
	}}
	svc := newTestDiscoverService(model, &stubCatalog{})
	req := models.GenerateRequest{Prompt: "space horror", SessionID: "s1"}

	first, err := svc.Generate(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "Alien", first.Title)

	second, err := svc.Generate(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "Aliens", second.Title)
	assert.Equal(t, 3, model.calls)

	// The retry prompt names the already surfaced title.
	assert.Contains(t, model.content[len(model.content)-1], "alien")
}

func TestGenerateExhaustsRetryBudget(t *testing.T) {
	model := &stubModel{replies: []string{jsonReplyFor("Alien", 1979)}}
	svc := newTestDiscoverService(model, &stubCatalog{})
	req := models.GenerateRequest{Prompt: "space horror", SessionID: "s1"}

	_, err := svc.Generate(context.Background(), "u1", req)
	require.NoError(t, err)

	model.calls = 0
	_, err = svc.Generate(context.Background(), "u1", req)
	require.ErrorIs(t, err, models.ErrNoNovelSuggestion)
	assert.Equal(t, maxDuplicateRetries+1, model.calls)
}

func TestGenerateRespectsRequestExclusions(t *testing.T) {
	model := &stubModel{replies: []string{
		jsonReplyFor("Alien", 1979),
		jsonReplyFor("The Thing", 1982),
	}}
	svc := newTestDiscoverService(model, &stubCatalog{})

	c, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{
		Prompt:         "space horror",
		SessionID:      "s1",
		ExcludedTitles: []string{"alien"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The Thing", c.Title)
}

func TestGenerateSurvivesEnrichmentFailure(t *testing.T) {
	model := &stubModel{replies: []string{jsonReplyFor("Forrest Gump", 1994)}}
	catalog := &stubCatalog{err: fmt.Errorf("catalog down")}
	svc := newTestDiscoverService(model, catalog)

	c, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{Prompt: "a classic", SessionID: "s1"})
	require.NoError(t, err)
	assert.Zero(t, c.TMDBId)
	assert.Empty(t, c.PosterPath)
	assert.Equal(t, 7.5, c.Rating)
}

func TestGenerateNoCatalogMatchKeepsModelRating(t *testing.T) {
	model := &stubModel{replies: []string{jsonReplyFor("Obscure Film", 1994)}}
	svc := newTestDiscoverService(model, &stubCatalog{})

	c, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{Prompt: "obscure", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 7.5, c.Rating)
	assert.Zero(t, c.TMDBId)
}

func TestGenerateModelError(t *testing.T) {
	model := &stubModel{err: fmt.Errorf("upstream timeout")}
	svc := newTestDiscoverService(model, &stubCatalog{})

	_, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{Prompt: "anything", SessionID: "s1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "language model call")
}

func TestGenerateMalformedReply(t *testing.T) {
	model := &stubModel{replies: []string{"I would rather not pick a movie."}}
	svc := newTestDiscoverService(model, &stubCatalog{})

	_, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{Prompt: "anything", SessionID: "s1"})
	var malformed *models.MalformedSuggestionError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Raw, "rather not")
}

func TestGenerateIncludesWatchlistAndFriendContext(t *testing.T) {
	model := &stubModel{replies: []string{jsonReplyFor("Heat", 1995)}}
	svc := NewDiscoverService(
		model,
		&stubCatalog{},
		&stubWatchlists{lists: map[string][]models.WatchlistEntry{
			"u1": {{Title: "Magnolia"}},
			"f1": {{Title: "Se7en"}},
		}},
		&stubUsers{users: map[string]*models.User{"f1": {ID: "f1", Username: "sam"}}},
		&stubSuggestions{},
		nil,
	)

	_, err := svc.Generate(context.Background(), "u1", models.GenerateRequest{
		Prompt:    "movie night",
		SessionID: "s1",
		FriendID:  "f1",
	})
	require.NoError(t, err)

	content := model.content[0]
	assert.Contains(t, content, "Magnolia")
	assert.Contains(t, content, "watching together with sam")
	assert.Contains(t, content, "Se7en")
	assert.True(t, strings.Contains(content, "Avoid movies already on the user's watchlist"))
}

func TestResetSessionClearsHistory(t *testing.T) {
	model := &stubModel{replies: []string{jsonReplyFor("Alien", 1979)}}
	svc := newTestDiscoverService(model, &stubCatalog{})
	req := models.GenerateRequest{Prompt: "space horror", SessionID: "s1"}

	_, err := svc.Generate(context.Background(), "u1", req)
	require.NoError(t, err)

	svc.ResetSession("s1")

	c, err := svc.Generate(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "Alien", c.Title)
}

func TestSuggestPromptsFromModel(t *testing.T) {
	model := &stubModel{replies: []string{`{"suggestions": ["1980s sci-fi", "practical effects", "cult classics"]}`}}
	svc := newTestDiscoverService(model, &stubCatalog{})

	resp, err := svc.SuggestPrompts(context.Background(), models.SuggestPromptsRequest{Prompt: "sci-fi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1980s sci-fi", "practical effects", "cult classics"}, resp.Suggestions)
}

func TestSuggestPromptsFallsBackToStored(t *testing.T) {
	model := &stubModel{replies: []string{"not json at all"}}
	svc := newTestDiscoverService(model, &stubCatalog{})

	resp, err := svc.SuggestPrompts(context.Background(), models.SuggestPromptsRequest{Prompt: "sci-fi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"something uplifting", "a slow burn"}, resp.Suggestions)
}

func TestSuggestPromptsStorageFailure(t *testing.T) {
	model := &stubModel{err: fmt.Errorf("upstream timeout")}
	svc := NewDiscoverService(model, &stubCatalog{}, &stubWatchlists{}, &stubUsers{}, &stubSuggestions{err: fmt.Errorf("db down")}, nil)

	_, err := svc.SuggestPrompts(context.Background(), models.SuggestPromptsRequest{Prompt: "sci-fi"})
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}
