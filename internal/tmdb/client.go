package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// Client is the TMDB API client used for catalog enrichment and search.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- TMDB Response Types (internal, not exposed to consumers) ----

// searchResponse is the TMDB search/movie response.
type searchResponse struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalResults int         `json:"total_results"`
}

// tmdbMovie is a movie from TMDB search results.
type tmdbMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// ---- Client Methods ----

// SearchMovie looks up a title (optionally filtered by year) and returns the
// first ranked result. No results is models.ErrNotFound, never a failure.
func (c *Client) SearchMovie(ctx context.Context, title string, year int) (*models.CatalogResult, error) {
	results, err := c.SearchMovies(ctx, title, year)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.ErrNotFound
	}
	return &results[0], nil
}

// SearchMovies returns the ranked catalog matches for a query. Pass year 0 to
// search without a year filter.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]models.CatalogResult, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", query)
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	searchURL := fmt.Sprintf("%s/search/movie?%s", c.baseURL, q.Encode())

	slog.Debug("fetching TMDB search", "query", query, "year", year)
	resp, err := c.doGet(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	out := make([]models.CatalogResult, 0, len(result.Results))
	for _, m := range result.Results {
		out = append(out, models.CatalogResult{
			TMDBId:      m.ID,
			Title:       m.Title,
			PosterPath:  m.PosterPath,
			VoteAverage: m.VoteAverage,
			ReleaseYear: releaseYear(m.ReleaseDate),
		})
	}
	return out, nil
}

// doGet performs the request, retrying once on network errors and 5xx
// responses. Deadlines are the caller's via ctx.
func (c *Client) doGet(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}
		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
		}
		return resp, nil
	}
	return nil, lastErr
}

func releaseYear(releaseDate string) int {
	t, err := time.Parse("2006-01-02", releaseDate)
	if err != nil {
		return 0
	}
	return t.Year()
}

// PosterBaseURL is the display base for poster path references.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"
