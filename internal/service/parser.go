package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// The model's reply shape is not guaranteed. Two shapes are accepted, tried
// in order: a JSON object with title/year/director/rating/overview keys, and
// a labeled-line format (Title: ... / Year: ... / Director: ... /
// Rating: ... / Overview: ..., overview capturing the rest of the text).
// Parsing is pure: same text in, same result out. Missing fields are never
// guessed.

var (
	codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	yearRe      = regexp.MustCompile(`\d{4}`)

	titleLineRe    = regexp.MustCompile(`(?mi)^\s*title:\s*(.+)$`)
	yearLineRe     = regexp.MustCompile(`(?mi)^\s*year:\s*(.+)$`)
	directorLineRe = regexp.MustCompile(`(?mi)^\s*director:\s*(.+)$`)
	ratingLineRe   = regexp.MustCompile(`(?mi)^\s*rating:\s*(.+)$`)
	overviewRe     = regexp.MustCompile(`(?si)\boverview:\s*(.+)$`)
)

// parseCandidate extracts a movie candidate from a raw model reply. On any
// extraction or validation failure it returns a MalformedSuggestionError
// carrying the raw reply.
func parseCandidate(raw string) (*models.MovieCandidate, error) {
	c, err := parseJSONReply(raw)
	if err != nil {
		c, err = parseLabeledReply(raw)
	}
	if err != nil {
		return nil, &models.MalformedSuggestionError{Raw: raw, Reason: err}
	}
	if err := c.Validate(); err != nil {
		return nil, &models.MalformedSuggestionError{Raw: raw, Reason: err}
	}
	return c, nil
}

// jsonReply tolerates string-or-number year and rating values.
type jsonReply struct {
	Title    string          `json:"title"`
	Year     json.RawMessage `json:"year"`
	Director string          `json:"director"`
	Rating   json.RawMessage `json:"rating"`
	Overview string          `json:"overview"`
	Error    string          `json:"error"`
}

func parseJSONReply(raw string) (*models.MovieCandidate, error) {
	text := raw
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	// Trim any prose around the object.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	text = text[start : end+1]

	var reply jsonReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("model declined: %s", reply.Error)
	}

	year, err := parseYear(rawToString(reply.Year))
	if err != nil {
		return nil, err
	}
	rating, err := parseRating(rawToString(reply.Rating))
	if err != nil {
		return nil, err
	}

	return &models.MovieCandidate{
		Title:    reply.Title,
		Year:     year,
		Director: reply.Director,
		Rating:   rating,
		Overview: reply.Overview,
	}, nil
}

func parseLabeledReply(raw string) (*models.MovieCandidate, error) {
	title := firstMatch(titleLineRe, raw)
	if title == "" {
		return nil, fmt.Errorf("no Title line in reply")
	}
	yearText := firstMatch(yearLineRe, raw)
	if yearText == "" {
		return nil, fmt.Errorf("no Year line in reply")
	}
	year, err := parseYear(yearText)
	if err != nil {
		return nil, err
	}
	rating, err := parseRating(firstMatch(ratingLineRe, raw))
	if err != nil {
		return nil, err
	}

	// Overview is the last labeled field and captures everything that
	// follows, embedded newlines included.
	overview := ""
	if m := overviewRe.FindStringSubmatch(raw); m != nil {
		overview = strings.TrimSpace(m[1])
	}

	return &models.MovieCandidate{
		Title:    title,
		Year:     year,
		Director: firstMatch(directorLineRe, raw),
		Rating:   rating,
		Overview: overview,
	}, nil
}

func firstMatch(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func rawToString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	return strings.Trim(s, `"`)
}

func parseYear(text string) (int, error) {
	m := yearRe.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("no year in %q", text)
	}
	return strconv.Atoi(m)
}

// parseRating accepts "8.5", "8.5/10" and plain integers.
func parseRating(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("missing rating")
	}
	if i := strings.Index(text, "/"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	r, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rating %q", text)
	}
	return r, nil
}
