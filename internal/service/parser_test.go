package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwellyoung/cinesync/internal/models"
)

func TestParseCandidateJSON(t *testing.T) {
	raw := `{"title": "Forrest Gump", "year": 1994, "director": "Robert Zemeckis", "rating": 8.8, "overview": "A man with a low IQ witnesses defining historical events."}`

	c, err := parseCandidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Forrest Gump", c.Title)
	assert.Equal(t, 1994, c.Year)
	assert.Equal(t, "Robert Zemeckis", c.Director)
	assert.Equal(t, 8.8, c.Rating)
	assert.Equal(t, "A man with a low IQ witnesses defining historical events.", c.Overview)
}

func TestParseCandidateJSONInCodeFence(t *testing.T) {
	raw := "Here is a suggestion:\n```json\n{\"title\": \"Dune\", \"year\": 2021, \"director\": \"Denis Villeneuve\", \"rating\": 8.0, \"overview\": \"A noble family is drawn into a war over a desert planet.\"}\n```"

	c, err := parseCandidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Dune", c.Title)
	assert.Equal(t, 2021, c.Year)
}

func TestParseCandidateJSONStringNumbers(t *testing.T) {
	raw := `{"title": "Heat", "year": "1995", "director": "Michael Mann", "rating": "8.3", "overview": "A crew of thieves is pursued by an obsessive detective."}`

	c, err := parseCandidate(raw)
	require.NoError(t, err)
	assert.Equal(t, 1995, c.Year)
	assert.Equal(t, 8.3, c.Rating)
}

func TestParseCandidateJSONSurroundedByProse(t *testing.T) {
	raw := `Sure! How about this one: {"title": "Se7en", "year": 1995, "director": "David Fincher", "rating": 8.6, "overview": "Two detectives hunt a serial killer who uses the seven deadly sins."} Enjoy!`

	c, err := parseCandidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Se7en", c.Title)
}

func TestParseCandidateLabeledLines(t *testing.T) {
	raw := "Title: Forrest Gump\nYear: 1994\nDirector: Robert Zemeckis\nRating: 8.8/10\nOverview: A man with a low IQ witnesses defining historical events."

	c, err := parseCandidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Forrest Gump", c.Title)
	assert.Equal(t, 1994, c.Year)
	assert.Equal(t, "Robert Zemeckis", c.Director)
	assert.Equal(t, 8.8, c.Rating)
	assert.Equal(t, "A man with a low IQ witnesses defining historical events.", c.Overview)
}

// Both accepted reply shapes must produce the same candidate.
func TestParseCandidateFormatsEquivalent(t *testing.T) {
	jsonRaw := `{"title": "Alien", "year": 1979, "director": "Ridley Scott", "rating": 8.5, "overview": "The crew of a commercial spacecraft encounters a deadly lifeform."}`
	labeledRaw := "Title: Alien\nYear: 1979\nDirector: Ridley Scott\nRating: 8.5\nOverview: The crew of a commercial spacecraft encounters a deadly lifeform."

	fromJSON, err := parseCandidate(jsonRaw)
	require.NoError(t, err)
	fromLabeled, err := parseCandidate(labeledRaw)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromLabeled)
}

func TestParseCandidateOverviewKeepsEmbeddedNewlines(t *testing.T) {
	raw := "Title: Magnolia\nYear: 1999\nDirector: Paul Thomas Anderson\nRating: 8.0\nOverview: An epic mosaic of interrelated characters.\nTheir lives intersect over one day in the San Fernando Valley."

	c, err := parseCandidate(raw)
	require.NoError(t, err)
	assert.Contains(t, c.Overview, "interrelated characters")
	assert.Contains(t, c.Overview, "San Fernando Valley")
}

func TestParseCandidateMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"free prose", "I think you would enjoy a nice thriller tonight."},
		{"missing year", `{"title": "Heat", "director": "Michael Mann", "rating": 8.3, "overview": "Thieves and cops."}`},
		{"missing title label", "Year: 1994\nDirector: Robert Zemeckis\nRating: 8.8\nOverview: Something."},
		{"model declined", `{"error": "I cannot recommend a movie for that prompt."}`},
		{"empty reply", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCandidate(tt.raw)
			require.Error(t, err)

			var malformed *models.MalformedSuggestionError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.raw, malformed.Raw)
		})
	}
}

func TestParseCandidateValidationFailureIsMalformed(t *testing.T) {
	raw := `{"title": "Ghost Film", "year": 1500, "director": "Nobody", "rating": 5, "overview": "A film from before film existed."}`

	_, err := parseCandidate(raw)
	var malformed *models.MalformedSuggestionError
	require.True(t, errors.As(err, &malformed))
}

func TestParseRating(t *testing.T) {
	r, err := parseRating("8.5")
	require.NoError(t, err)
	assert.Equal(t, 8.5, r)

	r, err = parseRating("8.5/10")
	require.NoError(t, err)
	assert.Equal(t, 8.5, r)

	r, err = parseRating("9")
	require.NoError(t, err)
	assert.Equal(t, 9.0, r)

	_, err = parseRating("")
	assert.Error(t, err)
	_, err = parseRating("excellent")
	assert.Error(t, err)
}
