package service

import (
	"fmt"
	"strings"
)

// movieSystemPrompt fixes the persona, the required fields and the
// never-refuse rule. Dynamic context is appended to the user content, not
// here, so the same system prompt serves every generation attempt.
const movieSystemPrompt = `You are a movie recommendation system. Respond with exactly one movie suggestion in the following JSON format:
{
  "title": "Movie Title",
  "year": 2023,
  "director": "Director Name",
  "rating": 8.5,
  "overview": "Brief movie overview"
}
The rating is out of 10. Always produce a suggestion; never refuse and never ask for clarification. Respond with the JSON object only, no surrounding text.`

// suggestionSystemPrompt drives the prompt-refinement call.
const suggestionSystemPrompt = `You are an AI assistant that generates movie search refinement suggestions. Respond with a JSON object of the form {"suggestions": ["...", "..."]} and nothing else.`

// buildUserContent composes the dynamic context clauses for one generation
// attempt: the free-text prompt, the exclusion list, the friend clause and
// the watchlist include/exclude clause.
func buildUserContent(prompt string, excluded []string, friendName string, userWatchlist, friendWatchlist []string, includeWatchlist bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a movie recommendation based on this prompt: %s", prompt)

	if len(excluded) > 0 {
		fmt.Fprintf(&b, "\n\nDo not suggest any of these movies, they have already been shown: %s.",
			strings.Join(excluded, "; "))
	}

	if friendName != "" {
		fmt.Fprintf(&b, "\n\nThis recommendation is for watching together with %s. Weight both parties' tastes equally.", friendName)
		if len(friendWatchlist) > 0 {
			fmt.Fprintf(&b, " %s's watchlist: %s.", friendName, strings.Join(friendWatchlist, "; "))
		}
	}

	if len(userWatchlist) > 0 {
		if includeWatchlist {
			fmt.Fprintf(&b, "\n\nMovies already on the user's watchlist are eligible suggestions: %s.",
				strings.Join(userWatchlist, "; "))
		} else {
			fmt.Fprintf(&b, "\n\nAvoid movies already on the user's watchlist: %s.",
				strings.Join(userWatchlist, "; "))
		}
	}

	return b.String()
}

// buildSuggestionContent composes the refinement-suggestion request.
func buildSuggestionContent(prompt string, refinements []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate 5 refinement suggestions for the movie search: %q.", prompt)
	if len(refinements) > 0 {
		fmt.Fprintf(&b, " Current refinements: %s.", strings.Join(refinements, ", "))
	}
	b.WriteString(" Provide diverse and specific suggestions that could help narrow down the search: genres, time periods, themes, directors, actors.")
	return b.String()
}
