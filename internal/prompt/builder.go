// Package prompt assembles the instruction text sent to the generation
// model. Building is a pure function of the preference profile, the watch
// history, and the surprise flag; no I/O happens here.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kalambet/reelist/internal/library"
)

// NoHistorySentence is emitted when the watch history is empty.
const NoHistorySentence = "No watch history available."

// SurpriseInstruction tells the model to deviate from the stated
// preferences. It is present exactly when surprise mode is on.
const SurpriseInstruction = "IMPORTANT: The user wants to be surprised! " +
	"Ignore some of their preferences and suggest unexpected but great movies " +
	"that might expand their horizons."

// Build renders the full recommendation prompt. History entries are listed
// in the order given (insertion order), not date-sorted: the model should
// see the history as it was accumulated.
func Build(prefs library.Preferences, history []library.WatchedMovie, surprise bool) string {
	var sb strings.Builder

	sb.WriteString("You are an expert movie recommendation AI. Based on the user's preferences and watch history, suggest 8-10 movies that match their taste.\n\n")

	sb.WriteString("User Preferences:\n")
	sb.WriteString("- Favorite Genres: " + strings.Join(prefs.Genres, ", ") + "\n")
	sb.WriteString("- Preferred Era: " + prefs.Era + "\n")
	sb.WriteString("- Mood/Tone: " + strings.Join(prefs.Mood, ", ") + "\n")
	sb.WriteString("- Content Level: " + prefs.ContentLevel + "\n")
	sb.WriteString("- Watch Time: " + prefs.WatchTime + "\n")
	sb.WriteString("- Rating Preference: " + prefs.RatingPreference + "\n")
	sb.WriteString("- Score Preference: " + prefs.ScorePreference)

	if len(history) > 0 {
		sb.WriteString("\n\nWatch History (with ratings):\n")
		lines := make([]string, len(history))
		for i, m := range history {
			lines[i] = fmt.Sprintf("- %s (%d) - Rating: %d/10", m.Title, m.Year, m.Rating)
		}
		sb.WriteString(strings.Join(lines, "\n"))
	} else {
		sb.WriteString("\n\n" + NoHistorySentence)
	}

	if surprise {
		sb.WriteString("\n\n" + SurpriseInstruction)
	}

	sb.WriteString(`

Please respond with a JSON object in this exact format:
{
  "recommendations": [
    {
      "title": "Movie Title",
      "year": 2023,
      "genre": ["Action", "Thriller"],
      "description": "Brief plot description (2-3 sentences)",
      "reasoning": "Why this movie matches their preferences (1-2 sentences)"
    }
  ]
}

Guidelines:
- Include a mix of well-known and hidden gems
- Consider the user's rating preferences (highly-rated vs hidden gems)
- Balance their genre preferences with their mood and content preferences
- If they have watch history, consider patterns in their ratings
- For surprise recommendations, suggest movies that are excellent but might not perfectly match their stated preferences
- Ensure all movies are real and available
- Provide diverse recommendations within their preferences
- Make reasoning specific and helpful

Return only the JSON object, no additional text.`)

	return sb.String()
}
