package quiz

import (
	"fmt"
	"strings"

	"github.com/kalambet/reelist/internal/library"
)

// Step is one questionnaire step with its closed option set.
type Step struct {
	ID       string
	Title    string
	Question string
	Multiple bool
	Options  []string
	Required bool
}

// Steps returns the seven questionnaire steps in presentation order.
func Steps() []Step {
	return []Step{
		{
			ID:       "genres",
			Title:    "What genres do you enjoy?",
			Question: "Select all the genres you like (you can choose multiple):",
			Multiple: true,
			Options: []string{
				"Action", "Adventure", "Animation", "Biography", "Comedy", "Crime",
				"Documentary", "Drama", "Family", "Fantasy", "Film-Noir", "History",
				"Horror", "Music", "Mystery", "Romance", "Sci-Fi", "Sport",
				"Thriller", "War", "Western",
			},
			Required: true,
		},
		{
			ID:       "era",
			Title:    "What movie era appeals to you?",
			Question: "Choose your preferred time period for movies:",
			Options: []string{
				"Classic (pre-1970s)",
				"70s-80s Golden Age",
				"90s-2000s",
				"Recent (2010s-present)",
				"I enjoy movies from all eras",
			},
			Required: true,
		},
		{
			ID:       "mood",
			Title:    "What mood are you in?",
			Question: "Select the types of movies that match your current mood (choose multiple):",
			Multiple: true,
			Options: []string{
				"Light-hearted and fun",
				"Intense and thrilling",
				"Thought-provoking and deep",
				"Romantic and emotional",
				"Dark and mysterious",
				"Inspiring and uplifting",
				"Funny and comedic",
				"Action-packed and exciting",
			},
			Required: true,
		},
		{
			ID:       "contentLevel",
			Title:    "What content level do you prefer?",
			Question: "How comfortable are you with mature content?",
			Options: []string{
				"Family-friendly only",
				"Mild content (PG-13 level)",
				"Moderate content (R level)",
				"Any content level is fine",
			},
			Required: true,
		},
		{
			ID:       "watchTime",
			Title:    "How much time do you have?",
			Question: "What's your preferred movie length?",
			Options: []string{
				"Short (under 90 minutes)",
				"Standard (90-120 minutes)",
				"Long (2-3 hours)",
				"Epic (3+ hours)",
				"Length doesn't matter",
			},
			Required: true,
		},
		{
			ID:       "ratingPreference",
			Title:    "What about movie ratings?",
			Question: "Do you prefer highly-rated movies or are you open to hidden gems?",
			Options: []string{
				"Only highly-rated movies (8+ stars)",
				"Well-rated movies (7+ stars)",
				"Open to hidden gems (6+ stars)",
				"I don't care about ratings",
			},
			Required: true,
		},
		{
			ID:       "scorePreference",
			Title:    "Critics vs Audience?",
			Question: "Whose opinion do you trust more for movie recommendations?",
			Options: []string{
				"Trust critics more",
				"Trust audience more",
				"Balanced approach",
				"I don't pay attention to scores",
			},
			Required: true,
		},
	}
}

// Apply writes validated answers for a step into the profile. Answers must
// come from the step's option set; single-choice steps take exactly one.
func Apply(p *library.Preferences, step Step, answers []string) error {
	if step.Required && len(answers) == 0 {
		return fmt.Errorf("step %s: at least one answer is required", step.ID)
	}
	if !step.Multiple && len(answers) > 1 {
		return fmt.Errorf("step %s: a single answer is expected", step.ID)
	}
	canonical := make([]string, len(answers))
	for i, a := range answers {
		opt, ok := matchOption(step, a)
		if !ok {
			return fmt.Errorf("step %s: %q is not one of the offered options", step.ID, a)
		}
		canonical[i] = opt
	}
	answers = canonical

	switch step.ID {
	case "genres":
		p.Genres = answers
	case "era":
		p.Era = answers[0]
	case "mood":
		p.Mood = answers
	case "contentLevel":
		p.ContentLevel = answers[0]
	case "watchTime":
		p.WatchTime = answers[0]
	case "ratingPreference":
		p.RatingPreference = answers[0]
	case "scorePreference":
		p.ScorePreference = answers[0]
	default:
		return fmt.Errorf("unknown step %q", step.ID)
	}
	return nil
}

// Validate checks a fully assembled profile against the closed option sets.
func Validate(p library.Preferences) error {
	for _, step := range Steps() {
		var answers []string
		switch step.ID {
		case "genres":
			answers = p.Genres
		case "era":
			answers = singleton(p.Era)
		case "mood":
			answers = p.Mood
		case "contentLevel":
			answers = singleton(p.ContentLevel)
		case "watchTime":
			answers = singleton(p.WatchTime)
		case "ratingPreference":
			answers = singleton(p.RatingPreference)
		case "scorePreference":
			answers = singleton(p.ScorePreference)
		}
		if step.Required && len(answers) == 0 {
			return fmt.Errorf("missing answer for %s", step.ID)
		}
		for _, a := range answers {
			if !validOption(step, a) {
				return fmt.Errorf("%s: %q is not one of the offered options", step.ID, a)
			}
		}
	}
	return nil
}

func singleton(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

func validOption(step Step, answer string) bool {
	_, ok := matchOption(step, answer)
	return ok
}

// matchOption resolves an answer to its canonical option casing.
func matchOption(step Step, answer string) (string, bool) {
	for _, opt := range step.Options {
		if strings.EqualFold(opt, answer) {
			return opt, true
		}
	}
	return "", false
}
