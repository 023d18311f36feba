package library

import (
	"fmt"
	"sort"
	"time"
)

// Preferences is the structured answer set from the taste questionnaire.
// A zero value means the questionnaire has not been completed; the quiz
// workflow, not this type, enforces completeness.
type Preferences struct {
	Genres           []string `json:"genres"`
	Era              string   `json:"era"`
	Mood             []string `json:"mood"`
	ContentLevel     string   `json:"contentLevel"`
	WatchTime        string   `json:"watchTime"`
	RatingPreference string   `json:"ratingPreference"`
	ScorePreference  string   `json:"scorePreference"`
}

// WatchedMovie is one watch-history entry. ID is immutable once created;
// all other fields may be edited in place.
type WatchedMovie struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Rating      int    `json:"rating"` // 0–10, 0 = unrated
	WatchedDate string `json:"watchedDate"`
	Poster      string `json:"poster,omitempty"`
}

// Validate checks the field constraints on a history entry.
func (m WatchedMovie) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if m.Year < 1900 || m.Year > time.Now().Year() {
		return fmt.Errorf("year %d out of range [1900, %d]", m.Year, time.Now().Year())
	}
	if m.Rating < 0 || m.Rating > 10 {
		return fmt.Errorf("rating %d out of range [0, 10]", m.Rating)
	}
	return nil
}

// NewEntryID derives a history entry ID from title, year, and creation time.
// Collisions are practically negligible for a single-user history, not
// cryptographically excluded.
func NewEntryID(title string, year int, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", title, year, now.UnixMilli())
}

// SortedByWatchedDate returns a copy of entries ordered most recently
// watched first. This is the display ordering; the stored order (and the
// order fed to the prompt builder) stays insertion order.
func SortedByWatchedDate(entries []WatchedMovie) []WatchedMovie {
	out := make([]WatchedMovie, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WatchedDate > out[j].WatchedDate
	})
	return out
}
