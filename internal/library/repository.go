package library

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kalambet/reelist/internal/storage"
)

// Storage keys. These match the original browser-local layout so the two
// blobs stay recognizable; both values are opaque serialized JSON.
const (
	keyPreferences  = "movie-recommender-preferences"
	keyWatchHistory = "movie-recommender-watch-history"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Repository provides structured access to the preference profile and the
// watch history stored as two key-value blobs. All mutations are
// read-modify-write serialized by a process-local mutex; cross-process
// writers are last-writer-wins, acceptable for a single-user store.
type Repository struct {
	mu    sync.Mutex
	kv    storage.KV
	clock Clock
}

// NewRepository creates a Repository over the given key-value backend.
// Pass storage.NoopKV{} to run without persistence: every operation then
// succeeds against an empty store.
func NewRepository(kv storage.KV) *Repository {
	return &Repository{kv: kv, clock: realClock{}}
}

// NewRepositoryWithClock creates a Repository with a custom clock (for testing).
func NewRepositoryWithClock(kv storage.KV, clock Clock) *Repository {
	return &Repository{kv: kv, clock: clock}
}

// GetPreferences returns the stored preference profile. ok is false when no
// profile has been saved. A present-but-unparseable blob is reported in the
// log and treated as absent, never propagated.
func (r *Repository) GetPreferences() (Preferences, bool) {
	raw, ok, err := r.kv.Get(keyPreferences)
	if err != nil {
		slog.Warn("reading preferences", "error", err)
		return Preferences{}, false
	}
	if !ok {
		return Preferences{}, false
	}

	var p Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		slog.Warn("corrupt preferences blob, treating as absent", "key", keyPreferences, "error", err)
		return Preferences{}, false
	}
	return p, true
}

// SetPreferences overwrites the stored profile wholesale.
func (r *Repository) SetPreferences(p Preferences) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling preferences: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.kv.Set(keyPreferences, string(b)); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// ClearPreferences removes the stored profile.
func (r *Repository) ClearPreferences() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kv.Delete(keyPreferences)
}

// GetWatchHistory returns all history entries in insertion order. A corrupt
// blob is reported in the log and treated as empty.
func (r *Repository) GetWatchHistory() []WatchedMovie {
	raw, ok, err := r.kv.Get(keyWatchHistory)
	if err != nil {
		slog.Warn("reading watch history", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var history []WatchedMovie
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		slog.Warn("corrupt watch history blob, treating as empty", "key", keyWatchHistory, "error", err)
		return nil
	}
	return history
}

// AddWatchEntry validates and appends a history entry. A missing ID is
// derived from title, year, and the current time; a missing watched date
// defaults to now. The stored entry is returned.
func (r *Repository) AddWatchEntry(m WatchedMovie) (WatchedMovie, error) {
	now := r.clock.Now()
	if m.ID == "" {
		m.ID = NewEntryID(m.Title, m.Year, now)
	}
	if m.WatchedDate == "" {
		m.WatchedDate = now.UTC().Format(time.RFC3339)
	}
	if err := m.Validate(); err != nil {
		return WatchedMovie{}, fmt.Errorf("invalid history entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	history := r.GetWatchHistory()
	history = append(history, m)
	if err := r.saveHistory(history); err != nil {
		return WatchedMovie{}, err
	}
	return m, nil
}

// EntryUpdate carries the mutable fields of a history entry; nil fields are
// left unchanged. The ID itself is immutable.
type EntryUpdate struct {
	Title       *string `json:"title,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	WatchedDate *string `json:"watchedDate,omitempty"`
	Poster      *string `json:"poster,omitempty"`
}

// UpdateWatchEntry applies a partial update to the entry with the given ID.
// An unknown ID is logged and ignored, not an error.
func (r *Repository) UpdateWatchEntry(id string, upd EntryUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.GetWatchHistory()
	found := false
	for i := range history {
		if history[i].ID != id {
			continue
		}
		found = true
		if upd.Title != nil {
			history[i].Title = *upd.Title
		}
		if upd.Year != nil {
			history[i].Year = *upd.Year
		}
		if upd.Rating != nil {
			history[i].Rating = *upd.Rating
		}
		if upd.WatchedDate != nil {
			history[i].WatchedDate = *upd.WatchedDate
		}
		if upd.Poster != nil {
			history[i].Poster = *upd.Poster
		}
		if err := history[i].Validate(); err != nil {
			return fmt.Errorf("invalid update for entry %q: %w", id, err)
		}
		break
	}

	if !found {
		slog.Warn("watch history entry not found, skipping update", "id", id)
		return nil
	}
	return r.saveHistory(history)
}

// RemoveWatchEntry deletes the entry with the given ID. Removing an absent
// ID is a no-op.
func (r *Repository) RemoveWatchEntry(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.GetWatchHistory()
	filtered := history[:0]
	for _, m := range history {
		if m.ID != id {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == len(history) {
		return nil
	}
	return r.saveHistory(filtered)
}

// ClearWatchHistory removes the entire history.
func (r *Repository) ClearWatchHistory() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kv.Delete(keyWatchHistory)
}

// ClearAll removes both the profile and the history.
func (r *Repository) ClearAll() error {
	if err := r.ClearPreferences(); err != nil {
		return err
	}
	return r.ClearWatchHistory()
}

func (r *Repository) saveHistory(history []WatchedMovie) error {
	b, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshalling watch history: %w", err)
	}
	if err := r.kv.Set(keyWatchHistory, string(b)); err != nil {
		return fmt.Errorf("saving watch history: %w", err)
	}
	return nil
}
