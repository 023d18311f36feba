package library

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/reelist/internal/storage"
)

// --- in-memory KV ---

type memKV struct {
	data    map[string]string
	failGet bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.failGet {
		return "", false, fmt.Errorf("backend unavailable")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

func testClock() fixedClock {
	return fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// --- preferences ---

func TestPreferences_RoundTrip(t *testing.T) {
	r := NewRepository(newMemKV())

	if _, ok := r.GetPreferences(); ok {
		t.Fatal("fresh repository should have no preferences")
	}

	want := Preferences{
		Genres:       []string{"Drama", "Thriller"},
		Era:          "90s-2000s",
		Mood:         []string{"Dark and mysterious"},
		ContentLevel: "Any content level is fine",
	}
	if err := r.SetPreferences(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := r.GetPreferences()
	if !ok {
		t.Fatal("preferences should exist after save")
	}
	if got.Era != want.Era || len(got.Genres) != 2 {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPreferences_CorruptBlobTreatedAsAbsent(t *testing.T) {
	kv := newMemKV()
	kv.data["movie-recommender-preferences"] = "{not json"

	r := NewRepository(kv)
	if _, ok := r.GetPreferences(); ok {
		t.Error("corrupt blob should be treated as absent")
	}
}

func TestPreferences_Clear(t *testing.T) {
	r := NewRepository(newMemKV())
	if err := r.SetPreferences(Preferences{Era: "90s-2000s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.ClearPreferences(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.GetPreferences(); ok {
		t.Error("preferences should be gone after clear")
	}
}

// --- watch history ---

func TestAddWatchEntry_AssignsIDAndDate(t *testing.T) {
	clock := testClock()
	r := NewRepositoryWithClock(newMemKV(), clock)

	saved, err := r.AddWatchEntry(WatchedMovie{Title: "Heat", Year: 1995, Rating: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantID := fmt.Sprintf("Heat-1995-%d", clock.t.UnixMilli())
	if saved.ID != wantID {
		t.Errorf("got ID %q, want %q", saved.ID, wantID)
	}
	if saved.WatchedDate != clock.t.Format(time.RFC3339) {
		t.Errorf("got watched date %q", saved.WatchedDate)
	}
}

func TestAddWatchEntry_ValidatesFields(t *testing.T) {
	r := NewRepository(newMemKV())

	cases := []struct {
		name  string
		entry WatchedMovie
	}{
		{"empty title", WatchedMovie{Title: "", Year: 2000}},
		{"year too early", WatchedMovie{Title: "x", Year: 1850}},
		{"year in future", WatchedMovie{Title: "x", Year: time.Now().Year() + 1}},
		{"rating too high", WatchedMovie{Title: "x", Year: 2000, Rating: 11}},
	}
	for _, tc := range cases {
		if _, err := r.AddWatchEntry(tc.entry); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestWatchHistory_InsertionOrder(t *testing.T) {
	r := NewRepositoryWithClock(newMemKV(), testClock())

	for _, title := range []string{"First", "Second", "Third"} {
		if _, err := r.AddWatchEntry(WatchedMovie{Title: title, Year: 2020}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history := r.GetWatchHistory()
	if len(history) != 3 {
		t.Fatalf("got %d entries, want 3", len(history))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if history[i].Title != want {
			t.Errorf("history[%d].Title = %q, want %q", i, history[i].Title, want)
		}
	}
}

func TestWatchHistory_CorruptBlobTreatedAsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data["movie-recommender-watch-history"] = "[broken"

	r := NewRepository(kv)
	if got := r.GetWatchHistory(); got != nil {
		t.Errorf("corrupt blob should read as empty, got %v", got)
	}
}

func TestUpdateWatchEntry_PartialUpdate(t *testing.T) {
	r := NewRepositoryWithClock(newMemKV(), testClock())
	saved, err := r.AddWatchEntry(WatchedMovie{Title: "Heat", Year: 1995})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rating := 10
	if err := r.UpdateWatchEntry(saved.ID, EntryUpdate{Rating: &rating}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := r.GetWatchHistory()
	if history[0].Rating != 10 {
		t.Errorf("got rating %d, want 10", history[0].Rating)
	}
	// Untouched fields survive.
	if history[0].Title != "Heat" || history[0].Year != 1995 {
		t.Errorf("untouched fields changed: %+v", history[0])
	}
}

func TestUpdateWatchEntry_UnknownIDIsNoop(t *testing.T) {
	r := NewRepositoryWithClock(newMemKV(), testClock())
	if _, err := r.AddWatchEntry(WatchedMovie{Title: "Heat", Year: 1995}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rating := 5
	if err := r.UpdateWatchEntry("no-such-id", EntryUpdate{Rating: &rating}); err != nil {
		t.Fatalf("unknown ID should not be an error, got %v", err)
	}
	if r.GetWatchHistory()[0].Rating != 0 {
		t.Error("unknown-ID update should not touch other entries")
	}
}

func TestUpdateWatchEntry_RejectsInvalidResult(t *testing.T) {
	r := NewRepositoryWithClock(newMemKV(), testClock())
	saved, err := r.AddWatchEntry(WatchedMovie{Title: "Heat", Year: 1995})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := 42
	if err := r.UpdateWatchEntry(saved.ID, EntryUpdate{Rating: &bad}); err == nil {
		t.Fatal("expected an error for an out-of-range rating")
	}
}

func TestRemoveWatchEntry_Idempotent(t *testing.T) {
	r := NewRepositoryWithClock(newMemKV(), testClock())
	saved, err := r.AddWatchEntry(WatchedMovie{Title: "Heat", Year: 1995})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := r.RemoveWatchEntry(saved.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.GetWatchHistory()) != 0 {
		t.Fatal("entry should be gone")
	}
	// Second removal of the same ID succeeds silently.
	if err := r.RemoveWatchEntry(saved.ID); err != nil {
		t.Fatalf("repeat removal should be a no-op, got %v", err)
	}
}

func TestClearAll(t *testing.T) {
	r := NewRepositoryWithClock(newMemKV(), testClock())
	if err := r.SetPreferences(Preferences{Era: "90s-2000s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.AddWatchEntry(WatchedMovie{Title: "Heat", Year: 1995}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := r.ClearAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.GetPreferences(); ok {
		t.Error("preferences should be cleared")
	}
	if len(r.GetWatchHistory()) != 0 {
		t.Error("history should be cleared")
	}
}

func TestNoopKV_EverythingSucceedsNothingPersists(t *testing.T) {
	r := NewRepository(storage.NoopKV{})

	if err := r.SetPreferences(Preferences{Era: "90s-2000s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.GetPreferences(); ok {
		t.Error("noop backend should never report stored preferences")
	}
	if _, err := r.AddWatchEntry(WatchedMovie{Title: "Heat", Year: 1995}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.GetWatchHistory()) != 0 {
		t.Error("noop backend should never report stored history")
	}
}

func TestNewEntryID(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	got := NewEntryID("Blade Runner", 1982, now)
	if !strings.HasPrefix(got, "Blade Runner-1982-") {
		t.Errorf("got %q", got)
	}
}

func TestSortedByWatchedDate(t *testing.T) {
	entries := []WatchedMovie{
		{ID: "a", WatchedDate: "2024-01-01T00:00:00Z"},
		{ID: "b", WatchedDate: "2025-01-01T00:00:00Z"},
		{ID: "c", WatchedDate: "2023-01-01T00:00:00Z"},
	}
	sorted := SortedByWatchedDate(entries)

	wantOrder := []string{"b", "a", "c"}
	for i, want := range wantOrder {
		if sorted[i].ID != want {
			t.Errorf("sorted[%d].ID = %q, want %q", i, sorted[i].ID, want)
		}
	}
	// Input stays untouched.
	if entries[0].ID != "a" {
		t.Error("input slice should not be reordered")
	}
}
