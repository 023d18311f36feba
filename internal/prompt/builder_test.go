package prompt

import (
	"strings"
	"testing"

	"github.com/kalambet/reelist/internal/library"
)

func testPrefs() library.Preferences {
	return library.Preferences{
		Genres:           []string{"Comedy", "Family"},
		Era:              "Recent (2010s-present)",
		Mood:             []string{"Light-hearted and fun"},
		ContentLevel:     "Family-friendly only",
		WatchTime:        "Standard (90-120 minutes)",
		RatingPreference: "Well-rated movies (7+ stars)",
		ScorePreference:  "Balanced approach",
	}
}

func TestBuild_PreferenceLines(t *testing.T) {
	p := Build(testPrefs(), nil, false)

	wantLines := []string{
		"- Favorite Genres: Comedy, Family",
		"- Preferred Era: Recent (2010s-present)",
		"- Mood/Tone: Light-hearted and fun",
		"- Content Level: Family-friendly only",
		"- Watch Time: Standard (90-120 minutes)",
		"- Rating Preference: Well-rated movies (7+ stars)",
		"- Score Preference: Balanced approach",
	}
	for _, line := range wantLines {
		if !strings.Contains(p, line) {
			t.Errorf("prompt missing line %q", line)
		}
	}
}

func TestBuild_EmptyHistory(t *testing.T) {
	p := Build(testPrefs(), nil, false)

	if !strings.Contains(p, NoHistorySentence) {
		t.Errorf("prompt should contain %q when history is empty", NoHistorySentence)
	}
	if strings.Contains(p, "Watch History (with ratings):") {
		t.Error("prompt should not contain a history section when history is empty")
	}
}

func TestBuild_HistoryInsertionOrder(t *testing.T) {
	history := []library.WatchedMovie{
		{Title: "Paddington 2", Year: 2017, Rating: 9, WatchedDate: "2025-03-01T00:00:00Z"},
		{Title: "The Grand Budapest Hotel", Year: 2014, Rating: 8, WatchedDate: "2024-01-01T00:00:00Z"},
	}
	p := Build(testPrefs(), history, false)

	first := "- Paddington 2 (2017) - Rating: 9/10"
	second := "- The Grand Budapest Hotel (2014) - Rating: 8/10"
	i, j := strings.Index(p, first), strings.Index(p, second)
	if i == -1 || j == -1 {
		t.Fatalf("prompt missing history lines:\n%s", p)
	}
	// Insertion order, not watched-date order.
	if i > j {
		t.Error("history lines should appear in insertion order")
	}
}

func TestBuild_SurpriseInstruction(t *testing.T) {
	without := Build(testPrefs(), nil, false)
	if strings.Contains(without, SurpriseInstruction) {
		t.Error("surprise instruction present without surprise flag")
	}

	with := Build(testPrefs(), nil, true)
	if !strings.Contains(with, SurpriseInstruction) {
		t.Error("surprise instruction missing with surprise flag")
	}
}

func TestBuild_SchemaAndGuidelines(t *testing.T) {
	p := Build(testPrefs(), nil, false)

	for _, want := range []string{
		`"recommendations": [`,
		`"title": "Movie Title"`,
		"Return only the JSON object, no additional text.",
		"Include a mix of well-known and hidden gems",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	history := []library.WatchedMovie{
		{Title: "Arrival", Year: 2016, Rating: 8, WatchedDate: "2024-06-01T00:00:00Z"},
	}
	a := Build(testPrefs(), history, true)
	b := Build(testPrefs(), history, true)
	if a != b {
		t.Error("identical inputs should produce identical prompts")
	}
}
