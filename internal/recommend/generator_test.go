package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kalambet/reelist/internal/library"
)

// --- mock model ---

type mockModel struct {
	generateFn func(ctx context.Context, promptText string) (string, error)
}

func (m *mockModel) GenerateText(ctx context.Context, promptText string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, promptText)
	}
	return `{"recommendations": []}`, nil
}

func testPrefs() library.Preferences {
	return library.Preferences{
		Genres:           []string{"Sci-Fi"},
		Era:              "90s-2000s",
		Mood:             []string{"Thought-provoking and deep"},
		ContentLevel:     "Moderate content (R level)",
		WatchTime:        "Long (2-3 hours)",
		RatingPreference: "Only highly-rated movies (8+ stars)",
		ScorePreference:  "Trust critics more",
	}
}

// --- tests ---

func TestGenerate_HappyPath(t *testing.T) {
	model := &mockModel{
		generateFn: func(ctx context.Context, promptText string) (string, error) {
			return "```json\n{\"recommendations\": [{\"title\": \"Gattaca\", \"year\": 1997, \"genre\": [\"Sci-Fi\"], \"description\": \"d\", \"reasoning\": \"r\"}]}\n```", nil
		},
	}

	g := NewGenerator(model)
	res, err := g.Generate(context.Background(), testPrefs(), nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(res.Recommendations))
	}
	rec := res.Recommendations[0]
	if rec.Title != "Gattaca" || rec.Year != 1997 {
		t.Errorf("got %q (%d), want Gattaca (1997)", rec.Title, rec.Year)
	}
	if res.Prompt == "" || res.RawResponse == "" {
		t.Error("result should carry the prompt and raw response")
	}
}

func TestGenerate_PromptReflectsSurprise(t *testing.T) {
	var seen string
	model := &mockModel{
		generateFn: func(ctx context.Context, promptText string) (string, error) {
			seen = promptText
			return `{"recommendations": []}`, nil
		},
	}

	g := NewGenerator(model)
	if _, err := g.Generate(context.Background(), testPrefs(), nil, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(seen, "wants to be surprised") {
		t.Error("surprise flag should flow into the prompt")
	}
}

func TestGenerate_ModelError(t *testing.T) {
	model := &mockModel{
		generateFn: func(ctx context.Context, promptText string) (string, error) {
			return "", fmt.Errorf("upstream unavailable")
		},
	}

	g := NewGenerator(model)
	res, err := g.Generate(context.Background(), testPrefs(), nil, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	var genErr *GenError
	if !errors.As(err, &genErr) {
		t.Fatalf("error should be a *GenError, got %T", err)
	}
	// The prompt survives for run logging even when the call fails.
	if res.Prompt == "" {
		t.Error("result should carry the prompt on failure")
	}
}

func TestParse_EmptyResponse(t *testing.T) {
	_, err := Parse("")
	var genErr *GenError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenError, got %v", err)
	}
}

func TestParse_MissingRecommendationsKey(t *testing.T) {
	_, err := Parse(`{"movies": []}`)
	var genErr *GenError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenError, got %v", err)
	}
	if !strings.Contains(genErr.Reason, "missing recommendations key") {
		t.Errorf("got reason %q", genErr.Reason)
	}
}

func TestParse_EmptyListIsValid(t *testing.T) {
	recs, err := Parse(`{"recommendations": []}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d recommendations, want 0", len(recs))
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(`{"recommendations": [}`)
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
