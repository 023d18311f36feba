package recommend

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kalambet/reelist/internal/library"
	"github.com/kalambet/reelist/internal/prompt"
)

// TextGenerator is the interface to the external generation model.
// Implemented by gemini.Client.
type TextGenerator interface {
	GenerateText(ctx context.Context, promptText string) (string, error)
}

// Generator runs the generation contract: build the prompt, call the model
// once, recover the embedded JSON payload, and validate its shape.
type Generator struct {
	model TextGenerator
}

// NewGenerator creates a Generator backed by the given model client.
func NewGenerator(model TextGenerator) *Generator {
	return &Generator{model: model}
}

// modelPayload mirrors the documented response schema. Absence of the
// recommendations key is a hard failure; a present-but-empty list is not.
type modelPayload struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// Result carries the recommendations together with the run diagnostics the
// caller persists.
type Result struct {
	Recommendations []Recommendation
	Prompt          string
	RawResponse     string
}

// Generate produces the recommendation list for the given profile state.
// Every failure is a *GenError; the store is never touched from here.
func (g *Generator) Generate(ctx context.Context, prefs library.Preferences, history []library.WatchedMovie, surprise bool) (Result, error) {
	p := prompt.Build(prefs, history, surprise)
	res := Result{Prompt: p}

	raw, err := g.model.GenerateText(ctx, p)
	if err != nil {
		return res, genErrorf(err, "model call failed")
	}
	res.RawResponse = raw

	recs, err := Parse(raw)
	if err != nil {
		return res, err
	}

	slog.Debug("generated recommendations", "count", len(recs), "surprise", surprise)
	res.Recommendations = recs
	return res, nil
}

// Parse recovers and validates the recommendation list from raw model text.
func Parse(raw string) ([]Recommendation, error) {
	if raw == "" {
		return nil, genErrorf(nil, "empty response")
	}

	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, genErrorf(err, "unparseable response")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, genErrorf(err, "unparseable response")
	}
	recsRaw, ok := payload["recommendations"]
	if !ok {
		return nil, genErrorf(nil, "response missing recommendations key")
	}

	var recs []Recommendation
	if err := json.Unmarshal(recsRaw, &recs); err != nil {
		return nil, genErrorf(err, "malformed recommendations list")
	}
	return recs, nil
}
