// Package pipeline wires the recommendation flow: stored profile and
// history in, generated and enriched recommendations out, with a run record
// persisted per attempt.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/reelist/internal/library"
	"github.com/kalambet/reelist/internal/omdb"
	"github.com/kalambet/reelist/internal/recommend"
	"github.com/kalambet/reelist/internal/storage"
)

// ErrNoPreferences is returned when no preference profile has been saved
// yet; the caller should direct the user to the questionnaire.
var ErrNoPreferences = errors.New("no preference profile saved; run the questionnaire first")

// Generator produces recommendations from profile state.
// Implemented by recommend.Generator.
type Generator interface {
	Generate(ctx context.Context, prefs library.Preferences, history []library.WatchedMovie, surprise bool) (recommend.Result, error)
}

// MetadataSource resolves poster/rating metadata for a batch of titles.
// Implemented by omdb.Client.
type MetadataSource interface {
	LookupBatch(ctx context.Context, refs []omdb.Ref) []omdb.Movie
}

// RunLog persists run records. Implemented by storage.Store.
type RunLog interface {
	SaveRun(storage.Run) error
}

// Recommender orchestrates one user-initiated recommendation action.
type Recommender struct {
	repo      *library.Repository
	generator Generator
	metadata  MetadataSource
	runs      RunLog
	model     string
}

// NewRecommender creates a Recommender. runs may be nil to skip run logging.
func NewRecommender(repo *library.Repository, gen Generator, metadata MetadataSource, runs RunLog, model string) *Recommender {
	return &Recommender{
		repo:      repo,
		generator: gen,
		metadata:  metadata,
		runs:      runs,
		model:     model,
	}
}

// Run executes the pipeline: load profile state, generate, enrich
// best-effort, record the run. A generation failure aborts this action only
// and is recorded; an enrichment shortfall is invisible except for missing
// poster/rating fields.
func (r *Recommender) Run(ctx context.Context, surprise bool) ([]recommend.Recommendation, error) {
	prefs, ok := r.repo.GetPreferences()
	if !ok {
		return nil, ErrNoPreferences
	}
	history := r.repo.GetWatchHistory()

	result, err := r.generator.Generate(ctx, prefs, history, surprise)
	if err != nil {
		r.record(storage.Run{
			Prompt:   result.Prompt,
			Response: result.RawResponse,
			Status:   "failed",
			Surprise: surprise,
			Error:    err.Error(),
		})
		return nil, err
	}

	recs := r.enrich(ctx, result.Recommendations)

	r.record(storage.Run{
		Prompt:   result.Prompt,
		Response: result.RawResponse,
		Status:   "completed",
		Surprise: surprise,
		RecCount: len(recs),
	})
	return recs, nil
}

// enrich merges metadata onto the recommendations. Partial or total lookup
// failure leaves the affected entries as generated.
func (r *Recommender) enrich(ctx context.Context, recs []recommend.Recommendation) []recommend.Recommendation {
	if r.metadata == nil || len(recs) == 0 {
		return recs
	}

	refs := make([]omdb.Ref, len(recs))
	for i, rec := range recs {
		refs[i] = omdb.Ref{Title: rec.Title, Year: rec.Year}
	}

	movies := r.metadata.LookupBatch(ctx, refs)
	if len(movies) == 0 {
		return recs
	}
	return omdb.Merge(recs, movies)
}

func (r *Recommender) record(run storage.Run) {
	if r.runs == nil {
		return
	}
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()
	run.Model = r.model
	if err := r.runs.SaveRun(run); err != nil {
		slog.Warn("failed to record recommendation run", "error", err)
	}
}
