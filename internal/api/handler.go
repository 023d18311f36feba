// Package api exposes the recommendation pipeline and the library store
// over a local HTTP API and an MCP server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/reelist/internal/library"
	"github.com/kalambet/reelist/internal/pipeline"
	"github.com/kalambet/reelist/internal/quiz"
	"github.com/kalambet/reelist/internal/recommend"
	"github.com/kalambet/reelist/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// RecommendRunner abstracts the pipeline for the HTTP layer.
type RecommendRunner interface {
	Run(ctx context.Context, surprise bool) ([]recommend.Recommendation, error)
}

// RunStore is the run-log read side. Implemented by storage.Store.
type RunStore interface {
	GetRun(id string) (storage.Run, error)
	ListRuns(limit, offset int) ([]storage.Run, error)
	DeleteRun(id string) error
}

// Deps holds dependencies for the HTTP handler.
type Deps struct {
	Repo        *library.Repository
	Recommender RecommendRunner
	Runs        RunStore // optional; nil disables the runs endpoints
	Token       string
}

// NewHandler builds the chi router for the local API. Everything except
// /health sits behind bearer auth.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/recommendations", handleRecommend(deps))

		r.Get("/preferences", handleGetPreferences(deps))
		r.Put("/preferences", handlePutPreferences(deps))
		r.Delete("/preferences", handleDeletePreferences(deps))
		r.Get("/quiz", handleQuizSteps)

		r.Get("/history", handleListHistory(deps))
		r.Post("/history", handleAddHistory(deps))
		r.Patch("/history/{id}", handleUpdateHistory(deps))
		r.Delete("/history/{id}", handleRemoveHistory(deps))
		r.Delete("/history", handleClearHistory(deps))

		if deps.Runs != nil {
			r.Get("/runs", handleListRuns(deps))
			r.Get("/runs/{id}", handleGetRun(deps))
			r.Delete("/runs/{id}", handleDeleteRun(deps))
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type recommendRequest struct {
	Surprise bool `json:"surprise"`
}

type recommendResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Surprise        bool                       `json:"surprise"`
}

func handleRecommend(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		recs, err := deps.Recommender.Run(r.Context(), req.Surprise)
		if errors.Is(err, pipeline.ErrNoPreferences) {
			httpError(w, http.StatusConflict, "no_preferences", "%v", err)
			return
		}
		var genErr *recommend.GenError
		if errors.As(err, &genErr) {
			httpError(w, http.StatusBadGateway, "generation_error", "%v", genErr)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "recommendation run failed: %v", err)
			return
		}

		writeJSON(w, recommendResponse{Recommendations: recs, Surprise: req.Surprise})
	}
}

func handleGetPreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, ok := deps.Repo.GetPreferences()
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no preference profile saved")
			return
		}
		writeJSON(w, prefs)
	}
}

func handlePutPreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var prefs library.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := quiz.Validate(prefs); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid preferences: %v", err)
			return
		}
		if err := deps.Repo.SetPreferences(prefs); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save preferences: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "saved"})
	}
}

func handleDeletePreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Repo.ClearPreferences(); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to clear preferences: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "cleared"})
	}
}

func handleQuizSteps(w http.ResponseWriter, r *http.Request) {
	type stepDTO struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Question string   `json:"question"`
		Multiple bool     `json:"multiple"`
		Options  []string `json:"options"`
		Required bool     `json:"required"`
	}
	steps := quiz.Steps()
	out := make([]stepDTO, len(steps))
	for i, s := range steps {
		out[i] = stepDTO{
			ID:       s.ID,
			Title:    s.Title,
			Question: s.Question,
			Multiple: s.Multiple,
			Options:  s.Options,
			Required: s.Required,
		}
	}
	writeJSON(w, out)
}

func handleListHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history := deps.Repo.GetWatchHistory()
		if r.URL.Query().Get("sort") == "date" {
			history = library.SortedByWatchedDate(history)
		}
		if history == nil {
			history = []library.WatchedMovie{}
		}
		writeJSON(w, history)
	}
}

func handleAddHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var m library.WatchedMovie
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		// ID and watched date are server-assigned.
		m.ID = ""

		saved, err := deps.Repo.AddWatchEntry(m)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(saved)
	}
}

func handleUpdateHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var upd library.EntryUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := deps.Repo.UpdateWatchEntry(id, upd); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "updated"})
	}
}

func handleRemoveHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := deps.Repo.RemoveWatchEntry(id); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to remove entry: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "removed"})
	}
}

func handleClearHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Repo.ClearWatchHistory(); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to clear history: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "cleared"})
	}
}

func handleListRuns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		runs, err := deps.Runs.ListRuns(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list runs: %v", err)
			return
		}
		if runs == nil {
			runs = []storage.Run{}
		}
		writeJSON(w, runs)
	}
}

func handleGetRun(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		run, err := deps.Runs.GetRun(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "run not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get run: %v", err)
			return
		}
		writeJSON(w, run)
	}
}

func handleDeleteRun(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Runs.DeleteRun(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "run not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete run: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
