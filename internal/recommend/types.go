// Package recommend turns a preference profile and watch history into a
// validated list of movie recommendations via an external generation model.
package recommend

import "fmt"

// Recommendation is one AI-suggested movie. It is ephemeral: never persisted
// directly, only promoted into a watch-history entry on explicit user action.
// Poster and rating fields start empty and are filled in by enrichment.
type Recommendation struct {
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Genre       []string `json:"genre"`
	Description string   `json:"description"`
	Reasoning   string   `json:"reasoning"`

	Poster         string `json:"poster,omitempty"`
	IMDBRating     string `json:"imdbRating,omitempty"`
	RottenTomatoes string `json:"rottenTomatoes,omitempty"`
}

// GenError is returned for every generation failure mode: the upstream call
// failed, the response carried no recoverable JSON, or the payload was
// missing the recommendations key. The current action aborts; nothing else
// in the session is affected.
type GenError struct {
	Reason string
	Err    error
}

func (e *GenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generating recommendations: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generating recommendations: %s", e.Reason)
}

func (e *GenError) Unwrap() error { return e.Err }

func genErrorf(err error, format string, args ...any) *GenError {
	return &GenError{Reason: fmt.Sprintf(format, args...), Err: err}
}
