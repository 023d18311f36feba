package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Run records a single recommendation generation run: the prompt that was
// sent, the raw model response, and how the run ended.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model"`
	Response  string    `json:"response"`
	Status    string    `json:"status"` // "completed" or "failed"
	Surprise  bool      `json:"surprise"`
	RecCount  int       `json:"recCount"`
	Error     string    `json:"error,omitempty"`
}
