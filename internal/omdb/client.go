// Package omdb enriches recommendations with poster and rating metadata
// from the OMDb API. Enrichment is strictly best-effort: a missing API key,
// a failed lookup, or a not-found title never fails anything upstream.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL   = "https://www.omdbapi.com"
	defaultTimeout   = 15 * time.Second
	batchConcurrency = 4
)

// ErrNotFound is returned when OMDb has no record for a title/year pair,
// and deterministically when no API key is configured.
var ErrNotFound = errors.New("movie not found")

// Movie is the transient result of a single metadata lookup. It is never
// persisted; callers merge the fields they need into their own records.
type Movie struct {
	Title          string
	Year           int
	Genre          []string
	Plot           string
	Poster         string
	IMDBRating     string
	RottenTomatoes string
	Director       string
	Actors         string
}

// Ref identifies a movie to look up.
type Ref struct {
	Title string
	Year  int
}

// Client queries the OMDb API. A client constructed without an API key is
// valid: every lookup then resolves to ErrNotFound without network I/O.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates an OMDb client. An empty apiKey disables lookups.
func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// omdbRecord mirrors the OMDb response. "N/A" is the upstream sentinel for
// missing string fields.
type omdbRecord struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Ratings    []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Lookup fetches metadata for one title/year pair.
func (c *Client) Lookup(ctx context.Context, title string, year int) (Movie, error) {
	if !c.Enabled() {
		return Movie{}, ErrNotFound
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	if year > 0 {
		q.Set("y", strconv.Itoa(year))
	}
	q.Set("plot", "short")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return Movie{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Movie{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Movie{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rec omdbRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Movie{}, fmt.Errorf("decoding response: %w", err)
	}

	if !strings.EqualFold(rec.Response, "True") {
		slog.Debug("omdb: movie not found", "title", title, "year", year, "upstream", rec.Error)
		return Movie{}, ErrNotFound
	}

	return rec.toMovie(), nil
}

func (r omdbRecord) toMovie() Movie {
	m := Movie{
		Title:    r.Title,
		Year:     parseLeadingYear(r.Year),
		Plot:     r.Plot,
		Director: r.Director,
		Actors:   r.Actors,
	}
	if r.Genre != "" && r.Genre != "N/A" {
		for _, g := range strings.Split(r.Genre, ",") {
			m.Genre = append(m.Genre, strings.TrimSpace(g))
		}
	}
	if r.Poster != "N/A" {
		m.Poster = r.Poster
	}
	if r.IMDBRating != "N/A" {
		m.IMDBRating = r.IMDBRating
	}
	for _, rt := range r.Ratings {
		if rt.Source == "Rotten Tomatoes" {
			m.RottenTomatoes = rt.Value
			break
		}
	}
	return m
}

// parseLeadingYear handles both plain years ("2021") and ranges ("2010–2012").
func parseLeadingYear(s string) int {
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	y, _ := strconv.Atoi(s[:digits])
	return y
}

// LookupBatch fetches metadata for every ref concurrently and returns only
// the successes, in no particular order. Individual failures are dropped,
// never escalated; the batch completes once the slowest lookup settles.
// Without an API key the batch resolves empty immediately.
func (c *Client) LookupBatch(ctx context.Context, refs []Ref) []Movie {
	if !c.Enabled() || len(refs) == 0 {
		return nil
	}

	results := make([]*Movie, len(refs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, ref := range refs {
		g.Go(func() error {
			m, err := c.Lookup(gCtx, ref.Title, ref.Year)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					slog.Debug("omdb: lookup failed, skipping", "title", ref.Title, "year", ref.Year, "error", err)
				}
				return nil
			}
			results[i] = &m
			return nil
		})
	}

	// Goroutines always return nil; Wait is the batch barrier.
	_ = g.Wait()

	var movies []Movie
	for _, m := range results {
		if m != nil {
			movies = append(movies, *m)
		}
	}
	return movies
}
