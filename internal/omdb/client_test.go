package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func omdbJSON(title, year string) string {
	return fmt.Sprintf(`{
		"Title": %q,
		"Year": %q,
		"Genre": "Sci-Fi, Adventure",
		"Plot": "A plot.",
		"Poster": "https://example.com/poster.jpg",
		"imdbRating": "8.0",
		"Director": "Someone",
		"Actors": "A, B",
		"Ratings": [
			{"Source": "Internet Movie Database", "Value": "8.0/10"},
			{"Source": "Rotten Tomatoes", "Value": "83%%"}
		],
		"Response": "True"
	}`, title, year)
}

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "k" {
			t.Errorf("missing apikey, got query %v", q)
		}
		if q.Get("t") != "Dune" || q.Get("y") != "2021" || q.Get("plot") != "short" {
			t.Errorf("unexpected query %v", q)
		}
		fmt.Fprint(w, omdbJSON("Dune", "2021"))
	}))
	defer srv.Close()

	c := NewWithBaseURL("k", srv.URL)
	m, err := c.Lookup(context.Background(), "Dune", 2021)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Title != "Dune" || m.Year != 2021 {
		t.Errorf("got %q (%d)", m.Title, m.Year)
	}
	if m.Poster != "https://example.com/poster.jpg" {
		t.Errorf("got poster %q", m.Poster)
	}
	if m.IMDBRating != "8.0" {
		t.Errorf("got imdb rating %q", m.IMDBRating)
	}
	if m.RottenTomatoes != "83%" {
		t.Errorf("got rotten tomatoes %q", m.RottenTomatoes)
	}
	if len(m.Genre) != 2 || m.Genre[0] != "Sci-Fi" || m.Genre[1] != "Adventure" {
		t.Errorf("got genre %v", m.Genre)
	}
}

func TestLookup_NASentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"Title": "Obscure",
			"Year": "1977",
			"Genre": "N/A",
			"Poster": "N/A",
			"imdbRating": "N/A",
			"Ratings": [],
			"Response": "True"
		}`)
	}))
	defer srv.Close()

	c := NewWithBaseURL("k", srv.URL)
	m, err := c.Lookup(context.Background(), "Obscure", 1977)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Poster != "" || m.IMDBRating != "" || m.RottenTomatoes != "" || m.Genre != nil {
		t.Errorf("N/A fields should be empty, got %+v", m)
	}
}

func TestLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response": "False", "Error": "Movie not found!"}`)
	}))
	defer srv.Close()

	c := NewWithBaseURL("k", srv.URL)
	_, err := c.Lookup(context.Background(), "Nope", 2000)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestLookup_NoAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without an API key")
	}))
	defer srv.Close()

	c := NewWithBaseURL("", srv.URL)
	if c.Enabled() {
		t.Error("client without key should report disabled")
	}
	_, err := c.Lookup(context.Background(), "Dune", 2021)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWithBaseURL("k", srv.URL)
	_, err := c.Lookup(context.Background(), "Dune", 2021)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want a transport-level error", err)
	}
}

func TestLookupBatch_PartialFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		title := r.URL.Query().Get("t")
		switch title {
		case "Missing":
			fmt.Fprint(w, `{"Response": "False", "Error": "Movie not found!"}`)
		case "Broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			fmt.Fprint(w, omdbJSON(title, "2020"))
		}
	}))
	defer srv.Close()

	c := NewWithBaseURL("k", srv.URL)
	refs := []Ref{
		{Title: "One", Year: 2020},
		{Title: "Missing", Year: 2020},
		{Title: "Two", Year: 2020},
		{Title: "Broken", Year: 2020},
		{Title: "Three", Year: 2020},
	}
	movies := c.LookupBatch(context.Background(), refs)

	if got := int(calls.Load()); got != 5 {
		t.Errorf("got %d upstream calls, want 5", got)
	}
	if len(movies) != 3 {
		t.Fatalf("got %d movies, want 3 (failures dropped, not escalated)", len(movies))
	}
	seen := make(map[string]bool)
	for _, m := range movies {
		seen[m.Title] = true
	}
	for _, want := range []string{"One", "Two", "Three"} {
		if !seen[want] {
			t.Errorf("missing %q in batch results", want)
		}
	}
}

func TestLookupBatch_Disabled(t *testing.T) {
	c := New("")
	if got := c.LookupBatch(context.Background(), []Ref{{Title: "Dune", Year: 2021}}); got != nil {
		t.Errorf("disabled client should return nil, got %v", got)
	}
}

func TestParseLeadingYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2021", 2021},
		{"2010–2012", 2010},
		{"N/A", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parseLeadingYear(tc.in); got != tc.want {
			t.Errorf("parseLeadingYear(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
