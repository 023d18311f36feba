package omdb

import (
	"strings"

	"github.com/kalambet/reelist/internal/recommend"
)

// Merge copies enrichment fields from looked-up movies onto matching
// recommendations. A match is a case-insensitive exact title plus an exact
// year; unmatched recommendations are returned untouched. The input slice
// is not modified.
func Merge(recs []recommend.Recommendation, movies []Movie) []recommend.Recommendation {
	out := make([]recommend.Recommendation, len(recs))
	copy(out, recs)

	for i := range out {
		for _, m := range movies {
			if m.Year != out[i].Year || !strings.EqualFold(m.Title, out[i].Title) {
				continue
			}
			out[i].Poster = m.Poster
			out[i].IMDBRating = m.IMDBRating
			out[i].RottenTomatoes = m.RottenTomatoes
			if len(m.Genre) > 0 {
				out[i].Genre = m.Genre
			}
			break
		}
	}
	return out
}
