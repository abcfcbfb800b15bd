// Package catalog derives the displayed projection of the movie set: filter by query, then sort.
package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/marqueeapp/marquee-server/internal/domain"
)

// NormalizeQuery trims and case-folds a search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Matches reports whether m passes the query. The query is a substring of the lower-cased
// title, the lower-cased synopsis, the literal year, or any lower-cased tag.
// An empty query matches everything.
func Matches(m domain.Movie, query string) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return true
	}
	return matchesNormalized(m, q)
}

func matchesNormalized(m domain.Movie, q string) bool {
	if strings.Contains(strings.ToLower(m.Title), q) ||
		strings.Contains(strings.ToLower(m.Synopsis), q) ||
		strings.Contains(m.Year, q) {
		return true
	}
	return slices.ContainsFunc(m.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), q)
	})
}

// Filter returns the movies that match query, in input order. The input is never modified.
func Filter(movies []domain.Movie, query string) []domain.Movie {
	q := NormalizeQuery(query)
	out := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		if q == "" || matchesNormalized(m, q) {
			out = append(out, m)
		}
	}
	return out
}

// Sort returns a copy of movies ordered by mode. The sort is stable: equal keys keep their
// input order. Years compare as text; titles use collation rules for lang.
func Sort(movies []domain.Movie, mode domain.SortMode, lang language.Tag) []domain.Movie {
	out := slices.Clone(movies)

	switch mode {
	case domain.SortYearAsc:
		slices.SortStableFunc(out, func(a, b domain.Movie) int {
			return strings.Compare(a.Year, b.Year)
		})
	case domain.SortAlphabetical:
		// Collators keep scratch buffers; one per call.
		c := collate.New(lang)
		slices.SortStableFunc(out, func(a, b domain.Movie) int {
			return c.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(out, func(a, b domain.Movie) int {
			return strings.Compare(b.Year, a.Year)
		})
	}
	return out
}

// Project filters first and sorts the reduced set.
func Project(movies []domain.Movie, query string, mode domain.SortMode, lang language.Tag) []domain.Movie {
	return Sort(Filter(movies, query), mode, lang)
}

// FindByTitle looks a movie up by exact title. With duplicate titles the first in load
// order wins.
func FindByTitle(movies []domain.Movie, title string) (domain.Movie, bool) {
	i := slices.IndexFunc(movies, func(m domain.Movie) bool { return m.Title == title })
	if i < 0 {
		return domain.Movie{}, false
	}
	return movies[i], true
}

// DuplicateTitles lists titles that occur more than once, in first-seen order.
func DuplicateTitles(movies []domain.Movie) []string {
	seen := make(map[string]int, len(movies))
	var dups []string
	for _, m := range movies {
		seen[m.Title]++
		if seen[m.Title] == 2 {
			dups = append(dups, m.Title)
		}
	}
	return dups
}
