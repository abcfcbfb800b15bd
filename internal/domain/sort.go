package domain

import (
	"github.com/marqueeapp/marquee-server/internal/errors"
)

// SortMode selects the catalog ordering.
type SortMode string

// Sort modes, in control order.
const (
	SortYearDesc     SortMode = "year-desc"
	SortYearAsc      SortMode = "year-asc"
	SortAlphabetical SortMode = "alphabetical"
)

// DefaultSortMode applies before the user picks one.
const DefaultSortMode = SortYearDesc

// AllSortModes lists every mode in the order the controls are shown.
func AllSortModes() []SortMode {
	return []SortMode{SortYearDesc, SortYearAsc, SortAlphabetical}
}

// Label is the button caption for the mode.
func (s SortMode) Label() string {
	switch s {
	case SortYearDesc:
		return "Newest first"
	case SortYearAsc:
		return "Oldest first"
	case SortAlphabetical:
		return "A–Z"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known modes.
func (s SortMode) Valid() bool {
	switch s {
	case SortYearDesc, SortYearAsc, SortAlphabetical:
		return true
	}
	return false
}

// ParseSortMode parses a mode identifier. An empty string yields the default.
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return DefaultSortMode, nil
	}
	mode := SortMode(s)
	if !mode.Valid() {
		return "", errors.Validationf("unknown sort mode %q", s).
			WithDetails(map[string]string{"sort": "must be one of: year-desc year-asc alphabetical"})
	}
	return mode, nil
}

// SortModeOrDefault is ParseSortMode without the error: unknown input falls back to the default.
func SortModeOrDefault(s string) SortMode {
	mode, err := ParseSortMode(s)
	if err != nil {
		return DefaultSortMode
	}
	return mode
}
