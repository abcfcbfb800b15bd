package catalog

import "github.com/marqueeapp/marquee-server/internal/domain"

// SortControl is one sort trigger as rendered on the page.
type SortControl struct {
	Mode   domain.SortMode `json:"mode"`
	Label  string          `json:"label"`
	Active bool            `json:"active"`
}

// Controls returns the three sort triggers with exactly one active: the one for current.
// An unknown mode activates the default.
func Controls(current domain.SortMode) []SortControl {
	if !current.Valid() {
		current = domain.DefaultSortMode
	}
	modes := domain.AllSortModes()
	out := make([]SortControl, len(modes))
	for i, m := range modes {
		out[i] = SortControl{Mode: m, Label: m.Label(), Active: m == current}
	}
	return out
}
