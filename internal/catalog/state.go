package catalog

import (
	"time"

	"golang.org/x/text/language"

	"github.com/marqueeapp/marquee-server/internal/domain"
)

// Snapshot is an immutable view of the loaded dataset. Movies must not be modified once
// a snapshot is published.
type Snapshot struct {
	Status   domain.CatalogStatus
	Movies   []domain.Movie
	Err      error
	LoadedAt time.Time
}

// LoadingSnapshot is the state before the first load finishes.
func LoadingSnapshot() Snapshot {
	return Snapshot{Status: domain.CatalogLoading}
}

// ReadySnapshot wraps a successfully loaded set.
func ReadySnapshot(movies []domain.Movie, at time.Time) Snapshot {
	return Snapshot{Status: domain.CatalogReady, Movies: movies, LoadedAt: at}
}

// FailedSnapshot records a load failure.
func FailedSnapshot(err error, at time.Time) Snapshot {
	return Snapshot{Status: domain.CatalogFailed, Err: err, LoadedAt: at}
}

// State is everything needed to compute what the catalog page shows.
type State struct {
	snapshot Snapshot
	sort     domain.SortMode
	query    string
	lang     language.Tag
}

// NewState starts from a snapshot with the default sort and an empty query.
func NewState(s Snapshot, lang language.Tag) State {
	return State{snapshot: s, sort: domain.DefaultSortMode, lang: lang}
}

// WithSort returns a copy using mode. Unknown modes fall back to the default.
func (s State) WithSort(mode domain.SortMode) State {
	if !mode.Valid() {
		mode = domain.DefaultSortMode
	}
	s.sort = mode
	return s
}

// WithQuery returns a copy using the raw query text.
func (s State) WithQuery(q string) State {
	s.query = q
	return s
}

// Sort is the current sort mode.
func (s State) Sort() domain.SortMode { return s.sort }

// Query is the current raw query.
func (s State) Query() string { return s.query }

// View is the computed page model. Exactly one of the grid states applies: loading,
// failed, empty (no results) or a non-empty Movies slice.
type View struct {
	Status   domain.CatalogStatus
	Movies   []domain.Movie
	Controls []SortControl
	Query    string
	Sort     domain.SortMode
	Total    int
	Err      error
}

// Empty reports whether a ready catalog produced no results.
func (v View) Empty() bool {
	return v.Status == domain.CatalogReady && len(v.Movies) == 0
}

// View computes the projection for the current state.
func (s State) View() View {
	v := View{
		Status:   s.snapshot.Status,
		Controls: Controls(s.sort),
		Query:    s.query,
		Sort:     s.sort,
		Total:    len(s.snapshot.Movies),
		Err:      s.snapshot.Err,
	}
	if s.snapshot.Status == domain.CatalogReady {
		v.Movies = Project(s.snapshot.Movies, s.query, s.sort, s.lang)
	}
	return v
}
