package domain

// HandoffStatus distinguishes the three outcomes of reading a selection.
type HandoffStatus string

const (
	// HandoffMissing means nothing was selected in this session.
	HandoffMissing HandoffStatus = "missing"
	// HandoffInvalid means a payload exists but does not decode to a valid movie.
	HandoffInvalid HandoffStatus = "invalid"
	// HandoffValid means Movie holds the selected record.
	HandoffValid HandoffStatus = "valid"
)

// Handoff is the result of reading the selection left by the catalog page.
// Movie is only meaningful when Status is HandoffValid.
type Handoff struct {
	Status HandoffStatus
	Movie  Movie
}

// MissingHandoff returns the empty-selection result.
func MissingHandoff() Handoff { return Handoff{Status: HandoffMissing} }

// InvalidHandoff returns the unreadable-selection result.
func InvalidHandoff() Handoff { return Handoff{Status: HandoffInvalid} }

// ValidHandoff wraps a decoded movie.
func ValidHandoff(m Movie) Handoff { return Handoff{Status: HandoffValid, Movie: m} }

// Get returns the movie and whether the handoff is valid.
func (h Handoff) Get() (Movie, bool) {
	if h.Status != HandoffValid {
		return Movie{}, false
	}
	return h.Movie, true
}
