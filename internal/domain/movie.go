package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TextFormat says how a synopsis is meant to be displayed.
type TextFormat string

const (
	// TextPlain is shown exactly as written.
	TextPlain TextFormat = ""
	// TextMarkdown came from HTML markup in the dataset and renders as Markdown.
	TextMarkdown TextFormat = "markdown"
)

// Movie is one catalog entry. Title is the identity key used for selection.
// JSON keys follow the dataset file format.
type Movie struct {
	Title          string     `json:"nome" validate:"required"`
	Year           string     `json:"ano" validate:"omitempty,digits"` // compared as text, never as a number
	Synopsis       string     `json:"sinopse"`
	SynopsisFormat TextFormat `json:"sinopse_formato,omitempty" validate:"omitempty,oneof=markdown"`
	Link           string     `json:"link" validate:"omitempty,uriref"`
	Poster         string     `json:"img" validate:"omitempty,uriref"`
	Tags           []string   `json:"tags"`
}

// HasTags reports whether the movie carries at least one tag.
func (m Movie) HasTags() bool {
	return len(m.Tags) > 0
}

// SynopsisIsMarkdown reports whether Synopsis holds Markdown rather than plain text.
func (m Movie) SynopsisIsMarkdown() bool {
	return m.SynopsisFormat == TextMarkdown
}

// Heading is the "Title (Year)" form used on the details page.
func (m Movie) Heading() string {
	if m.Year == "" {
		return m.Title
	}
	return fmt.Sprintf("%s (%s)", m.Title, m.Year)
}

// UnmarshalJSON accepts the year either as a string or as a bare JSON number.
// Numbers keep their literal digits so ordering stays textual.
func (m *Movie) UnmarshalJSON(data []byte) error {
	type plain Movie
	var raw struct {
		plain
		Year json.RawMessage `json:"ano"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Movie(raw.plain)

	year := bytes.TrimSpace(raw.Year)
	switch {
	case len(year) == 0 || bytes.Equal(year, []byte("null")):
		m.Year = ""
	case year[0] == '"':
		if err := json.Unmarshal(year, &m.Year); err != nil {
			return fmt.Errorf("ano: %w", err)
		}
	default:
		if _, err := strconv.ParseUint(string(year), 10, 64); err != nil {
			return fmt.Errorf("ano: expected string or integer, got %s", year)
		}
		m.Year = string(year)
	}
	return nil
}
