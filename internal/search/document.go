package search

import (
	"fmt"
	"strings"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/normalize"
)

// MovieDocument is the indexed form of a movie.
type MovieDocument struct {
	ID       string
	Position int // index in the loaded dataset
	Title    string
	Year     string
	Synopsis string
	Tags     []string
}

// DocumentID is the index key for the movie at position. Titles are not used as keys
// because datasets may repeat them.
func DocumentID(position int) string {
	return fmt.Sprintf("movie-%05d", position)
}

// NewMovieDocument builds the document for the movie at position.
func NewMovieDocument(position int, m domain.Movie) *MovieDocument {
	tags := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = strings.ToLower(t)
	}
	synopsis := m.Synopsis
	if m.SynopsisIsMarkdown() {
		synopsis = normalize.MarkdownToText(synopsis)
	}
	return &MovieDocument{
		ID:       DocumentID(position),
		Position: position,
		Title:    m.Title,
		Year:     m.Year,
		Synopsis: synopsis,
		Tags:     tags,
	}
}

// DocumentsFromMovies builds one document per movie, in order.
func DocumentsFromMovies(movies []domain.Movie) []*MovieDocument {
	docs := make([]*MovieDocument, len(movies))
	for i, m := range movies {
		docs[i] = NewMovieDocument(i, m)
	}
	return docs
}

// ToMap converts the document to the field names used by the mapping.
func (d *MovieDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":       d.ID,
		"position": float64(d.Position),
		"title":    d.Title,
		"year":     d.Year,
		"synopsis": d.Synopsis,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
