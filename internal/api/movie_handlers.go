package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqueeapp/marquee-server/internal/catalog"
	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
)

func (s *Server) registerMovieRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMovies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies",
		Summary:     "List movies",
		Description: "Filters the catalog by title substring and sorts it. Returns the sort controls with the active one marked.",
		Tags:        []string{"Movies"},
	}, s.handleListMovies)
}

// === DTOs ===

// ListMoviesInput contains the catalog query.
type ListMoviesInput struct {
	Query string `query:"q" maxLength:"200" doc:"Case-insensitive title substring"`
	Sort  string `query:"sort" doc:"Sort mode: year-desc (default), year-asc or alphabetical"`
}

// MovieResponse is a movie as exposed by the JSON API.
type MovieResponse struct {
	Title    string   `json:"title" doc:"Movie title, also its selection key"`
	Year     string   `json:"year,omitempty" doc:"Release year as written in the dataset"`
	Synopsis string   `json:"synopsis,omitempty" doc:"Synopsis text"`
	Format   string   `json:"synopsis_format" enum:"plain,markdown" doc:"How synopsis is written: plain text shown verbatim, or markdown converted from dataset HTML"`
	Link     string   `json:"link,omitempty" doc:"External reference URL"`
	Poster   string   `json:"poster,omitempty" doc:"Poster image URL"`
	Tags     []string `json:"tags" doc:"Genre labels"`
}

// ListMoviesResponse contains the projected catalog.
type ListMoviesResponse struct {
	Status   domain.CatalogStatus  `json:"status" doc:"Catalog status"`
	Query    string                `json:"query" doc:"Query as received"`
	Sort     domain.SortMode       `json:"sort" doc:"Sort mode applied"`
	Controls []catalog.SortControl `json:"controls" doc:"Sort controls, exactly one active"`
	Total    int                   `json:"total" doc:"Movies in the catalog"`
	Count    int                   `json:"count" doc:"Movies matching the query"`
	Movies   []MovieResponse       `json:"movies" doc:"Matching movies in display order"`
}

// ListMoviesOutput wraps the movie list for Huma.
type ListMoviesOutput struct {
	Body ListMoviesResponse
}

// === Handlers ===

func (s *Server) handleListMovies(_ context.Context, input *ListMoviesInput) (*ListMoviesOutput, error) {
	mode := domain.DefaultSortMode
	if input.Sort != "" {
		parsed, err := domain.ParseSortMode(input.Sort)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	view := s.services.Catalog.State(input.Query, mode).View()
	switch view.Status {
	case domain.CatalogLoading:
		return nil, errors.Unavailable("movie catalog is still loading")
	case domain.CatalogFailed:
		return nil, errors.Unavailable("movie catalog failed to load")
	}

	movies := make([]MovieResponse, len(view.Movies))
	for i, m := range view.Movies {
		movies[i] = toMovieResponse(m)
	}

	return &ListMoviesOutput{
		Body: ListMoviesResponse{
			Status:   view.Status,
			Query:    view.Query,
			Sort:     view.Sort,
			Controls: view.Controls,
			Total:    view.Total,
			Count:    len(movies),
			Movies:   movies,
		},
	}, nil
}

func toMovieResponse(m domain.Movie) MovieResponse {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	format := "plain"
	if m.SynopsisIsMarkdown() {
		format = "markdown"
	}
	return MovieResponse{
		Title:    m.Title,
		Year:     m.Year,
		Synopsis: m.Synopsis,
		Format:   format,
		Link:     m.Link,
		Poster:   m.Poster,
		Tags:     tags,
	}
}
