package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqueeapp/marquee-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchMovies",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search movies",
		Description: "Full-text search over titles and synopses with optional tag and year filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query     string   `query:"q" maxLength:"200" doc:"Search query. Omit to list everything matching the filters."`
	Tags      []string `query:"tags" doc:"Comma-separated tags; every tag must be present"`
	Year      string   `query:"year" pattern:"^[0-9]*$" doc:"Exact release year"`
	Limit     int      `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Max results (default 20)"`
	Offset    int      `query:"offset" minimum:"0" doc:"Pagination offset"`
	Highlight bool     `query:"highlight" default:"true" doc:"Include highlighted fragments"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	Title      string            `json:"title" doc:"Movie title"`
	Year       string            `json:"year,omitempty" doc:"Release year"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	Tags       []string          `json:"tags,omitempty" doc:"Genre labels"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, search.SearchParams{
		Query:     input.Query,
		Tags:      input.Tags,
		Year:      input.Year,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Highlight: input.Highlight,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResult, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResult{
			Title:      h.Title,
			Year:       h.Year,
			Score:      h.Score,
			Tags:       h.Tags,
			Highlights: h.Highlights,
		}
	}

	return &SearchOutput{
		Body: SearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}
