package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/session"
)

func (s *Server) registerSelectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "selectMovie",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection",
		Summary:     "Select a movie",
		Description: "Stores the movie with this exact title as the session's selection. Nothing is stored when the title is not in the catalog.",
		Tags:        []string{"Selection"},
	}, s.handleSelectMovie)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSelection",
		Method:      http.MethodGet,
		Path:        "/api/v1/selection",
		Summary:     "Get selection",
		Description: "Returns the session's selection: missing, invalid, or valid with the movie",
		Tags:        []string{"Selection"},
	}, s.handleGetSelection)
}

// === DTOs ===

// SelectMovieRequest is the selection body.
type SelectMovieRequest struct {
	Title string `json:"title" minLength:"1" maxLength:"500" doc:"Exact movie title"`
}

// SelectMovieInput wraps the selection body for Huma.
type SelectMovieInput struct {
	Body SelectMovieRequest
}

// SelectMovieOutput returns the stored movie.
type SelectMovieOutput struct {
	Body MovieResponse
}

// SelectionResponse describes the session's selection.
type SelectionResponse struct {
	Status domain.HandoffStatus `json:"status" doc:"missing, invalid or valid"`
	Movie  *MovieResponse       `json:"movie,omitempty" doc:"Selected movie when status is valid"`
}

// SelectionOutput wraps the selection for Huma.
type SelectionOutput struct {
	Body SelectionResponse
}

// === Handlers ===

func (s *Server) handleSelectMovie(ctx context.Context, input *SelectMovieInput) (*SelectMovieOutput, error) {
	sid, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	movie, err := s.services.Handoff.Select(ctx, sid, input.Body.Title)
	if err != nil {
		return nil, err
	}
	return &SelectMovieOutput{Body: toMovieResponse(movie)}, nil
}

func (s *Server) handleGetSelection(ctx context.Context, _ *struct{}) (*SelectionOutput, error) {
	sid, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	h := s.services.Handoff.Read(ctx, sid)
	out := &SelectionOutput{Body: SelectionResponse{Status: h.Status}}
	if movie, ok := h.Get(); ok {
		resp := toMovieResponse(movie)
		out.Body.Movie = &resp
	}
	return out, nil
}

// sessionID returns the request's session. The session middleware always sets
// one, so a miss means the handler was mounted without it.
func sessionID(ctx context.Context) (string, error) {
	sid, ok := session.IDFromContext(ctx)
	if !ok {
		return "", errors.Internal("request has no session")
	}
	return sid, nil
}
