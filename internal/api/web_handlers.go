package api

import (
	"net/http"

	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/session"
)

// Page paths.
const (
	pathCatalog = "/"
	pathDetails = "/details"
)

// handleCatalogPage renders the catalog grid for the q and sort parameters.
// An unknown sort value shows the default order.
func (s *Server) handleCatalogPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.renderer.ServeCatalog(w, s.services.Catalog.View(q.Get("q"), q.Get("sort")))
}

// handleSelect stores the chosen title and sends the browser to the details
// page. A title the catalog does not know leaves the browser where it is.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.IDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	_, err := s.services.Handoff.Select(r.Context(), sid, r.PostFormValue("title"))
	switch {
	case err == nil:
		http.Redirect(w, r, pathDetails, http.StatusSeeOther)
	case errors.Is(err, errors.ErrNotFound), errors.Is(err, errors.ErrUnavailable):
		w.WriteHeader(http.StatusNoContent)
	default:
		s.logger.Error("Failed to store selection", "error", err, "session", sid)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// handleDetailsPage renders the session's selection.
func (s *Server) handleDetailsPage(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.IDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.renderer.ServeDetails(w, s.services.Handoff.Read(r.Context(), sid))
}
