// Package api provides the HTTP server: the HTML catalog and details pages and
// the JSON API that exposes the same pipeline.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/marqueeapp/marquee-server/internal/http/response"
	"github.com/marqueeapp/marquee-server/internal/ratelimit"
	"github.com/marqueeapp/marquee-server/internal/service"
	"github.com/marqueeapp/marquee-server/internal/session"
	"github.com/marqueeapp/marquee-server/internal/store"
	"github.com/marqueeapp/marquee-server/internal/web"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Services groups the business services used by handlers.
type Services struct {
	Catalog *service.CatalogService
	Handoff *service.HandoffService
	Search  *service.SearchService
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	services      *Services
	renderer      *web.Renderer
	codec         *session.Codec
	selectLimiter *ratelimit.KeyedRateLimiter
	opts          Options
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st *store.Store,
	services *Services,
	renderer *web.Renderer,
	codec *session.Codec,
	selectLimiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:         st,
		services:      services,
		renderer:      renderer,
		codec:         codec,
		selectLimiter: selectLimiter,
		opts:          opts,
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Marquee API", Version)
	humaConfig.Info.Description = "Browse the movie catalog and hand a selection to the details page."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(apiCORS(s.opts.AllowedOrigins))
	s.router.Use(session.Middleware(s.codec, s.opts.SecureCookies, s.logger))
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerMovieRoutes()
	s.registerSearchRoutes()
	s.registerSelectionRoutes()

	s.router.Handle("/static/*", web.StaticHandler())
	s.router.Get(pathCatalog, s.handleCatalogPage)
	s.router.Get(pathDetails, s.handleDetailsPage)
	s.router.With(s.rateLimit(s.selectLimiter)).Post("/select", s.handleSelect)

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "method not allowed", s.logger)
	})
}

// apiCORS applies CORS headers to /api/ routes only; pages are same-origin.
func apiCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           300,
	})

	return func(next http.Handler) http.Handler {
		withCORS := corsHandler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				withCORS.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
