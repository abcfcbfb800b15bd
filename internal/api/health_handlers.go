package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqueeapp/marquee-server/internal/domain"
)

// Component and overall health states.
const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"catalog":  s.checkCatalog(),
		"database": s.checkDatabase(ctx),
		"search":   s.checkSearchIndex(),
	}

	overall := healthHealthy
	for _, c := range components {
		switch c.Status {
		case healthUnhealthy:
			overall = healthUnhealthy
		case healthDegraded:
			if overall == healthHealthy {
				overall = healthDegraded
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkCatalog reports the dataset lifecycle.
func (s *Server) checkCatalog() ComponentHealth {
	if s.services == nil || s.services.Catalog == nil {
		return ComponentHealth{Status: healthDegraded, Message: "catalog not configured"}
	}

	snap := s.services.Catalog.Snapshot()
	switch snap.Status {
	case domain.CatalogReady:
		return ComponentHealth{Status: healthHealthy, Message: formatMovieCount(len(snap.Movies))}
	case domain.CatalogLoading:
		return ComponentHealth{Status: healthDegraded, Message: "catalog loading"}
	default:
		return ComponentHealth{Status: healthUnhealthy, Message: "catalog failed to load"}
	}
}

// checkDatabase verifies BadgerDB is accessible.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: healthDegraded, Message: "database not configured"}
	}

	start := time.Now()
	err := s.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  healthUnhealthy,
			Latency: latency.String(),
			Message: "database read failed",
		}
	}
	return ComponentHealth{Status: healthHealthy, Latency: latency.String()}
}

// checkSearchIndex verifies the Bleve index is accessible.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{Status: healthDegraded, Message: "search service not configured"}
	}

	start := time.Now()
	docCount, err := s.services.Search.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  healthUnhealthy,
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}

	// An empty index is expected until the catalog has loaded.
	if docCount == 0 {
		return ComponentHealth{
			Status:  healthDegraded,
			Latency: latency.String(),
			Message: "search index empty",
		}
	}

	return ComponentHealth{Status: healthHealthy, Latency: latency.String()}
}

func formatMovieCount(n int) string {
	if n == 1 {
		return "1 movie"
	}
	return strconv.Itoa(n) + " movies"
}
