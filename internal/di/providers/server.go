package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/marqueeapp/marquee-server/internal/api"
	"github.com/marqueeapp/marquee-server/internal/config"
	"github.com/marqueeapp/marquee-server/internal/logger"
	"github.com/marqueeapp/marquee-server/internal/service"
	"github.com/marqueeapp/marquee-server/internal/session"
	"github.com/marqueeapp/marquee-server/internal/web"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideRenderer provides the HTML page renderer.
func ProvideRenderer(i do.Injector) (*web.Renderer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return web.New(web.Options{
		ExcerptLength: cfg.Catalog.ExcerptLength,
		Lang:          cfg.Catalog.Locale,
		Logger:        log.WithComponent("web"),
	})
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	handoffService := do.MustInvoke[*service.HandoffService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	renderer := do.MustInvoke[*web.Renderer](i)
	codec := do.MustInvoke[*session.Codec](i)
	limiter := do.MustInvoke[*SelectLimiterHandle](i)

	services := &api.Services{
		Catalog: catalogHandle.CatalogService,
		Handoff: handoffService,
		Search:  searchService,
	}

	handler := api.NewServer(storeHandle.Store, services, renderer, codec, limiter.KeyedRateLimiter, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  cfg.App.Environment == "production",
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
