// Package di provides dependency injection configuration for the Marquee server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/marqueeapp/marquee-server/internal/config"
	"github.com/marqueeapp/marquee-server/internal/di/providers"
	"github.com/marqueeapp/marquee-server/internal/logger"
	"github.com/marqueeapp/marquee-server/internal/service"
	"github.com/marqueeapp/marquee-server/internal/session"
	"github.com/marqueeapp/marquee-server/internal/web"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSessionKey)
	do.Provide(injector, providers.ProvideSessionCodec)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideHandoffService)

	// Workers
	do.Provide(injector, providers.ProvideDatasetWatcher)
	do.Provide(injector, providers.ProvideStoreGCJob)
	do.Provide(injector, providers.ProvideSelectLimiter)

	// Server
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order. Providers that
// start background work (catalog load, watcher, HTTP listener) do so here.
func Bootstrap(injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		// Core infrastructure
		invoke[*config.Config],
		invoke[*logger.Logger],
		invoke[*session.Codec],
		invoke[*providers.StoreHandle],

		// Search and business services
		invoke[*providers.SearchIndexHandle],
		invoke[*service.SearchService],
		invoke[*providers.CatalogHandle],
		invoke[*service.HandoffService],

		// Workers
		invoke[*providers.DatasetWatcherHandle],
		invoke[*providers.StoreGCJob],
		invoke[*providers.SelectLimiterHandle],

		// Server
		invoke[*web.Renderer],
		invoke[*providers.HTTPServerHandle],
	}

	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}
	return nil
}

func invoke[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
