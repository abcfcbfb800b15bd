package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"golang.org/x/text/language"

	"github.com/marqueeapp/marquee-server/internal/config"
	"github.com/marqueeapp/marquee-server/internal/dataset"
	"github.com/marqueeapp/marquee-server/internal/logger"
	"github.com/marqueeapp/marquee-server/internal/service"
)

// CatalogHandle owns the catalog service and the context of its background load.
type CatalogHandle struct {
	*service.CatalogService
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.cancel()
	h.Wait()
	return nil
}

// ProvideCatalog provides the catalog service and starts the initial load.
// Search indexing is attached before the load so the index never misses it.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	lang, err := language.Parse(cfg.Catalog.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog locale %q: %w", cfg.Catalog.Locale, err)
	}

	loader := dataset.NewLoader(cfg.Catalog.Source, log.WithComponent("dataset"))
	svc := service.NewCatalogService(loader, lang, log.WithComponent("catalog"))

	ctx, cancel := context.WithCancel(context.Background())
	svc.OnLoad(ctx, searchService.CatalogListener())
	svc.Start(ctx)

	log.Info("Catalog load started", "source", cfg.Catalog.Source, "locale", lang.String())

	return &CatalogHandle{CatalogService: svc, cancel: cancel}, nil
}

// ProvideHandoffService provides the selection handoff service.
func ProvideHandoffService(i do.Injector) (*service.HandoffService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)

	return service.NewHandoffService(storeHandle.Store, catalogHandle.CatalogService, service.HandoffConfig{
		TTL:     cfg.Session.TTL,
		Consume: cfg.Session.ConsumeHandoff,
	}, log.WithComponent("handoff")), nil
}
