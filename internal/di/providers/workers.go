package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/marqueeapp/marquee-server/internal/config"
	"github.com/marqueeapp/marquee-server/internal/logger"
	"github.com/marqueeapp/marquee-server/internal/ratelimit"
	"github.com/marqueeapp/marquee-server/internal/watcher"
)

// storeGCInterval is how often the value log garbage collector runs.
const storeGCInterval = 1 * time.Hour

// DatasetWatcherHandle reloads the catalog when its source file changes.
// Watcher is nil when watching is disabled.
type DatasetWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DatasetWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideDatasetWatcher provides the dataset file watcher.
func ProvideDatasetWatcher(i do.Injector) (*DatasetWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)

	if !cfg.Catalog.Watch {
		log.Info("Dataset watching disabled by configuration")
		return &DatasetWatcherHandle{}, nil
	}

	w, err := watcher.New(cfg.Catalog.Source, log.WithComponent("watcher"), watcher.Options{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Dataset watcher error", "error", err)
		}
	}()

	go func() {
		for {
			select {
			case event := <-w.Events():
				switch event.Type {
				case watcher.EventModified:
					log.Info("Dataset changed, reloading catalog", "path", event.Path, "size", event.Size)
					// Reload logs its own failure and keeps the last good catalog.
					_ = catalogHandle.Reload(ctx) //nolint:errcheck // logged by Reload
				case watcher.EventRemoved:
					log.Warn("Dataset file removed, keeping current catalog", "path", event.Path)
				}
			case err := <-w.Errors():
				log.Warn("dataset watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Dataset watcher started", "path", w.Path())

	return &DatasetWatcherHandle{Watcher: w, cancel: cancel}, nil
}

// StoreGCJob runs periodic value log garbage collection on the store.
type StoreGCJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *StoreGCJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideStoreGCJob provides the periodic store maintenance job.
func ProvideStoreGCJob(i do.Injector) (*StoreGCJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(storeGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := storeHandle.RunGC(); err != nil {
					log.Warn("Store garbage collection failed", "error", err)
				} else {
					log.Debug("Store garbage collection completed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Store maintenance job started", "interval", storeGCInterval)

	return &StoreGCJob{cancel: cancel}, nil
}

// SelectLimiterHandle wraps the per-client selection rate limiter.
type SelectLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *SelectLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideSelectLimiter provides the rate limiter for selection submissions.
func ProvideSelectLimiter(i do.Injector) (*SelectLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &SelectLimiterHandle{
		KeyedRateLimiter: ratelimit.PerMinute(cfg.RateLimit.SelectPerMinute, cfg.RateLimit.SelectBurst),
	}, nil
}
