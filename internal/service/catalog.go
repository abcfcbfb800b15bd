package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/marqueeapp/marquee-server/internal/catalog"
	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
)

// MovieLoader fetches the full record set from the configured source.
type MovieLoader interface {
	Load(ctx context.Context) ([]domain.Movie, error)
	Source() string
}

// CatalogListener is called with the record set after every successful load.
type CatalogListener func(ctx context.Context, movies []domain.Movie)

// CatalogService owns the loaded dataset. Readers always see one immutable
// snapshot; a load swaps the snapshot atomically.
type CatalogService struct {
	loader MovieLoader
	lang   language.Tag
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	snapshot  catalog.Snapshot
	listeners []CatalogListener

	reloadMu  sync.Mutex // serialises loads
	startOnce sync.Once
	loaded    chan struct{}
	wg        sync.WaitGroup
}

// NewCatalogService creates a catalog in the loading state.
func NewCatalogService(loader MovieLoader, lang language.Tag, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		loader:   loader,
		lang:     lang,
		logger:   logger,
		now:      time.Now,
		snapshot: catalog.LoadingSnapshot(),
		loaded:   make(chan struct{}),
	}
}

// OnLoad registers a listener. Listeners added after a load has completed are
// called immediately with the current records.
func (s *CatalogService) OnLoad(ctx context.Context, fn CatalogListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	snap := s.snapshot
	s.mu.Unlock()

	if snap.Status == domain.CatalogReady {
		fn(ctx, snap.Movies)
	}
}

// Start runs the initial load in the background. Calling it again is a no-op.
func (s *CatalogService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer close(s.loaded)

			if err := s.load(ctx, false); err != nil {
				s.logger.Error("failed to load movie catalog",
					"source", s.loader.Source(),
					"error", err,
				)
			}
		}()
	})
}

// WaitLoaded blocks until the initial load has finished, successfully or not.
func (s *CatalogService) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until background work started by Start has returned.
func (s *CatalogService) Wait() {
	s.wg.Wait()
}

// Reload fetches the dataset again. A failed reload keeps the last ready
// snapshot in place.
func (s *CatalogService) Reload(ctx context.Context) error {
	if err := s.load(ctx, true); err != nil {
		s.logger.Warn("catalog reload failed",
			"source", s.loader.Source(),
			"error", err,
		)
		return err
	}
	return nil
}

func (s *CatalogService) load(ctx context.Context, reload bool) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := s.now()
	movies, err := s.loader.Load(ctx)
	if err != nil {
		s.mu.Lock()
		if !reload || s.snapshot.Status != domain.CatalogReady {
			s.snapshot = catalog.FailedSnapshot(err, s.now())
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.snapshot = catalog.ReadySnapshot(movies, s.now())
	listeners := append([]CatalogListener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("movie catalog ready",
		"movies", len(movies),
		"reload", reload,
		"duration", s.now().Sub(start),
	)

	for _, fn := range listeners {
		fn(ctx, movies)
	}
	return nil
}

// Snapshot returns the current snapshot.
func (s *CatalogService) Snapshot() catalog.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Status returns the catalog lifecycle state.
func (s *CatalogService) Status() domain.CatalogStatus {
	return s.Snapshot().Status
}

// State returns the page state for a query and sort mode.
func (s *CatalogService) State(query string, mode domain.SortMode) catalog.State {
	return catalog.NewState(s.Snapshot(), s.lang).WithSort(mode).WithQuery(query)
}

// View projects the current snapshot. An unrecognised sort parameter falls back
// to the default mode.
func (s *CatalogService) View(query, sortParam string) catalog.View {
	return s.State(query, domain.SortModeOrDefault(sortParam)).View()
}

// Find looks up a movie by exact title in the current snapshot.
func (s *CatalogService) Find(title string) (domain.Movie, error) {
	snap := s.Snapshot()
	switch snap.Status {
	case domain.CatalogLoading:
		return domain.Movie{}, errors.Unavailable("movie catalog is still loading")
	case domain.CatalogFailed:
		return domain.Movie{}, errors.Unavailable("movie catalog failed to load").WithCause(snap.Err)
	}

	movie, ok := catalog.FindByTitle(snap.Movies, title)
	if !ok {
		return domain.Movie{}, errors.NotFoundf("movie %q not in catalog", title)
	}
	return movie, nil
}
