package providers

import (
	"github.com/samber/do/v2"

	"github.com/marqueeapp/marquee-server/internal/logger"
	"github.com/marqueeapp/marquee-server/internal/search"
	"github.com/marqueeapp/marquee-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve index. It is rebuilt from the
// catalog on every load, so nothing is persisted.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{Logger: log.Logger})
	if err != nil {
		return nil, err
	}

	log.Info("Search index initialized")

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.SearchIndex, log.Logger), nil
}
