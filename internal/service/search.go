package service

import (
	"context"
	"log/slog"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/search"
)

// SearchService keeps the full-text index in step with the catalog and runs
// relevance-ranked queries against it.
type SearchService struct {
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		logger: logger,
	}
}

// Search runs params against the index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Limit > search.MaxLimit {
		return nil, errors.Validationf("limit must be at most %d", search.MaxLimit).
			WithDetails(map[string]string{"limit": "too large"})
	}
	if params.Offset < 0 {
		return nil, errors.Validation("offset must not be negative")
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search failed")
	}
	return result, nil
}

// Reindex replaces the index contents with movies.
func (s *SearchService) Reindex(_ context.Context, movies []domain.Movie) error {
	if err := s.index.Replace(search.DocumentsFromMovies(movies)); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "rebuild search index")
	}
	s.logger.Info("search index rebuilt", "documents", len(movies))
	return nil
}

// CatalogListener adapts Reindex for CatalogService.OnLoad.
func (s *SearchService) CatalogListener() CatalogListener {
	return func(ctx context.Context, movies []domain.Movie) {
		if err := s.Reindex(ctx, movies); err != nil {
			s.logger.Error("failed to index catalog", "error", err)
		}
	}
}

// DocumentCount returns the number of indexed movies.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
