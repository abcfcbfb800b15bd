// Package search provides relevance-ranked full-text search over the movie catalog.
package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// SearchIndex wraps an in-memory Bleve index. The catalog is small and reloaded from its
// source, so nothing is persisted.
//
// Thread safety: All public methods are safe for concurrent use.
type SearchIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex // guards swapping the index in Replace
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger // discarded if nil
}

// NewSearchIndex creates an empty index.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SearchIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Replace builds a fresh index from docs and swaps it in. Searches running during the
// build see the previous contents.
func (s *SearchIndex) Replace(docs []*MovieDocument) error {
	next, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	if err := indexDocuments(next, docs); err != nil {
		_ = next.Close()
		return err
	}

	s.mu.Lock()
	prev := s.index
	s.index = next
	s.mu.Unlock()

	if err := prev.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}

// indexDocuments indexes docs in batches of 500.
func indexDocuments(index bleve.Index, docs []*MovieDocument) error {
	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
