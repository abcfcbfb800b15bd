package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Limits for a single request.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchParams configures a search query.
type SearchParams struct {
	Query     string
	Tags      []string // every listed tag must be present
	Year      string   // exact year, as written in the dataset
	Limit     int
	Offset    int
	Highlight bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     DefaultLimit,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         string            `json:"id"`
	Position   int               `json:"position"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Year       string            `json:"year,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	params.Limit = min(params.Limit, MaxLimit)

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "position"})
	req.Fields = []string{"title", "year", "tags", "position"}

	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("synopsis")
	}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}

		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if y, ok := hit.Fields["year"].(string); ok {
			h.Year = y
		}
		if p, ok := hit.Fields["position"].(float64); ok {
			h.Position = int(p)
		}
		switch tags := hit.Fields["tags"].(type) {
		case string:
			h.Tags = []string{tags}
		case []any:
			for _, t := range tags {
				if s, ok := t.(string); ok {
					h.Tags = append(h.Tags, s)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		tagMatch := bleve.NewTermQuery(strings.ToLower(q))
		tagMatch.SetField("tags")
		tagMatch.SetBoost(2.0)

		synopsisMatch := bleve.NewMatchQuery(q)
		synopsisMatch.SetField("synopsis")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, tagMatch, synopsisMatch, fuzzy}

		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	for _, tag := range params.Tags {
		tq := bleve.NewTermQuery(strings.ToLower(tag))
		tq.SetField("tags")
		queries = append(queries, tq)
	}

	if params.Year != "" {
		yq := bleve.NewTermQuery(params.Year)
		yq.SetField("year")
		queries = append(queries, yq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
