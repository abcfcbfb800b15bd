package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for movie documents.
//
// Titles and synopses get English analysis with term vectors for highlighting.
// Tags and year are keywords: a tag like "sci-fi" stays one term and years are matched
// as written.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	synopsisFieldMapping := bleve.NewTextFieldMapping()
	synopsisFieldMapping.Analyzer = en.AnalyzerName
	synopsisFieldMapping.Store = true
	synopsisFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("synopsis", synopsisFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	yearFieldMapping := bleve.NewTextFieldMapping()
	yearFieldMapping.Analyzer = keyword.Name
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	positionFieldMapping := bleve.NewNumericFieldMapping()
	positionFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("position", positionFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
