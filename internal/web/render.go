// Package web renders the catalog and details pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/marqueeapp/marquee-server/internal/catalog"
	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/normalize"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static/*
var static embed.FS

// User-visible messages.
const (
	MsgLoading       = "Loading movies…"
	MsgLoadError     = "An error occurred while loading the movies. Please try reloading the page."
	MsgNoResults     = "No movies found with that name. Try again."
	MsgNoSelection   = "No movie selected. Please go back to the home page and choose a movie."
	MsgDetailsFailed = "Could not load the movie details."
	LinkLabel        = "View on IMDb"
)

// Grid states, exposed on the grid's data-state attribute.
const (
	stateLoading = "loading"
	stateError   = "error"
	stateEmpty   = "empty"
	stateResults = "results"
)

// DefaultExcerptLength is used when Options.ExcerptLength is not positive.
const DefaultExcerptLength = 160

// Options configures a Renderer.
type Options struct {
	ExcerptLength int
	Lang          string
	Logger        *slog.Logger
}

// Renderer executes the embedded page templates.
type Renderer struct {
	catalog *template.Template
	details *template.Template
	excerpt int
	lang    string
	logger  *slog.Logger
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = DefaultExcerptLength
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	catalogTmpl, err := template.ParseFS(templates, "templates/layout.html", "templates/catalog.html")
	if err != nil {
		return nil, fmt.Errorf("parse catalog template: %w", err)
	}
	detailsTmpl, err := template.ParseFS(templates, "templates/layout.html", "templates/details.html")
	if err != nil {
		return nil, fmt.Errorf("parse details template: %w", err)
	}

	return &Renderer{
		catalog: catalogTmpl,
		details: detailsTmpl,
		excerpt: opts.ExcerptLength,
		lang:    opts.Lang,
		logger:  opts.Logger,
	}, nil
}

type page struct {
	Lang    string
	Title   string
	Refresh bool // reload the page while the catalog is loading
}

type catalogPage struct {
	page
	Query    string
	Sort     domain.SortMode
	Controls []catalog.SortControl
	State    string
	Message  string
	Cards    []card
	Total    int
}

type card struct {
	Title   string
	Heading string
	Poster  string
	Tags    []string
	Excerpt string
}

type detailsPage struct {
	page
	State     domain.HandoffStatus
	Message   string
	Movie     *movieDetails
	LinkLabel string
}

type movieDetails struct {
	Title    string
	Heading  string
	Poster   string
	Link     string
	Tags     []string
	Synopsis template.HTML
}

// Catalog writes the catalog page for view. The grid shows exactly one of the
// loading, error and no-results messages, or one card per movie.
func (r *Renderer) Catalog(w io.Writer, view catalog.View) error {
	data := catalogPage{
		page:     page{Lang: r.lang, Title: "Movies"},
		Query:    view.Query,
		Sort:     view.Sort,
		Controls: view.Controls,
		Total:    view.Total,
	}

	switch {
	case view.Status == domain.CatalogLoading:
		data.State = stateLoading
		data.Message = MsgLoading
		data.Refresh = true
	case view.Status == domain.CatalogFailed:
		data.State = stateError
		data.Message = MsgLoadError
	case len(view.Movies) == 0:
		data.State = stateEmpty
		data.Message = MsgNoResults
	default:
		data.State = stateResults
		data.Cards = make([]card, len(view.Movies))
		for i, m := range view.Movies {
			data.Cards[i] = r.card(m)
		}
	}

	return r.catalog.ExecuteTemplate(w, "layout", data)
}

func (r *Renderer) card(m domain.Movie) card {
	return card{
		Title:   m.Title,
		Heading: m.Heading(),
		Poster:  m.Poster,
		Tags:    m.Tags,
		Excerpt: normalize.Excerpt(synopsisText(m), r.excerpt),
	}
}

// synopsisText is the synopsis as readable text. Plain synopses are used verbatim.
func synopsisText(m domain.Movie) string {
	if m.SynopsisIsMarkdown() {
		return normalize.MarkdownToText(m.Synopsis)
	}
	return m.Synopsis
}

// Details writes the details page for a handoff.
func (r *Renderer) Details(w io.Writer, h domain.Handoff) error {
	data := detailsPage{
		page:      page{Lang: r.lang, Title: "Movie details"},
		State:     h.Status,
		LinkLabel: LinkLabel,
	}

	movie, ok := h.Get()
	switch {
	case ok:
		data.Title = movie.Title
		data.Movie = r.detailsOf(movie)
	case h.Status == domain.HandoffInvalid:
		data.Message = MsgDetailsFailed
	default:
		data.State = domain.HandoffMissing
		data.Message = MsgNoSelection
	}

	return r.details.ExecuteTemplate(w, "layout", data)
}

func (r *Renderer) detailsOf(m domain.Movie) *movieDetails {
	return &movieDetails{
		Title:    m.Title,
		Heading:  m.Heading(),
		Poster:   m.Poster,
		Link:     m.Link,
		Tags:     m.Tags,
		Synopsis: r.synopsisHTML(m),
	}
}

func (r *Renderer) synopsisHTML(m domain.Movie) template.HTML {
	if !m.SynopsisIsMarkdown() {
		return normalize.TextToHTML(m.Synopsis)
	}
	synopsis, err := normalize.MarkdownToHTML(m.Synopsis)
	if err != nil {
		r.logger.Warn("failed to render synopsis markdown", "title", m.Title, "error", err)
		return normalize.TextToHTML(m.Synopsis)
	}
	return synopsis
}

// ServeCatalog renders the catalog page into w. Template failures are logged
// and answered with a plain 500.
func (r *Renderer) ServeCatalog(w http.ResponseWriter, view catalog.View) {
	r.serve(w, "catalog", func(buf *bytes.Buffer) error { return r.Catalog(buf, view) })
}

// ServeDetails renders the details page into w.
func (r *Renderer) ServeDetails(w http.ResponseWriter, h domain.Handoff) {
	r.serve(w, "details", func(buf *bytes.Buffer) error { return r.Details(buf, h) })
}

func (r *Renderer) serve(w http.ResponseWriter, name string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		r.logger.Error("Failed to execute template", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write page", "page", name, "error", err)
	}
}

// StaticHandler serves the embedded stylesheet. Mount it under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
