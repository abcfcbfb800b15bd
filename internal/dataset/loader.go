// Package dataset retrieves the movie records from a local file or an HTTP URL.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/marqueeapp/marquee-server/internal/catalog"
	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/normalize"
	"github.com/marqueeapp/marquee-server/internal/validation"
)

// maxBodySize caps how much of the dataset is read.
const maxBodySize = 32 << 20

// Loader fetches and validates the full record set.
type Loader struct {
	source     string
	httpClient *http.Client
	validator  *validation.Validator
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.httpClient = c }
}

// NewLoader creates a loader for source, which is either an http(s) URL or a file path
// (optionally prefixed with file://).
func NewLoader(source string, logger *slog.Logger, opts ...Option) *Loader {
	l := &Loader{
		source: source,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		validator: validation.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the configured source.
func (l *Loader) Source() string { return l.source }

// IsRemote reports whether the source is fetched over HTTP.
func (l *Loader) IsRemote() bool {
	return strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://")
}

// Path is the filesystem path of a local source. Empty for URLs.
func (l *Loader) Path() string {
	if l.IsRemote() {
		return ""
	}
	return strings.TrimPrefix(l.source, "file://")
}

// Load returns the valid records in source order, or an UNAVAILABLE error. Invalid
// records are logged and skipped; a dataset where none is valid fails the load.
func (l *Loader) Load(ctx context.Context) ([]domain.Movie, error) {
	start := time.Now()

	body, err := l.open(ctx)
	if err != nil {
		l.logger.Error("dataset unavailable", "source", l.source, "error", err)
		return nil, err
	}
	defer body.Close()

	var movies []domain.Movie
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(&movies); err != nil {
		l.logger.Error("dataset is not a JSON array of movies", "source", l.source, "error", err)
		return nil, errors.Wrap(err, errors.CodeUnavailable, "dataset is malformed")
	}

	valid := movies[:0]
	var lastErr error
	for i, m := range movies {
		m.Title = strings.TrimSpace(m.Title)
		m.Tags = normalize.Tags(m.Tags)

		synopsis, markdown := normalize.Synopsis(m.Synopsis)
		m.Synopsis = synopsis
		m.SynopsisFormat = domain.TextPlain
		if markdown {
			m.SynopsisFormat = domain.TextMarkdown
		}

		if err := l.validator.Validate(&m); err != nil {
			l.logger.Warn("dataset record skipped", "source", l.source, "index", i, "title", m.Title, "error", err)
			lastErr = err
			continue
		}
		valid = append(valid, m)
	}

	if len(valid) == 0 && lastErr != nil {
		return nil, errors.Wrap(lastErr, errors.CodeUnavailable, "dataset has no valid records")
	}
	if skipped := len(movies) - len(valid); skipped > 0 {
		l.logger.Warn("dataset records skipped", "source", l.source, "skipped", skipped, "kept", len(valid))
	}
	movies = valid

	if dups := catalog.DuplicateTitles(movies); len(dups) > 0 {
		l.logger.Warn("dataset has duplicate titles; selection uses the first", "titles", dups)
	}

	l.logger.Info("dataset loaded",
		"source", l.source,
		"movies", len(movies),
		"duration", time.Since(start),
	)
	return movies, nil
}

func (l *Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if !l.IsRemote() {
		f, err := os.Open(l.Path()) //#nosec G304 -- dataset path comes from configuration
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnavailable, "dataset file cannot be opened")
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "dataset request is invalid")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "dataset request failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.Unavailablef("dataset request failed: status %d", resp.StatusCode).
			WithDetails(map[string]any{"status": resp.StatusCode, "source": l.source}).
			WithCause(fmt.Errorf("unexpected status %s", resp.Status))
	}
	return resp.Body, nil
}
