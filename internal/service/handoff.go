package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/handoff"
)

// HandoffStore persists the raw selection payload per session.
type HandoffStore interface {
	PutHandoff(ctx context.Context, sessionID string, payload []byte, ttl time.Duration) error
	GetHandoff(ctx context.Context, sessionID string) ([]byte, error)
	TakeHandoff(ctx context.Context, sessionID string) ([]byte, error)
}

// MovieFinder resolves a title against the current catalog.
type MovieFinder interface {
	Find(title string) (domain.Movie, error)
}

// HandoffConfig controls how selections are stored and delivered.
type HandoffConfig struct {
	TTL     time.Duration // lifetime of a stored selection
	Consume bool          // delete the selection once it has been read
}

// HandoffService carries the selected movie from the catalog page to the details page.
type HandoffService struct {
	store  HandoffStore
	finder MovieFinder
	cfg    HandoffConfig
	logger *slog.Logger
}

// NewHandoffService creates a new handoff service.
func NewHandoffService(store HandoffStore, finder MovieFinder, cfg HandoffConfig, logger *slog.Logger) *HandoffService {
	return &HandoffService{
		store:  store,
		finder: finder,
		cfg:    cfg,
		logger: logger,
	}
}

// Select records title as the session's selection. When the title is not in
// the catalog nothing is written and a NOT_FOUND error is returned.
func (s *HandoffService) Select(ctx context.Context, sessionID, title string) (domain.Movie, error) {
	movie, err := s.finder.Find(title)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			s.logger.Warn("selected movie not found",
				"title", title,
				"session", sessionID,
			)
		}
		return domain.Movie{}, err
	}

	payload, err := handoff.Encode(movie)
	if err != nil {
		return domain.Movie{}, err
	}

	if err := s.store.PutHandoff(ctx, sessionID, payload, s.cfg.TTL); err != nil {
		return domain.Movie{}, errors.Wrap(err, errors.CodeInternal, "store selection")
	}

	s.logger.Debug("movie selected", "title", movie.Title, "session", sessionID)
	return movie, nil
}

// Read returns the session's selection. It never fails: storage errors and
// undecodable payloads both surface as an invalid handoff.
func (s *HandoffService) Read(ctx context.Context, sessionID string) domain.Handoff {
	var (
		payload []byte
		err     error
	)
	if s.cfg.Consume {
		payload, err = s.store.TakeHandoff(ctx, sessionID)
	} else {
		payload, err = s.store.GetHandoff(ctx, sessionID)
	}

	if errors.Is(err, errors.ErrNotFound) {
		return domain.MissingHandoff()
	}
	if err != nil {
		s.logger.Error("failed to read selection", "session", sessionID, "error", err)
		return domain.InvalidHandoff()
	}

	movie, err := handoff.Decode(payload)
	if err != nil {
		s.logger.Error("stored selection is unreadable",
			"session", sessionID,
			"bytes", len(payload),
			"error", err,
		)
		return domain.InvalidHandoff()
	}

	return domain.ValidHandoff(movie)
}
