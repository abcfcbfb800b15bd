package store

import (
	"github.com/marqueeapp/marquee-server/internal/errors"
)

// Sentinel errors.
var (
	ErrHandoffNotFound = errors.NotFound("no handoff stored for session")
	ErrInvalidSession  = errors.Validation("session id is required")
	ErrClosed          = errors.Unavailable("database is closed")
)
