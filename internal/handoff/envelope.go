// Package handoff defines the typed payload that carries a selected movie from the
// catalog page to the details page.
package handoff

import (
	"bytes"
	"encoding/json"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/validation"
)

// Version is the only envelope schema written and accepted.
const Version = 1

// Envelope is the stored form of a selection.
type Envelope struct {
	Version int           `json:"v"`
	Movie   *domain.Movie `json:"movie"`
}

var validator = validation.New()

// Encode serialises movie into a versioned envelope.
func Encode(movie domain.Movie) ([]byte, error) {
	data, err := json.Marshal(Envelope{Version: Version, Movie: &movie})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode handoff")
	}
	return data, nil
}

// Decode parses and validates a stored envelope. Any failure is an INVALID_PAYLOAD error.
func Decode(data []byte) (domain.Movie, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return domain.Movie{}, errors.Wrap(err, errors.CodeInvalidPayload, "handoff is not a valid envelope")
	}
	if dec.More() {
		return domain.Movie{}, errors.InvalidPayload("handoff has trailing data")
	}
	if env.Version != Version {
		return domain.Movie{}, errors.InvalidPayload("unsupported handoff version").
			WithDetails(map[string]int{"version": env.Version})
	}
	if env.Movie == nil {
		return domain.Movie{}, errors.InvalidPayload("handoff carries no movie")
	}
	if err := validator.Validate(env.Movie); err != nil {
		return domain.Movie{}, errors.Wrap(err, errors.CodeInvalidPayload, "handoff movie is invalid")
	}
	return *env.Movie, nil
}
