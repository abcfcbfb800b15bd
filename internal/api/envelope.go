package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqueeapp/marquee-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in response.Envelope so
// JSON clients see the same shape from huma and plain chi handlers.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return response.Envelope{
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}

	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}
	return response.Envelope{
		Success: code < 400,
		Data:    v,
	}, nil
}
