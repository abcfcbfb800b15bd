package response

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqueeapp/marquee-server/internal/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"title": "Alpha"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	result := decode(t, w)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]any{"title": "Alpha"}, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_ErrorStatusIsNotSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNotFound, map[string]string{"title": "Alpha"}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "msg", nil) }, http.StatusBadRequest},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "msg", nil) }, http.StatusNotFound},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, "msg", nil) }, http.StatusMethodNotAllowed},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "msg", nil) }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			result := decode(t, w)
			assert.False(t, result.Success)
			assert.Equal(t, "msg", result.Error)
		})
	}
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequests(w, 1500*time.Millisecond, discard())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decode(t, w).Code)

	w = httptest.NewRecorder()
	TooManyRequests(w, 0, nil)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestHandleError_CodedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NotFound("movie not in catalog"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", errors.Validation("bad sort"), http.StatusBadRequest, "VALIDATION"},
		{"unavailable", errors.Unavailable("catalog loading"), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"payload", errors.InvalidPayload("bad handoff"), http.StatusBadRequest, "INVALID_PAYLOAD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discard())

			assert.Equal(t, tt.status, w.Code)
			result := decode(t, w)
			assert.False(t, result.Success)
			assert.Equal(t, tt.code, result.Code)
		})
	}
}

func TestHandleError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	err := errors.ValidationWithDetails("validation failed", map[string]string{"nome": "required"})

	HandleError(w, err, discard())

	result := decode(t, w)
	assert.Equal(t, map[string]any{"nome": "required"}, result.Details)
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, stderrors.New("disk on fire"), discard())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	result := decode(t, w)
	assert.Equal(t, "internal server error", result.Error)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}
