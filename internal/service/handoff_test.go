package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqueeapp/marquee-server/internal/domain"
	"github.com/marqueeapp/marquee-server/internal/errors"
	"github.com/marqueeapp/marquee-server/internal/store"
)

func setupHandoffService(t *testing.T, cfg HandoffConfig) (*HandoffService, *store.Store) {
	t.Helper()

	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck // Test cleanup

	catalog := readyCatalog(t, scenarioMovies())
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	return NewHandoffService(s, catalog, cfg, discardLogger()), s
}

func TestHandoffService_SelectThenRead(t *testing.T) {
	svc, _ := setupHandoffService(t, HandoffConfig{})
	ctx := context.Background()

	selected, err := svc.Select(ctx, "sess-a", "Alpha")
	require.NoError(t, err)

	h := svc.Read(ctx, "sess-a")
	require.Equal(t, domain.HandoffValid, h.Status)
	if diff := cmp.Diff(selected, h.Movie); diff != "" {
		t.Errorf("handoff round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, scenarioMovies()[0].Tags, h.Movie.Tags)
}

func TestHandoffService_PersistsAcrossReads(t *testing.T) {
	svc, _ := setupHandoffService(t, HandoffConfig{})
	ctx := context.Background()

	_, err := svc.Select(ctx, "sess-a", "Alpha")
	require.NoError(t, err)

	assert.Equal(t, domain.HandoffValid, svc.Read(ctx, "sess-a").Status)
	assert.Equal(t, domain.HandoffValid, svc.Read(ctx, "sess-a").Status)
}

func TestHandoffService_ConsumeIsReadOnce(t *testing.T) {
	svc, _ := setupHandoffService(t, HandoffConfig{Consume: true})
	ctx := context.Background()

	_, err := svc.Select(ctx, "sess-a", "Alpha")
	require.NoError(t, err)

	assert.Equal(t, domain.HandoffValid, svc.Read(ctx, "sess-a").Status)
	assert.Equal(t, domain.HandoffMissing, svc.Read(ctx, "sess-a").Status)
}

func TestHandoffService_LaterSelectionWins(t *testing.T) {
	svc, _ := setupHandoffService(t, HandoffConfig{})
	ctx := context.Background()

	_, err := svc.Select(ctx, "sess-a", "Alpha")
	require.NoError(t, err)
	_, err = svc.Select(ctx, "sess-a", "Gamma")
	require.NoError(t, err)

	h := svc.Read(ctx, "sess-a")
	assert.Equal(t, "Gamma", h.Movie.Title)
}

func TestHandoffService_SessionsAreIsolated(t *testing.T) {
	svc, _ := setupHandoffService(t, HandoffConfig{})
	ctx := context.Background()

	_, err := svc.Select(ctx, "sess-a", "Alpha")
	require.NoError(t, err)

	assert.Equal(t, domain.HandoffMissing, svc.Read(ctx, "sess-b").Status)
}

func TestHandoffService_SelectMissLeavesStateUntouched(t *testing.T) {
	var logs bytes.Buffer
	svc, s := setupHandoffService(t, HandoffConfig{})
	svc.logger = slog.New(slog.NewTextHandler(&logs, nil))
	ctx := context.Background()

	_, err := svc.Select(ctx, "sess-a", "Alpha")
	require.NoError(t, err)

	_, err = svc.Select(ctx, "sess-a", "Nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Contains(t, logs.String(), "selected movie not found")
	assert.Contains(t, logs.String(), "title=Nope")

	count, err := s.CountHandoffs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "Alpha", svc.Read(ctx, "sess-a").Movie.Title)
}

func TestHandoffService_ReadMissing(t *testing.T) {
	svc, _ := setupHandoffService(t, HandoffConfig{})

	h := svc.Read(context.Background(), "sess-new")
	assert.Equal(t, domain.HandoffMissing, h.Status)
	_, ok := h.Get()
	assert.False(t, ok)
}

func TestHandoffService_ReadInvalidPayloads(t *testing.T) {
	payloads := map[string]string{
		"not json":          "not json",
		"wrong version":     `{"v":2,"movie":{"nome":"Alpha"}}`,
		"missing title":     `{"v":1,"movie":{"ano":"2001"}}`,
		"no movie":          `{"v":1}`,
		"unknown field":     `{"v":1,"movie":{"nome":"Alpha"},"extra":true}`,
		"bare movie record": `{"nome":"Alpha"}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			svc, s := setupHandoffService(t, HandoffConfig{})
			ctx := context.Background()
			require.NoError(t, s.PutHandoff(ctx, "sess-a", []byte(payload), time.Hour))

			assert.NotPanics(t, func() {
				h := svc.Read(ctx, "sess-a")
				assert.Equal(t, domain.HandoffInvalid, h.Status)
			})
		})
	}
}

type failingStore struct{}

func (failingStore) PutHandoff(context.Context, string, []byte, time.Duration) error {
	return stderrors.New("disk full")
}

func (failingStore) GetHandoff(context.Context, string) ([]byte, error) {
	return nil, stderrors.New("io error")
}

func (failingStore) TakeHandoff(context.Context, string) ([]byte, error) {
	return nil, stderrors.New("io error")
}

func TestHandoffService_StorageFailures(t *testing.T) {
	catalog := readyCatalog(t, scenarioMovies())
	svc := NewHandoffService(failingStore{}, catalog, HandoffConfig{TTL: time.Hour}, discardLogger())
	ctx := context.Background()

	_, err := svc.Select(ctx, "sess-a", "Alpha")
	var coded *errors.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, errors.CodeInternal, coded.Code)

	assert.Equal(t, domain.HandoffInvalid, svc.Read(ctx, "sess-a").Status)
}
