package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqueeapp/marquee-server/internal/errors"
)

func TestParseSortMode(t *testing.T) {
	for _, mode := range AllSortModes() {
		got, err := ParseSortMode(string(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	got, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortYearDesc, got)

	_, err = ParseSortMode("rating")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestSortModeOrDefault(t *testing.T) {
	assert.Equal(t, SortAlphabetical, SortModeOrDefault("alphabetical"))
	assert.Equal(t, DefaultSortMode, SortModeOrDefault("bogus"))
	assert.Equal(t, DefaultSortMode, SortModeOrDefault(""))
}

func TestAllSortModes_OrderAndLabels(t *testing.T) {
	modes := AllSortModes()
	assert.Equal(t, []SortMode{SortYearDesc, SortYearAsc, SortAlphabetical}, modes)
	for _, m := range modes {
		assert.True(t, m.Valid())
		assert.NotEqual(t, string(m), m.Label())
	}
	assert.False(t, SortMode("x").Valid())
}
