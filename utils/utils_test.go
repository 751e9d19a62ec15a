package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-05 14:30:00",
		"2024-03-05 14:30",
		"2024-03-05T14:30:00",
		"2024.03.05. 14:30",
		"2024.03.05 14:30:00",
		" 2024/03/05 14:30 ",
	} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
		assert.Equal(t, time.UTC, got.Location())
	}

	day, err := ParseTimestamp("2024.03.05.")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseTimestamp("")
	assert.ErrorIs(t, err, ErrEmptyValue)
	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	tests := map[string]float64{
		"0,150": 0.15,
		"0.150": 0.15,
		" 12 ":  12,
		"-0,25": -0.25,
	}
	for in, want := range tests {
		got, err := ParseDecimal(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}

	for _, in := range []string{"abc", "NaN", "Inf", "1,2,3", "1 234,5", "1\u00a0234"} {
		_, err := ParseDecimal(in)
		assert.Error(t, err, in)
	}
	_, err := ParseDecimal("  ")
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestParseTimestampKeepsWallClock(t *testing.T) {
	got, err := ParseTimestamp("2024-03-05T14:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), got)

	got, err = ParseTimestamp("2024-03-05T14:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), got)
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "0.15", FormatDecimal(0.15))
	assert.Equal(t, "12", FormatDecimal(12))
	assert.Equal(t, "-0.005", FormatDecimal(-0.005))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 1, 31, 23, 45, 10, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}
