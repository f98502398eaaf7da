package timeutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWindowDay(t *testing.T) {
	now := time.Now().In(IST)

	for _, name := range []string{"", "day"} {
		w, err := ResolveWindow(name, "", "", "")
		require.NoError(t, err)

		assert.Equal(t, "day", w.Range)
		assert.Equal(t, StartOfDay(now, IST), w.Start)
		assert.Equal(t, EndOfDay(now, IST), w.End)
	}
}

func TestResolveWindowWeek(t *testing.T) {
	w, err := ResolveWindow("week", "", "", "")
	require.NoError(t, err)

	assert.Equal(t, "week", w.Range)
	assert.Equal(t, time.Monday, w.Start.Weekday())
	assert.Equal(t, 0, w.Start.Hour())
	assert.Equal(t, time.Sunday, w.End.Weekday())
	assert.Equal(t, 23, w.End.Hour())

	now := time.Now().In(IST)
	assert.False(t, now.Before(w.Start))
	assert.False(t, now.After(w.End))
}

func TestWeekStartIsMonday(t *testing.T) {
	// 2026-08-31 is a Monday
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, IST)

	cases := []struct {
		day      time.Time
		expected time.Time
	}{
		{monday, monday},
		{monday.Add(10 * time.Hour), monday},                 // same Monday, later in the day
		{time.Date(2026, 9, 2, 12, 0, 0, 0, IST), monday},    // Wednesday
		{time.Date(2026, 9, 6, 23, 59, 0, 0, IST), monday},   // Sunday still belongs to this week
		{time.Date(2026, 9, 7, 0, 0, 0, 0, IST), monday.AddDate(0, 0, 7)}, // next Monday
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, WeekStart(c.day, IST), "for %s", c.day)
	}
}

func TestResolveWindowMonth(t *testing.T) {
	w, err := ResolveWindow("month", "", "", "")
	require.NoError(t, err)

	now := time.Now().In(IST)
	assert.Equal(t, "month", w.Range)
	assert.Equal(t, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, IST), w.Start)
	assert.Equal(t, w.Start.AddDate(0, 1, 0).Add(-time.Nanosecond), w.End)
}

func TestResolveWindowCustom(t *testing.T) {
	t.Run("Valid Range", func(t *testing.T) {
		w, err := ResolveWindow("custom", "", "2026-08-01", "2026-08-15")
		require.NoError(t, err)

		assert.Equal(t, "custom", w.Range)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, IST), w.Start)
		assert.Equal(t, time.Date(2026, 8, 15, 23, 59, 59, 999999999, IST), w.End)
	})

	t.Run("Single Day", func(t *testing.T) {
		w, err := ResolveWindow("custom", "", "2026-08-10", "2026-08-10")
		require.NoError(t, err)
		assert.True(t, w.Start.Before(w.End))
	})

	t.Run("Missing Dates", func(t *testing.T) {
		_, err := ResolveWindow("custom", "", "2026-08-01", "")
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = ResolveWindow("custom", "", "", "2026-08-15")
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("Malformed Date", func(t *testing.T) {
		_, err := ResolveWindow("custom", "", "01-08-2026", "2026-08-15")
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("Inverted Range", func(t *testing.T) {
		_, err := ResolveWindow("custom", "", "2026-08-15", "2026-08-01")
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestResolveWindowUnknownRange(t *testing.T) {
	for _, name := range []string{"year", "quarter", "DAY", "today"} {
		_, err := ResolveWindow(name, "", "", "")
		assert.True(t, errors.Is(err, ErrInvalidRange), "range %q should be rejected", name)
	}
}

func TestResolveWindowTimezone(t *testing.T) {
	w, err := ResolveWindow("custom", "UTC", "2026-08-01", "2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, w.Start.Location())

	// Unknown timezone falls back to IST
	w, err = ResolveWindow("custom", "Not/AZone", "2026-08-01", "2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, IST, w.Start.Location())
}

func TestStartEndOfDay(t *testing.T) {
	ts := time.Date(2026, 8, 31, 14, 30, 45, 123, IST)

	start := StartOfDay(ts, IST)
	end := EndOfDay(ts, IST)

	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, IST), start)
	assert.Equal(t, time.Date(2026, 8, 31, 23, 59, 59, 999999999, IST), end)
}
