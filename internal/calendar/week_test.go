package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", date(2023, 10, 2), date(2023, 10, 2)},
		{"wednesday afternoon", time.Date(2023, 10, 4, 15, 30, 0, 0, time.UTC), date(2023, 10, 2)},
		{"sunday late", time.Date(2023, 10, 8, 23, 59, 59, 0, time.UTC), date(2023, 10, 2)},
		{"across month", date(2023, 11, 1), date(2023, 10, 30)},
		{"across year", date(2024, 1, 3), date(2024, 1, 1)},
		{"sunday before new year", date(2023, 12, 31), date(2023, 12, 25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestWeekStartIsIdempotentMonday(t *testing.T) {
	start := date(2023, 1, 1)
	for i := 0; i < 800; i++ {
		d := start.AddDate(0, 0, i).Add(time.Duration(i%24) * time.Hour)
		ws := WeekStart(d)
		require.Equal(t, time.Monday, ws.Weekday(), "day %s", d)
		require.Equal(t, ws, WeekStart(ws))
		require.False(t, ws.After(d))
	}
}

func TestWeekStartKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got := WeekStart(time.Date(2023, 12, 13, 1, 0, 0, 0, loc))
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, time.Date(2023, 12, 11, 0, 0, 0, 0, loc), got)
}

func TestWeekEnd(t *testing.T) {
	end := WeekEnd(date(2023, 10, 4))
	assert.Equal(t, time.Sunday, end.Weekday())
	assert.Equal(t, date(2023, 10, 9).Add(-time.Nanosecond), end)
}

func TestNextOccurrence(t *testing.T) {
	assert.Equal(t, date(2023, 10, 9), NextOccurrence(date(2023, 10, 2), 1, 1))
	assert.Equal(t, date(2023, 10, 16), NextOccurrence(date(2023, 10, 2), 2, 5))
	// dayOfWeek never moves the anchor
	assert.Equal(t, date(2023, 10, 9), NextOccurrence(date(2023, 10, 2), 1, 0))
	// a mid-week anchor snaps to the Monday of the target week
	assert.Equal(t, date(2023, 10, 9), NextOccurrence(date(2023, 10, 5), 1, 1))
	// non-positive intervals step a single week
	assert.Equal(t, date(2023, 10, 9), NextOccurrence(date(2023, 10, 2), 0, 1))
}

func TestNeededOccurrences(t *testing.T) {
	now := time.Date(2023, 10, 4, 12, 0, 0, 0, time.UTC)

	got := NeededOccurrences(date(2023, 10, 2), 1, 4, now)
	assert.Equal(t, []time.Time{
		date(2023, 10, 9),
		date(2023, 10, 16),
		date(2023, 10, 23),
		date(2023, 10, 30),
	}, got)
}

func TestNeededOccurrencesStepsByInterval(t *testing.T) {
	anchor := date(2023, 1, 2)
	now := date(2023, 3, 15)

	for _, interval := range []int{1, 2, 3, 5} {
		got := NeededOccurrences(anchor, interval, 4, now)
		require.NotEmpty(t, got)
		for k, d := range got {
			assert.True(t, d.After(anchor))
			assert.Equal(t, anchor.AddDate(0, 0, 7*interval*(k+1)), d, "interval %d index %d", interval, k)
		}
		threshold := WeekStart(now).AddDate(0, 0, 28)
		assert.False(t, got[len(got)-1].After(threshold))
		assert.True(t, got[len(got)-1].AddDate(0, 0, 7*interval).After(threshold))
	}
}

func TestHugeIntervalIsClamped(t *testing.T) {
	anchor := date(2023, 10, 2)
	huge := 1317624576693539402

	next := NextOccurrence(anchor, huge, 1)
	assert.True(t, next.After(anchor))
	assert.Equal(t, anchor.AddDate(0, 0, 7*MaxIntervalWeeks), next)

	now := date(2023, 10, 4)
	assert.Empty(t, NeededOccurrences(anchor, huge, 4, now))
	assert.Equal(t, []time.Time{date(2024, 9, 30)}, NeededOccurrences(anchor, huge, 52, now))
}

func TestNeededOccurrencesEmptyWhenAhead(t *testing.T) {
	now := date(2023, 10, 4)
	assert.Empty(t, NeededOccurrences(date(2023, 10, 30), 1, 4, now))
	assert.Empty(t, NeededOccurrences(date(2023, 10, 23), 2, 4, now))
}

func TestDueAt(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)
	monday := date(2023, 10, 9)

	tests := []struct {
		day  int
		want time.Time
	}{
		{1, time.Date(2023, 10, 9, 17, 0, 0, 0, loc)},
		{5, time.Date(2023, 10, 13, 17, 0, 0, 0, loc)},
		{6, time.Date(2023, 10, 14, 17, 0, 0, 0, loc)},
		{0, time.Date(2023, 10, 15, 17, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		got := DueAt(monday, tt.day, 17, 0, loc)
		assert.True(t, tt.want.Equal(got), "day %d: got %s", tt.day, got)
		assert.Equal(t, monday, WeekStart(Date(got)), "day %d stays in the anchored week", tt.day)
	}
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)

	d, err := ParseDate("2023-12-11", loc)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 12, 11), d)

	d, err = ParseDate("2023-12-10T22:30:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 12, 11), d)

	for _, raw := range []string{"2023-12-10T23:30", "2023-12-10T23:30:15", "2023-12-10T23:30:15.250"} {
		d, err = ParseDate(raw, loc)
		require.NoError(t, err, raw)
		assert.Equal(t, date(2023, 12, 10), d, "zone-less %s keeps its written date", raw)
	}

	for _, raw := range []string{"", "  ", "2023-13-01", "not a date", "2023/12/11", "2023-12-10T25:00"} {
		_, err := ParseDate(raw, loc)
		assert.Error(t, err, raw)
	}
}

func TestDateAndIsMonday(t *testing.T) {
	in := time.Date(2023, 12, 11, 23, 10, 0, 0, time.FixedZone("x", 7200))
	assert.Equal(t, date(2023, 12, 11), Date(in))
	assert.True(t, IsMonday(in))
	assert.False(t, IsMonday(date(2023, 12, 12)))
}
