// Package calendar holds the Monday-based week arithmetic used by the generator and reports.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format of week-start dates.
	DateLayout = "2006-01-02"

	// MaxIntervalWeeks caps the step between two instances of a series.
	MaxIntervalWeeks = 52

	daysPerWeek = 7
)

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % daysPerWeek
	year, month, day := t.Date()
	return time.Date(year, month, day-offset, 0, 0, 0, 0, t.Location())
}

// WeekEnd returns the last instant of the Sunday closing the week containing t.
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, daysPerWeek).Add(-time.Nanosecond)
}

// NextOccurrence moves lastWeekStart forward by intervalWeeks and re-anchors on that week's Monday.
// dayOfWeek only affects due dates (see DueAt), never the anchor week. The interval is clamped
// to [1, MaxIntervalWeeks].
func NextOccurrence(lastWeekStart time.Time, intervalWeeks, dayOfWeek int) time.Time {
	if intervalWeeks < 1 {
		intervalWeeks = 1
	}
	if intervalWeeks > MaxIntervalWeeks {
		intervalWeeks = MaxIntervalWeeks
	}
	return WeekStart(lastWeekStart.AddDate(0, 0, intervalWeeks*daysPerWeek))
}

// NeededOccurrences lists the week starts after lastWeekStart, stepping by intervalWeeks,
// up to and including the Monday weeksBuffer weeks after the current week.
func NeededOccurrences(lastWeekStart time.Time, intervalWeeks, weeksBuffer int, now time.Time) []time.Time {
	threshold := WeekStart(now).AddDate(0, 0, weeksBuffer*daysPerWeek)

	var needs []time.Time
	prev := lastWeekStart
	for current := NextOccurrence(prev, intervalWeeks, 1); current.After(prev) && !current.After(threshold); {
		needs = append(needs, current)
		prev, current = current, NextOccurrence(current, intervalWeeks, 1)
	}
	return needs
}

// DueAt places a due time inside the Monday-anchored week: days 1..6 are Monday..Saturday,
// day 0 is the Sunday that closes the same week.
func DueAt(weekStart time.Time, dayOfWeek, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	offset := dayOfWeek - 1
	if dayOfWeek == 0 {
		offset = daysPerWeek - 1
	}
	year, month, day := weekStart.Date()
	return time.Date(year, month, day+offset, hour, minute, 0, 0, loc)
}

// Date drops the clock and zone of t, keeping its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IsMonday reports whether t falls on a Monday.
func IsMonday(t time.Time) bool {
	return t.Weekday() == time.Monday
}

// localLayouts are ISO timestamps without a zone; they already name a wall-clock date.
var localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

// ParseDate accepts YYYY-MM-DD, an RFC 3339 timestamp or a zone-less ISO timestamp.
// RFC 3339 timestamps are converted to loc before the calendar date is taken.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		if loc != nil {
			ts = ts.In(loc)
		}
		return Date(ts), nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return Date(ts), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
