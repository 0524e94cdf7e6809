package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/httperr"
)

const DayLayout = "2006-01-02"

// ParseClock turns "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, httperr.Invalid("invalid time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDay accepts a calendar date or an RFC 3339 timestamp and returns UTC midnight of that day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, httperr.Invalid("date is required")
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, httperr.Invalid("invalid date %q, expected YYYY-MM-DD", s)
	}
	return DayStart(t), nil
}

func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey is the UTC calendar projection used to match bookings to a day.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any minute.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// ParseRange validates a start/end pair and returns both in minutes.
func ParseRange(start, end string) (int, int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, 0, err
	}
	if s >= e {
		return 0, 0, httperr.Invalid("start time %s must be before end time %s", start, end)
	}
	return s, e, nil
}

// SplitSlot splits a "HH:MM - HH:MM" label into its two times.
func SplitSlot(slot string) (string, string, error) {
	parts := strings.Split(slot, " - ")
	if len(parts) != 2 {
		return "", "", httperr.Invalid("invalid slot %q, expected HH:MM - HH:MM", slot)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
