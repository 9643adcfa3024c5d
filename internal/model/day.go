package model

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar days across the API.
const DayFormat = "2006-01-02"

// NormalizeDay truncates t to midnight UTC. Every day value stored or
// compared by the engine goes through this, so that two reads of the same
// calendar day always compare equal regardless of clock or zone.
func NormalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD day string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: expected YYYY-MM-DD", s)
	}
	return NormalizeDay(t), nil
}

// DayKey formats a day for API payloads and cache keys.
func DayKey(t time.Time) string {
	return NormalizeDay(t).Format(DayFormat)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return NormalizeDay(a).Equal(NormalizeDay(b))
}
