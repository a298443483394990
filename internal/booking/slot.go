package booking

import (
	"fmt"
	"strings"
	"time"
)

// Canonical key formats. Dates are stored as calendar days, times as
// 24-hour minutes; two serializations of the same slot must normalize
// to identical keys.
const (
	DateKeyLayout = "2006-01-02"
	TimeKeyLayout = "15:04"
)

// Accepted inbound date serializations, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	DateKeyLayout,
}

// NormalizeDate parses a raw date value and reduces it to a canonical
// calendar-day key.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Invalid("Date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateKeyLayout), nil
		}
	}
	return "", Invalid(fmt.Sprintf("Invalid date: %q", raw))
}

// NormalizeTime parses a raw time-of-day string and reduces it to a
// canonical zero-padded HH:mm key.
func NormalizeTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Invalid("Time is required")
	}
	t, err := time.Parse(TimeKeyLayout, raw)
	if err != nil {
		return "", Invalid(fmt.Sprintf("Invalid time: %q", raw))
	}
	return t.Format(TimeKeyLayout), nil
}

// NormalizeSlot derives the canonical (dateKey, timeKey) pair for a
// requested slot.
func NormalizeSlot(rawDate, rawTime string) (dateKey string, timeKey string, err error) {
	dateKey, err = NormalizeDate(rawDate)
	if err != nil {
		return "", "", err
	}
	timeKey, err = NormalizeTime(rawTime)
	if err != nil {
		return "", "", err
	}
	return dateKey, timeKey, nil
}

// SlotKey builds the uniqueness key claimed by an active appointment
// for a (doctor, date, time) triple.
func SlotKey(doctorID, dateKey, timeKey string) string {
	return doctorID + "@" + dateKey + "@" + timeKey
}

// DisplayDate renders a canonical date key the way notification and
// email copy expects it (DD-MM-YYYY).
func DisplayDate(dateKey string) string {
	if t, err := time.Parse(DateKeyLayout, dateKey); err == nil {
		return t.Format("02-01-2006")
	}
	return dateKey
}
