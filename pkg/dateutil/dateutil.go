package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Errors returned by date/time normalization. Callers are expected to match
// with errors.Is and translate to a validation failure before any write.
var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

// StorageLayout is the canonical calendar-date form used in every table.
const StorageLayout = "2006-01-02"

// Fallback layouts tried when the input is not a plain YYYY-MM-DD string.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// ParseCanonicalDate parses a date string as a calendar date, without any
// timezone shift for the canonical YYYY-MM-DD form.
func ParseCanonicalDate(input string) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidDate)
	}
	if t, err := time.Parse(StorageLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
}

// FormatForStorage normalizes a time.Time or a date string to YYYY-MM-DD.
func FormatForStorage(input interface{}) (string, error) {
	switch v := input.(type) {
	case time.Time:
		if v.IsZero() {
			return "", fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return v.Format(StorageLayout), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return "", fmt.Errorf("%w: nil time", ErrInvalidDate)
		}
		return v.Format(StorageLayout), nil
	case string:
		t, err := ParseCanonicalDate(v)
		if err != nil {
			return "", err
		}
		return t.Format(StorageLayout), nil
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, input)
	}
}

// SameCalendarDay compares two dates (string or time.Time) ignoring
// time-of-day. It never returns an error: anything unparseable compares
// false so calendar rendering stays resilient.
func SameCalendarDay(a, b interface{}) bool {
	da, err := FormatForStorage(a)
	if err != nil {
		return false
	}
	db, err := FormatForStorage(b)
	if err != nil {
		return false
	}
	return da == db
}

var (
	time24Regex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])(:([0-5][0-9]))?$`)
	time12Regex = regexp.MustCompile(`(?i)^(1[0-2]|0?[1-9]):([0-5][0-9])\s*(AM|PM)$`)
)

// NormalizeTime validates a 24-hour HH:MM[:SS] or 12-hour H:MM AM/PM string
// and returns the canonical HH:MM:SS storage form.
func NormalizeTime(input string) (string, error) {
	s := strings.TrimSpace(input)
	if m := time24Regex.FindStringSubmatch(s); m != nil {
		sec := m[4]
		if sec == "" {
			sec = "00"
		}
		hour, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s:%s", hour, m[2], sec), nil
	}
	if hm, err := To24Hour(s); err == nil {
		return hm + ":00", nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTime, input)
}

// To24Hour converts a 12-hour display label such as "5:00 PM" to "17:00".
// A label already in 24-hour HH:MM form passes through unchanged.
func To24Hour(display string) (string, error) {
	s := strings.TrimSpace(display)
	if m := time24Regex.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", hour, m[2]), nil
	}
	m := time12Regex.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, display)
	}
	hour, _ := strconv.Atoi(m[1])
	meridiem := strings.ToUpper(m[3])
	if meridiem == "AM" {
		if hour == 12 {
			hour = 0
		}
	} else if hour != 12 {
		hour += 12
	}
	return fmt.Sprintf("%02d:%s", hour, m[2]), nil
}

// Today returns the current calendar date truncated to midnight local time.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// BeforeToday reports whether the given canonical date string falls strictly
// before the current calendar day. Unparseable dates report false.
func BeforeToday(dateStr string) bool {
	t, err := ParseCanonicalDate(dateStr)
	if err != nil {
		return false
	}
	today := Today()
	return t.Before(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, t.Location()))
}
