package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseCanonicalDate_RoundTrip(t *testing.T) {
	inputs := []string{"2026-01-05", "2025-12-31", "2024-02-29", "1999-07-01"}
	for _, s := range inputs {
		parsed, err := ParseCanonicalDate(s)
		if err != nil {
			t.Fatalf("ParseCanonicalDate(%q): %v", s, err)
		}
		out, err := FormatForStorage(parsed)
		if err != nil {
			t.Fatalf("FormatForStorage(%q): %v", s, err)
		}
		if out != s {
			t.Errorf("round trip %q -> %q", s, out)
		}
	}
}

func TestParseCanonicalDate_Fallbacks(t *testing.T) {
	got, err := ParseCanonicalDate("2026-03-10T14:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 10 {
		t.Errorf("wrong date: %v", got)
	}
}

func TestParseCanonicalDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "not a date", "2026-13-01", "2026-02-30"} {
		if _, err := ParseCanonicalDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseCanonicalDate(%q): expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestFormatForStorage_String(t *testing.T) {
	out, err := FormatForStorage("2026-08-28")
	if err != nil || out != "2026-08-28" {
		t.Errorf("got (%q, %v)", out, err)
	}
	if _, err := FormatForStorage("garbage"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestSameCalendarDay(t *testing.T) {
	if !SameCalendarDay("2026-05-01", "2026-05-01") {
		t.Error("identical dates should match")
	}
	if !SameCalendarDay("2026-05-01", time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)) {
		t.Error("time-of-day must be ignored")
	}
	if SameCalendarDay("2026-05-01", "2026-05-02") {
		t.Error("different days should not match")
	}
	// Unparseable input compares false, never errors.
	if SameCalendarDay("bogus", "2026-05-01") {
		t.Error("invalid input should compare false")
	}
	if SameCalendarDay(nil, nil) {
		t.Error("nil input should compare false")
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := map[string]string{
		"09:00":    "09:00:00",
		"9:00":     "09:00:00", // single-digit hour without AM/PM is 24-hour
		"09:00:30": "09:00:30",
		"23:59":    "23:59:00",
		"2:00 PM":  "14:00:00",
		"12:15 am": "00:15:00",
		"12:00 PM": "12:00:00",
	}
	for in, want := range cases {
		got, err := NormalizeTime(in)
		if err != nil {
			t.Errorf("NormalizeTime(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", in, got, want)
		}
	}
	for _, in := range []string{"", "25:00", "9:60", "noon", "13:00 PM"} {
		if _, err := NormalizeTime(in); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("NormalizeTime(%q): expected ErrInvalidTime, got %v", in, err)
		}
	}
}

func TestTo24Hour(t *testing.T) {
	cases := map[string]string{
		"5:00 AM":  "05:00",
		"5:00 PM":  "17:00",
		"12:30 AM": "00:30",
		"12:30 PM": "12:30",
		"17:00":    "17:00",
		"9:00":     "09:00",
	}
	for in, want := range cases {
		got, err := To24Hour(in)
		if err != nil {
			t.Errorf("To24Hour(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("To24Hour(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBeforeToday(t *testing.T) {
	if !BeforeToday("2000-01-01") {
		t.Error("date far in the past should be before today")
	}
	if BeforeToday(time.Now().AddDate(0, 0, 1).Format(StorageLayout)) {
		t.Error("tomorrow should not be before today")
	}
	if BeforeToday("junk") {
		t.Error("unparseable date should report false")
	}
}
