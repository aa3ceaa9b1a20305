package schedule

import (
	"testing"
	"time"
)

// A Thursday.
var anchor = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParseWeeklySlots_MixedFormats(t *testing.T) {
	slots := ParseWeeklySlots("Monday 09:00, Wed 2:00 PM")
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Weekday != time.Monday || slots[0].Time != "09:00:00" {
		t.Errorf("first slot wrong: %+v", slots[0])
	}
	if slots[1].Weekday != time.Wednesday || slots[1].Time != "14:00:00" {
		t.Errorf("second slot wrong: %+v", slots[1])
	}
}

func TestParseWeeklySlots_SingleDigitHour(t *testing.T) {
	slots := ParseWeeklySlots("Monday 9:00")
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Weekday != time.Monday || slots[0].Time != "09:00:00" {
		t.Errorf("slot wrong: %+v", slots[0])
	}
}

func TestParseWeeklySlots_CaseAndAbbreviations(t *testing.T) {
	slots := ParseWeeklySlots("THURS 07:30, fri 6:15 am")
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Weekday != time.Thursday || slots[0].Time != "07:30:00" {
		t.Errorf("thursday slot wrong: %+v", slots[0])
	}
	if slots[1].Weekday != time.Friday || slots[1].Time != "06:15:00" {
		t.Errorf("friday slot wrong: %+v", slots[1])
	}
}

func TestParseWeeklySlots_SkipsBadTokens(t *testing.T) {
	slots := ParseWeeklySlots("Blursday 09:00, Monday 27:00, Tuesday 10:00")
	if len(slots) != 1 {
		t.Fatalf("expected only the valid token, got %d slots", len(slots))
	}
	if slots[0].Weekday != time.Tuesday {
		t.Errorf("expected Tuesday, got %v", slots[0].Weekday)
	}
}

func TestParseWeeklySlots_Placeholder(t *testing.T) {
	for _, s := range []string{"", "TBD", "tbd", "-", "   "} {
		if got := ParseWeeklySlots(s); got != nil {
			t.Errorf("ParseWeeklySlots(%q) = %v, want nil", s, got)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	mon := Slot{Weekday: time.Monday, Time: "09:00:00"}
	next := mon.NextOccurrence(anchor)
	if next.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %v", next.Weekday())
	}
	// Thursday 2026-01-01 -> Monday 2026-01-05.
	if !next.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2026-01-05, got %v", next)
	}

	// A slot on the same weekday books today, not next week.
	thu := Slot{Weekday: time.Thursday, Time: "10:00:00"}
	if got := thu.NextOccurrence(anchor); !got.Equal(anchor) {
		t.Errorf("same-weekday occurrence should be today, got %v", got)
	}
}

func TestOccurrences_FourWeeks(t *testing.T) {
	slot := Slot{Weekday: time.Wednesday, Time: "14:00:00"}
	dates := slot.Occurrences(anchor, 4)
	if len(dates) != 4 {
		t.Fatalf("expected 4 dates, got %d", len(dates))
	}
	for i, d := range dates {
		if d.Weekday() != time.Wednesday {
			t.Errorf("date %d is %v, not Wednesday", i, d.Weekday())
		}
		if d.Before(anchor) {
			t.Errorf("date %d is before the anchor", i)
		}
		if i > 0 && !d.Equal(dates[i-1].AddDate(0, 0, 7)) {
			t.Errorf("date %d is not one week after the previous", i)
		}
	}
}
