// Package schedule parses the free-text weekly slot descriptions attached to
// clients ("Monday 09:00, Wed 2:00 PM") and expands them into concrete
// calendar dates for recurring bookings.
package schedule

import (
	"strings"
	"time"

	"pt_studio_backend/pkg/dateutil"
)

// Slot is one parsed "<DayName> <time>" token of a regular_slot string.
type Slot struct {
	Weekday time.Weekday
	// Time is the canonical HH:MM:SS form of the slot's time of day.
	Time string
}

// dayNames maps accepted day-name spellings (lowercased) to weekdays.
var dayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// IsPlaceholder reports whether a regular_slot value carries no real
// schedule ("", "TBD", "-").
func IsPlaceholder(regularSlot string) bool {
	s := strings.TrimSpace(regularSlot)
	return s == "" || strings.EqualFold(s, "tbd") || s == "-"
}

// ParseWeeklySlots parses a comma-separated list of "<DayName> <time>"
// tokens. Day names are case-insensitive and common abbreviations are
// accepted; times may be 24-hour or 12-hour with AM/PM. Tokens that do not
// parse are skipped, not failed, so one bad entry never blocks the rest.
func ParseWeeklySlots(regularSlot string) []Slot {
	if IsPlaceholder(regularSlot) {
		return nil
	}
	var slots []Slot
	for _, token := range strings.Split(regularSlot, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		fields := strings.Fields(token)
		if len(fields) < 2 {
			continue
		}
		weekday, ok := dayNames[strings.ToLower(fields[0])]
		if !ok {
			continue
		}
		timePart := strings.Join(fields[1:], " ")
		normalized, err := dateutil.NormalizeTime(timePart)
		if err != nil {
			continue
		}
		slots = append(slots, Slot{Weekday: weekday, Time: normalized})
	}
	return slots
}

// NextOccurrence returns the next calendar date on or after from that falls
// on the slot's weekday. When from itself is that weekday, from's date is
// returned, so a slot matching today still books today.
func (s Slot) NextOccurrence(from time.Time) time.Time {
	date := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	days := (int(s.Weekday) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, days)
}

// Occurrences returns n consecutive weekly dates starting with the next
// occurrence of the slot's weekday.
func (s Slot) Occurrences(from time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, n)
	next := s.NextOccurrence(from)
	for i := 0; i < n; i++ {
		dates = append(dates, next.AddDate(0, 0, 7*i))
	}
	return dates
}
