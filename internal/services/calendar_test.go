package services

import (
	"strings"
	"testing"

	"pt_studio_backend/internal/models"
)

func TestExportICSRendersEvents(t *testing.T) {
	sessions := []models.Session{
		{ID: 1, ClientName: "Dana Ray", Date: "2026-03-02", Time: "17:00:00", DurationMinutes: 60, Status: "confirmed", Location: strPtr("Main gym")},
		{ID: 2, ClientName: "Bo Lee", Date: "2026-03-03", Time: "08:30:00", DurationMinutes: 30, Status: "cancelled"},
	}

	ics := ExportICS(sessions)

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Fatal("missing calendar envelope")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Fatalf("event count = %d, want 2", got)
	}
	if !strings.Contains(ics, "UID:session-1@pt-studio\r\n") {
		t.Fatal("missing stable UID")
	}
	if !strings.Contains(ics, "DTSTART:20260302T170000\r\n") || !strings.Contains(ics, "DTEND:20260302T180000\r\n") {
		t.Fatal("60-minute event has wrong start or end")
	}
	if !strings.Contains(ics, "DTEND:20260303T090000\r\n") {
		t.Fatal("30-minute event has wrong end")
	}
	if !strings.Contains(ics, "LOCATION:Main gym\r\n") {
		t.Fatal("missing location line")
	}
	if !strings.Contains(ics, "STATUS:CANCELLED\r\n") {
		t.Fatal("cancelled session not flagged")
	}
}

func TestExportICSSkipsUnparseableAndEscapes(t *testing.T) {
	sessions := []models.Session{
		{ID: 1, ClientName: "Smith, Jo", Date: "2026-03-02", Time: "17:00:00", DurationMinutes: 30, Status: "confirmed"},
		{ID: 2, ClientName: "Broken", Date: "bad-date", Time: "17:00:00", DurationMinutes: 30, Status: "confirmed"},
	}

	ics := ExportICS(sessions)

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 1 {
		t.Fatalf("event count = %d, want 1 (unparseable row skipped)", got)
	}
	if !strings.Contains(ics, `SUMMARY:Training: Smith\, Jo`) {
		t.Fatalf("comma not escaped in summary: %q", ics)
	}
}
