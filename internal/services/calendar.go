package services

import (
	"fmt"
	"strings"
	"time"

	"pt_studio_backend/internal/models"
)

// ExportICS renders sessions as an iCalendar document. Pure formatting: no
// persistence access, cancelled sessions are listed with STATUS:CANCELLED so
// subscribed calendars pick up the change.
func ExportICS(sessions []models.Session) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//PT Studio//Schedule//EN\r\n")

	for _, session := range sessions {
		start, err := time.Parse("2006-01-02 15:04:05", session.Date+" "+session.Time)
		if err != nil {
			continue
		}
		end := start.Add(time.Duration(session.DurationMinutes) * time.Minute)

		b.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&b, "UID:session-%d@pt-studio\r\n", session.ID)
		fmt.Fprintf(&b, "DTSTART:%s\r\n", start.Format("20060102T150405"))
		fmt.Fprintf(&b, "DTEND:%s\r\n", end.Format("20060102T150405"))
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", icsEscape("Training: "+session.ClientName))
		if session.Location != nil && *session.Location != "" {
			fmt.Fprintf(&b, "LOCATION:%s\r\n", icsEscape(*session.Location))
		}
		if session.Status == string(models.SessionStatusCancelled) {
			b.WriteString("STATUS:CANCELLED\r\n")
		}
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func icsEscape(s string) string {
	replacer := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return replacer.Replace(s)
}
