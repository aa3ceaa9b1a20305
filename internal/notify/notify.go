// Package notify holds the outbound delivery capabilities: email and SMS.
// Senders report success or failure only; there is no delivery-status
// callback handling.
package notify

import (
	"context"
	"time"
)

// Result describes an accepted outbound message.
type Result struct {
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// EmailSender sends a single HTML email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) (Result, error)
}

// SMSSender sends a single plain-text SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (Result, error)
}
