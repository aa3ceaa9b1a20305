package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

// ResendEmailSender sends email through the Resend API.
type ResendEmailSender struct {
	client *resend.Client
	from   string
}

// NewResendEmailSender creates a sender with the given API key and default
// from address.
func NewResendEmailSender(apiKey, from string) *ResendEmailSender {
	return &ResendEmailSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// SendEmail sends a single email and returns the Resend message id.
func (s *ResendEmailSender) SendEmail(ctx context.Context, to, subject, htmlBody string) (Result, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Email send failed")
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}

	log.Info().Str("message_id", sent.Id).Str("to", to).Str("subject", subject).Msg("Email sent")
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}
