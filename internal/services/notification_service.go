package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/notify"
	"pt_studio_backend/internal/repositories"
	"pt_studio_backend/pkg/dateutil"
)

// --- Custom Service Errors for Notification Dispatch ---
var (
	ErrNoContactInfo       = errors.New("client has no contact details for the requested channel")
	ErrUnknownChannel      = errors.New("unknown notification channel")
	ErrNotificationFailure = errors.New("notification delivery failed")
)

// Notification channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// DispatchResult reports the outcome of one send.
type DispatchResult struct {
	Channel   string    `json:"channel"`
	To        string    `json:"to"`
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}

// --- NotificationService Interface ---
type NotificationService interface {
	// SendSessionReminder composes and delivers a reminder for an upcoming
	// session, including its "session N of M" label.
	SendSessionReminder(ctx context.Context, sessionID int64, channel string) (*DispatchResult, error)
	// SendBirthdayGreeting delivers a birthday message to a client.
	SendBirthdayGreeting(ctx context.Context, clientID int64, channel string) (*DispatchResult, error)
	// BirthdaysToday lists clients whose birthday month and day match today,
	// ignoring placeholder years.
	BirthdaysToday() ([]models.Client, error)
}

type notificationService struct {
	clientRepo  repositories.ClientRepository
	sessionRepo repositories.SessionRepository
	sessions    SessionService
	email       notify.EmailSender
	sms         notify.SMSSender
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(
	cr repositories.ClientRepository,
	sr repositories.SessionRepository,
	sessions SessionService,
	email notify.EmailSender,
	sms notify.SMSSender,
) NotificationService {
	return &notificationService{
		clientRepo:  cr,
		sessionRepo: sr,
		sessions:    sessions,
		email:       email,
		sms:         sms,
	}
}

// reminderMessage renders the session reminder copy for both channels.
func reminderMessage(client *models.Client, session *models.Session, ordinal *models.SessionOrdinal) (subject, html, plain string) {
	location := "the studio"
	if session.Location != nil && *session.Location != "" {
		location = *session.Location
	}
	label := ""
	if ordinal != nil {
		label = fmt.Sprintf(" (session %d of %d)", ordinal.Current, ordinal.Total)
	}
	displayTime := session.Time
	if len(displayTime) >= 5 {
		displayTime = displayTime[:5]
	}

	subject = fmt.Sprintf("Training reminder: %s at %s", session.Date, displayTime)
	plain = fmt.Sprintf("Hi %s, a reminder of your training session%s on %s at %s, %s. See you there!",
		client.FullName, label, session.Date, displayTime, location)
	html = fmt.Sprintf("<p>Hi %s,</p><p>A reminder of your training session%s on <strong>%s</strong> at <strong>%s</strong>, %s.</p><p>See you there!</p>",
		client.FullName, label, session.Date, displayTime, location)
	return subject, html, plain
}

// birthdayMessage renders the birthday greeting copy for both channels.
func birthdayMessage(client *models.Client) (subject, html, plain string) {
	subject = fmt.Sprintf("Happy birthday, %s!", client.FullName)
	plain = fmt.Sprintf("Happy birthday, %s! Wishing you a great year of training ahead.", client.FullName)
	html = fmt.Sprintf("<p>Happy birthday, %s!</p><p>Wishing you a great year of training ahead.</p>", client.FullName)
	return subject, html, plain
}

func (s *notificationService) dispatch(ctx context.Context, client *models.Client, channel, subject, html, plain string) (*DispatchResult, error) {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case ChannelEmail, "":
		if client.Email == nil || *client.Email == "" {
			return nil, fmt.Errorf("%w: no email address", ErrNoContactInfo)
		}
		result, err := s.email.SendEmail(ctx, *client.Email, subject, html)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotificationFailure, err)
		}
		return &DispatchResult{Channel: ChannelEmail, To: *client.Email, MessageID: result.MessageID, SentAt: result.SentAt}, nil
	case ChannelSMS:
		if client.PhoneNumber == nil || *client.PhoneNumber == "" {
			return nil, fmt.Errorf("%w: no phone number", ErrNoContactInfo)
		}
		result, err := s.sms.SendSMS(ctx, *client.PhoneNumber, plain)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotificationFailure, err)
		}
		return &DispatchResult{Channel: ChannelSMS, To: *client.PhoneNumber, MessageID: result.MessageID, SentAt: result.SentAt}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
}

func (s *notificationService) SendSessionReminder(ctx context.Context, sessionID int64, channel string) (*DispatchResult, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session for reminder: %w", err)
	}
	client, err := s.clientRepo.GetClientByID(session.ClientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client for reminder: %w", err)
	}

	// The ordinal is decoration; a failed ranking never blocks the reminder.
	ordinal, _ := s.sessions.SessionOrdinal(sessionID)

	subject, html, plain := reminderMessage(client, session, ordinal)
	return s.dispatch(ctx, client, channel, subject, html, plain)
}

func (s *notificationService) SendBirthdayGreeting(ctx context.Context, clientID int64, channel string) (*DispatchResult, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client for birthday greeting: %w", err)
	}
	subject, html, plain := birthdayMessage(client)
	return s.dispatch(ctx, client, channel, subject, html, plain)
}

func (s *notificationService) BirthdaysToday() ([]models.Client, error) {
	today := dateutil.Today()
	clients, err := s.clientRepo.GetClientsWithBirthdayOn(today.Month(), today.Day())
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays: %w", err)
	}
	return clients, nil
}
