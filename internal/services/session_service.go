package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/repositories"
	"pt_studio_backend/pkg/dateutil"
	"pt_studio_backend/pkg/schedule"
)

// --- Custom Service Errors for the Session Scheduler ---
var (
	ErrSessionNotFound          = errors.New("session not found")
	ErrNoSessionsRemaining      = errors.New("client has no sessions remaining in their package")
	ErrSessionValidation        = errors.New("session data validation error")
	ErrClientForSessionNotFound = errors.New("client specified for session not found")
	ErrSessionStatusTransition  = errors.New("invalid session status transition")
)

// weeksPerRecurringBatch is how many weekly sessions one regular-slot token
// expands to, covering one month ahead.
const weeksPerRecurringBatch = 4

// --- Session DTOs ---
type ScheduleSessionRequest struct {
	ClientID        int64   `json:"client_id" binding:"required"`
	Date            string  `json:"date" binding:"required"`
	Time            string  `json:"time" binding:"required"`
	DurationMinutes int     `json:"duration_minutes"`
	PackageName     *string `json:"package_name"`
	Status          *string `json:"status"`
	Location        *string `json:"location"`
	PaymentType     *string `json:"payment_type"`
	PaymentStatus   *string `json:"payment_status"`
	Price           *float64 `json:"price"`
	Notes           *string `json:"notes"`
}

type UpdateSessionRequest struct {
	Date            *string  `json:"date"`
	Time            *string  `json:"time"`
	DurationMinutes *int     `json:"duration_minutes"`
	Status          *string  `json:"status"`
	Location        *string  `json:"location"`
	PaymentType     *string  `json:"payment_type"`
	PaymentStatus   *string  `json:"payment_status"`
	Price           *float64 `json:"price"`
	Notes           *string  `json:"notes"`
}

// RecurringResult reports how far recurring generation got.
type RecurringResult struct {
	Created []models.Session `json:"created"`
	Skipped int              `json:"skipped"` // sessions not created because the balance ran out
}

// --- SessionService Interface ---
type SessionService interface {
	// ScheduleSession validates date and time before any write, then charges
	// the client's stored balance and inserts the booking in one transaction.
	ScheduleSession(req ScheduleSessionRequest) (*models.Session, error)
	GetSessionByID(id int64) (*models.Session, error)
	GetSessions(filters models.SessionFilters) ([]models.Session, int, error)
	// UpdateSession never touches the client balance, including status
	// changes: cancelling a session does not refund it. The refund path is
	// DeleteSession only.
	UpdateSession(id int64, req UpdateSessionRequest) (*models.Session, error)
	// DeleteSession removes the booking and refunds one session, clamped to
	// total_sessions, in one transaction.
	DeleteSession(id int64) error
	CompleteSession(id int64) (*models.Session, error)
	CancelSession(id int64) (*models.Session, error)
	// MatchSlot resolves a calendar cell (date + 12-hour display label) to
	// the booking occupying it, or nil when the slot is free.
	MatchSlot(date, displayTime string) (*models.Session, error)
	// SessionOrdinal ranks a session among the owning client's bookings by
	// (date, time string); total is the client's total_sessions. Display
	// only, independent of sessions_left.
	SessionOrdinal(sessionID int64) (*models.SessionOrdinal, error)
	// GenerateRecurringSessions expands a client's regular_slot into four
	// weekly bookings per parsed token, stopping when the balance runs out.
	GenerateRecurringSessions(client *models.Client) (*RecurringResult, error)
	// ReconcileSessionCount reports the ledger numbers for the client's own
	// package, or a non-persisted preview when a different candidate package
	// name is supplied.
	ReconcileSessionCount(clientID int64, candidatePackage string) (*models.SessionCountView, error)
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	clientRepo  repositories.ClientRepository
	packageRepo repositories.PackageRepository
	db          *sql.DB
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(
	sr repositories.SessionRepository,
	cr repositories.ClientRepository,
	pr repositories.PackageRepository,
	db *sql.DB,
) SessionService {
	return &sessionService{sessionRepo: sr, clientRepo: cr, packageRepo: pr, db: db}
}

func (s *sessionService) ScheduleSession(req ScheduleSessionRequest) (*models.Session, error) {
	date, err := dateutil.FormatForStorage(req.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	timeOfDay, err := dateutil.NormalizeTime(req.Time)
	if err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}

	status := string(models.SessionStatusConfirmed)
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		if !models.IsValidSessionStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", ErrSessionValidation, *req.Status)
		}
		status = *req.Status
	}

	client, err := s.clientRepo.GetClientByID(req.ClientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrClientForSessionNotFound, req.ClientID)
		}
		return nil, fmt.Errorf("failed to validate client for session: %w", err)
	}

	packageName := client.PackageName
	if req.PackageName != nil && strings.TrimSpace(*req.PackageName) != "" {
		packageName = req.PackageName
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.durationForClient(client)
	}

	session := &models.Session{
		ClientID:        req.ClientID,
		ClientName:      client.FullName,
		Date:            date,
		Time:            timeOfDay,
		DurationMinutes: duration,
		PackageName:     packageName,
		Status:          status,
		Location:        req.Location,
		PaymentType:     req.PaymentType,
		PaymentStatus:   req.PaymentStatus,
		Price:           req.Price,
		Notes:           req.Notes,
	}
	if err := s.createCharged(session); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetSessionByID(session.ID)
}

// createCharged inserts a booking and decrements the client's balance as one
// transaction. The decrement runs first against the stored balance, so a
// stale in-memory counter can never produce an uncharged booking.
func (s *sessionService) createCharged(session *models.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin session transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.clientRepo.DecrementSessionsLeft(tx, session.ClientID); err != nil {
		if errors.Is(err, repositories.ErrBalanceExhausted) {
			return ErrNoSessionsRemaining
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrClientForSessionNotFound, session.ClientID)
		}
		return fmt.Errorf("failed to charge client balance: %w", err)
	}
	if _, err := s.sessionRepo.CreateSession(tx, session); err != nil {
		return fmt.Errorf("failed to create session in repository: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session transaction: %w", err)
	}
	return nil
}

func (s *sessionService) GetSessionByID(id int64) (*models.Session, error) {
	session, err := s.sessionRepo.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by ID: %w", err)
	}
	return session, nil
}

func (s *sessionService) GetSessions(filters models.SessionFilters) ([]models.Session, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	if filters.Status != nil && !models.IsValidSessionStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: invalid status %q", ErrSessionValidation, *filters.Status)
	}
	sessions, totalCount, err := s.sessionRepo.GetSessions(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get sessions: %w", err)
	}
	return sessions, totalCount, nil
}

func (s *sessionService) UpdateSession(id int64, req UpdateSessionRequest) (*models.Session, error) {
	session, err := s.sessionRepo.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session for update: %w", err)
	}

	if req.Date != nil {
		date, err := dateutil.FormatForStorage(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		session.Date = date
	}
	if req.Time != nil {
		timeOfDay, err := dateutil.NormalizeTime(*req.Time)
		if err != nil {
			return nil, fmt.Errorf("time: %w", err)
		}
		session.Time = timeOfDay
	}
	if req.DurationMinutes != nil {
		session.DurationMinutes = *req.DurationMinutes
	}
	if req.Status != nil {
		if !models.IsValidSessionStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", ErrSessionValidation, *req.Status)
		}
		if !models.CanTransitionSessionStatus(models.SessionStatus(session.Status), models.SessionStatus(*req.Status)) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrSessionStatusTransition, session.Status, *req.Status)
		}
		session.Status = *req.Status
	}
	if req.Location != nil {
		session.Location = req.Location
	}
	if req.PaymentType != nil {
		session.PaymentType = req.PaymentType
	}
	if req.PaymentStatus != nil {
		if !models.IsValidPaymentStatus(*req.PaymentStatus) {
			return nil, fmt.Errorf("%w: invalid payment status %q", ErrSessionValidation, *req.PaymentStatus)
		}
		session.PaymentStatus = req.PaymentStatus
	}
	if req.Price != nil {
		session.Price = req.Price
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	if err := s.sessionRepo.UpdateSession(s.db, session); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session in repository: %w", err)
	}
	return s.sessionRepo.GetSessionByID(id)
}

func (s *sessionService) DeleteSession(id int64) error {
	session, err := s.sessionRepo.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to find session for deletion: %w", err)
	}

	// Delete and refund commit together; the balance can never exceed
	// total_sessions because the increment clamps in SQL.
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin session delete transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.sessionRepo.DeleteSession(tx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.clientRepo.IncrementSessionsLeft(tx, session.ClientID); err != nil {
		return fmt.Errorf("failed to refund client balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session delete transaction: %w", err)
	}
	return nil
}

func (s *sessionService) setStatus(id int64, newStatus models.SessionStatus) (*models.Session, error) {
	session, err := s.sessionRepo.GetSessionByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session for status update: %w", err)
	}
	if !models.CanTransitionSessionStatus(models.SessionStatus(session.Status), newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrSessionStatusTransition, session.Status, newStatus)
	}
	session.Status = string(newStatus)
	if err := s.sessionRepo.UpdateSession(s.db, session); err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}
	return s.sessionRepo.GetSessionByID(id)
}

func (s *sessionService) CompleteSession(id int64) (*models.Session, error) {
	return s.setStatus(id, models.SessionStatusCompleted)
}

func (s *sessionService) CancelSession(id int64) (*models.Session, error) {
	return s.setStatus(id, models.SessionStatusCancelled)
}

func (s *sessionService) MatchSlot(date, displayTime string) (*models.Session, error) {
	canonicalDate, err := dateutil.FormatForStorage(date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	timePrefix, err := dateutil.To24Hour(displayTime)
	if err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}

	session, err := s.sessionRepo.FindBySlot(canonicalDate, timePrefix)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil // free slot, not an error
		}
		return nil, fmt.Errorf("failed to match slot: %w", err)
	}
	return session, nil
}

func (s *sessionService) SessionOrdinal(sessionID int64) (*models.SessionOrdinal, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session for ordinal: %w", err)
	}
	client, err := s.clientRepo.GetClientByID(session.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client for ordinal: %w", err)
	}
	siblings, err := s.sessionRepo.GetSessionsByClient(session.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client sessions for ordinal: %w", err)
	}

	current := 0
	for i, sibling := range siblings {
		if sibling.ID == sessionID {
			current = i + 1
			break
		}
	}
	if current == 0 {
		return nil, ErrSessionNotFound
	}
	return &models.SessionOrdinal{Current: current, Total: client.TotalSessions}, nil
}

// durationForClient resolves the session length for a client: the catalog
// entry when the client references one, otherwise a case-insensitive "60min"
// check on the package name, defaulting to 30.
func (s *sessionService) durationForClient(client *models.Client) int {
	if client.PackageID != nil {
		if pkg, err := s.packageRepo.GetPackageByID(*client.PackageID); err == nil {
			return pkg.DurationMinutes
		}
	}
	if client.PackageName != nil && strings.Contains(strings.ToLower(*client.PackageName), "60min") {
		return 60
	}
	return 30
}

func (s *sessionService) GenerateRecurringSessions(client *models.Client) (*RecurringResult, error) {
	result := &RecurringResult{Created: []models.Session{}}
	if client.RegularSlot == nil {
		return result, nil
	}
	slots := schedule.ParseWeeklySlots(*client.RegularSlot)
	if len(slots) == 0 {
		return result, nil
	}

	duration := s.durationForClient(client)
	planned := len(slots) * weeksPerRecurringBatch
	now := time.Now()
generation:
	for _, slot := range slots {
		for _, occurrence := range slot.Occurrences(now, weeksPerRecurringBatch) {
			session := &models.Session{
				ClientID:        client.ID,
				ClientName:      client.FullName,
				Date:            occurrence.Format(dateutil.StorageLayout),
				Time:            slot.Time,
				DurationMinutes: duration,
				PackageName:     client.PackageName,
				Status:          string(models.SessionStatusConfirmed),
				Location:        client.Location,
			}
			if err := s.createCharged(session); err != nil {
				if errors.Is(err, ErrNoSessionsRemaining) {
					// Balance exhausted: every remaining occurrence would
					// fail the same way, so stop instead of retrying.
					result.Skipped = planned - len(result.Created)
					break generation
				}
				return result, fmt.Errorf("%w: recurring generation stopped: %v", ErrPartialUpdate, err)
			}
			result.Created = append(result.Created, *session)
		}
	}
	if result.Skipped > 0 {
		return result, fmt.Errorf("%w: %d recurring sessions skipped, balance exhausted", ErrPartialUpdate, result.Skipped)
	}
	return result, nil
}

// completedSessionCount applies the display rule: a session counts as
// completed when its status says so or its date is already in the past.
func completedSessionCount(sessions []models.Session) int {
	count := 0
	for _, session := range sessions {
		if session.Status == string(models.SessionStatusCompleted) || dateutil.BeforeToday(session.Date) {
			count++
		}
	}
	return count
}

func (s *sessionService) ReconcileSessionCount(clientID int64, candidatePackage string) (*models.SessionCountView, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrClientForSessionNotFound, clientID)
		}
		return nil, fmt.Errorf("failed to get client for reconciliation: %w", err)
	}
	sessions, err := s.sessionRepo.GetSessionsByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for reconciliation: %w", err)
	}
	completed := completedSessionCount(sessions)

	candidate := strings.TrimSpace(candidatePackage)
	currentName := ""
	if client.PackageName != nil {
		currentName = *client.PackageName
	}
	if candidate == "" || candidate == currentName {
		// The ledger is the source of truth for the client's own package.
		return &models.SessionCountView{
			TotalSessions:  client.TotalSessions,
			SessionsLeft:   client.SessionsLeft,
			CompletedCount: completed,
			Preview:        false,
		}, nil
	}

	previewTotal := s.sessionsImpliedByPackageName(candidate)
	previewLeft := previewTotal - completed
	if previewLeft < 0 {
		previewLeft = 0
	}
	return &models.SessionCountView{
		TotalSessions:  previewTotal,
		SessionsLeft:   previewLeft,
		CompletedCount: completed,
		Preview:        true,
	}, nil
}

// sessionsImpliedByPackageName prefers an exact catalog match; the regex
// fallbacks only apply when no entry carries that exact name.
func (s *sessionService) sessionsImpliedByPackageName(name string) int {
	if pkg, err := s.packageRepo.GetPackageByName(name); err == nil {
		return pkg.Sessions
	}
	return FallbackSessionCount(name)
}
