package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pt_studio_backend/internal/models"
)

// SessionRepository defines the interface for calendar booking operations.
type SessionRepository interface {
	CreateSession(executor SQLExecutor, session *models.Session) (int64, error)
	GetSessionByID(id int64) (*models.Session, error)
	GetSessions(filters models.SessionFilters) ([]models.Session, int, error)
	// GetSessionsByClient returns every session of a client ordered by
	// (date, time string), the order the "session N of M" ranking uses.
	GetSessionsByClient(clientID int64) ([]models.Session, error)
	// FindBySlot returns the first session on the given canonical date whose
	// stored time starts with the given HH:MM prefix, or ErrNotFound.
	FindBySlot(date, timePrefix string) (*models.Session, error)
	UpdateSession(executor SQLExecutor, session *models.Session) error
	DeleteSession(executor SQLExecutor, id int64) error
	CountSessionsForClient(clientID int64) (int, error)
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// session_date is a DATE column; to_char keeps the scanned string in the
// canonical YYYY-MM-DD form instead of the driver's time.Time rendering.
const sessionColumns = `id, client_id, client_name, to_char(session_date, 'YYYY-MM-DD') AS session_date, session_time, duration_minutes,
	package_name, status, location, payment_type, payment_status, price, notes,
	created_at, updated_at`

func scanSession(row scanner, extraDest ...interface{}) (*models.Session, error) {
	s := &models.Session{}
	dest := []interface{}{
		&s.ID, &s.ClientID, &s.ClientName, &s.Date, &s.Time, &s.DurationMinutes,
		&s.PackageName, &s.Status, &s.Location, &s.PaymentType, &s.PaymentStatus,
		&s.Price, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	}
	dest = append(dest, extraDest...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning session: %v", ErrDatabaseError, err)
	}
	return s, nil
}

// CreateSession inserts a new booking.
func (r *sessionRepository) CreateSession(executor SQLExecutor, session *models.Session) (int64, error) {
	query := `INSERT INTO sessions (client_id, client_name, session_date, session_time, duration_minutes,
	            package_name, status, location, payment_type, payment_status, price, notes,
	            created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	err := executor.QueryRow(query,
		session.ClientID, session.ClientName, session.Date, session.Time,
		session.DurationMinutes, session.PackageName, session.Status, session.Location,
		session.PaymentType, session.PaymentStatus, session.Price, session.Notes,
		session.CreatedAt, session.UpdatedAt,
	).Scan(&session.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating session: %v", ErrDatabaseError, err)
	}
	return session.ID, nil
}

// GetSessionByID retrieves a booking by id.
func (r *sessionRepository) GetSessionByID(id int64) (*models.Session, error) {
	return scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
}

// GetSessions retrieves bookings with filters and pagination.
func (r *sessionRepository) GetSessions(filters models.SessionFilters) ([]models.Session, int, error) {
	sessions := []models.Session{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + sessionColumns + `, COUNT(*) OVER() AS total_count FROM sessions`)

	var conditions []string
	var args []interface{}
	argCount := 1
	addCondition := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argCount))
		args = append(args, value)
		argCount++
	}

	if filters.ClientID != nil {
		addCondition("client_id = $%d", *filters.ClientID)
	}
	if filters.DateFrom != nil {
		addCondition("session_date >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		addCondition("session_date <= $%d", *filters.DateTo)
	}
	if filters.Status != nil {
		addCondition("status = $%d", *filters.Status)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY session_date ASC, session_time ASC")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying sessions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		session, err := scanSession(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *session)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating session rows: %v", ErrDatabaseError, err)
	}
	return sessions, totalCount, nil
}

// GetSessionsByClient returns all sessions of a client in (date, time) order.
func (r *sessionRepository) GetSessionsByClient(clientID int64) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
	          WHERE client_id = $1
	          ORDER BY session_date ASC, session_time ASC, id ASC`
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sessions for client ID %d: %v", ErrDatabaseError, clientID, err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client session rows: %v", ErrDatabaseError, err)
	}
	return sessions, nil
}

// FindBySlot matches one calendar slot to a booking. First match wins when
// duplicates exist.
func (r *sessionRepository) FindBySlot(date, timePrefix string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
	          WHERE session_date = $1 AND session_time LIKE $2 || '%'
	          ORDER BY id ASC
	          LIMIT 1`
	return scanSession(r.db.QueryRow(query, date, timePrefix))
}

// UpdateSession updates an existing booking.
func (r *sessionRepository) UpdateSession(executor SQLExecutor, session *models.Session) error {
	query := `UPDATE sessions SET
	            session_date = $1, session_time = $2, duration_minutes = $3, package_name = $4,
	            status = $5, location = $6, payment_type = $7, payment_status = $8,
	            price = $9, notes = $10, updated_at = $11
	          WHERE id = $12`
	session.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		session.Date, session.Time, session.DurationMinutes, session.PackageName,
		session.Status, session.Location, session.PaymentType, session.PaymentStatus,
		session.Price, session.Notes, session.UpdatedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating session ID %d: %v", ErrDatabaseError, session.ID, err)
	}
	return requireRowsAffected(result, session.ID, "updating session")
}

// DeleteSession removes a booking.
func (r *sessionRepository) DeleteSession(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting session ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "deleting session")
}

// CountSessionsForClient returns how many sessions a client has booked.
func (r *sessionRepository) CountSessionsForClient(clientID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE client_id = $1`, clientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting sessions for client ID %d: %v", ErrDatabaseError, clientID, err)
	}
	return count, nil
}
