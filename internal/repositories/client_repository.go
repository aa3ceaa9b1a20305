package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pt_studio_backend/internal/models"

	"github.com/lib/pq"
)

// ClientRepository defines the interface for client-related database
// operations, including the atomic session-balance adjustments every other
// ledger goes through.
type ClientRepository interface {
	CreateClient(executor SQLExecutor, client *models.Client) (int64, error)
	GetClientByID(id int64) (*models.Client, error)
	GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	GetClientsWithBirthdayOn(month time.Month, day int) ([]models.Client, error)
	UpdateClient(executor SQLExecutor, client *models.Client) error
	DeleteClient(executor SQLExecutor, id int64) error

	// DecrementSessionsLeft atomically charges one session. It only succeeds
	// while sessions_left > 0 and returns ErrBalanceExhausted otherwise, so
	// the check always runs against the stored balance, never a stale copy.
	DecrementSessionsLeft(executor SQLExecutor, clientID int64) error
	// IncrementSessionsLeft atomically refunds one session, clamped so the
	// balance never exceeds total_sessions.
	IncrementSessionsLeft(executor SQLExecutor, clientID int64) error
	// ApplySessionDelta adds a signed delta to total_sessions and
	// sessions_left, clamping sessions_left into [0, new total].
	ApplySessionDelta(executor SQLExecutor, clientID int64, delta int) error
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, full_name, email, phone_number, package_id, package_name, price,
	total_sessions, sessions_left, monthly_count, regular_slot, location,
	payment_type, to_char(join_date, 'YYYY-MM-DD') AS join_date,
	to_char(birthday, 'YYYY-MM-DD') AS birthday, notes, created_at, updated_at`

func scanClient(row scanner, extraDest ...interface{}) (*models.Client, error) {
	client := &models.Client{}
	dest := []interface{}{
		&client.ID, &client.FullName, &client.Email, &client.PhoneNumber,
		&client.PackageID, &client.PackageName, &client.Price,
		&client.TotalSessions, &client.SessionsLeft, &client.MonthlyCount,
		&client.RegularSlot, &client.Location, &client.PaymentType,
		&client.JoinDate, &client.Birthday, &client.Notes,
		&client.CreatedAt, &client.UpdatedAt,
	}
	dest = append(dest, extraDest...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
	}
	return client, nil
}

// CreateClient inserts a new client and returns its id.
func (r *clientRepository) CreateClient(executor SQLExecutor, client *models.Client) (int64, error) {
	query := `INSERT INTO clients (full_name, email, phone_number, package_id, package_name, price,
	            total_sessions, sessions_left, monthly_count, regular_slot, location,
	            payment_type, join_date, birthday, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	          RETURNING id`

	now := time.Now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	err := executor.QueryRow(query,
		client.FullName, client.Email, client.PhoneNumber, client.PackageID,
		client.PackageName, client.Price, client.TotalSessions, client.SessionsLeft,
		client.MonthlyCount, client.RegularSlot, client.Location, client.PaymentType,
		client.JoinDate, client.Birthday, client.Notes, client.CreatedAt, client.UpdatedAt,
	).Scan(&client.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating client: %v", ErrDatabaseError, err)
	}
	return client.ID, nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(id int64) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.db.QueryRow(query, id))
}

// GetClients retrieves a list of clients with pagination and optional search
// over name, phone and email.
func (r *clientRepository) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	clients := []models.Client{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + `, COUNT(*) OVER() AS total_count FROM clients`)

	var args []interface{}
	argCount := 1
	if searchTerm != nil && *searchTerm != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" WHERE full_name ILIKE $%d OR phone_number ILIKE $%d OR email ILIKE $%d",
			argCount, argCount, argCount))
		args = append(args, "%"+strings.TrimSpace(*searchTerm)+"%")
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY full_name ASC")
	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		client, err := scanClient(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *client)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, totalCount, nil
}

// GetClientsWithBirthdayOn returns clients whose birthday falls on the given
// month and day, regardless of the (possibly placeholder) year.
func (r *clientRepository) GetClientsWithBirthdayOn(month time.Month, day int) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients
	          WHERE birthday IS NOT NULL
	            AND EXTRACT(MONTH FROM birthday::date) = $1
	            AND EXTRACT(DAY FROM birthday::date) = $2
	          ORDER BY full_name ASC`
	rows, err := r.db.Query(query, int(month), day)
	if err != nil {
		return nil, fmt.Errorf("%w: querying birthdays: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating birthday rows: %v", ErrDatabaseError, err)
	}
	return clients, nil
}

// UpdateClient updates an existing client's scalar fields.
func (r *clientRepository) UpdateClient(executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET
	            full_name = $1, email = $2, phone_number = $3, package_id = $4,
	            package_name = $5, price = $6, total_sessions = $7, sessions_left = $8,
	            monthly_count = $9, regular_slot = $10, location = $11, payment_type = $12,
	            join_date = $13, birthday = $14, notes = $15, updated_at = $16
	          WHERE id = $17`

	client.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		client.FullName, client.Email, client.PhoneNumber, client.PackageID,
		client.PackageName, client.Price, client.TotalSessions, client.SessionsLeft,
		client.MonthlyCount, client.RegularSlot, client.Location, client.PaymentType,
		client.JoinDate, client.Birthday, client.Notes, client.UpdatedAt, client.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating client ID %d: %v", ErrDatabaseError, client.ID, err)
	}
	return requireRowsAffected(result, client.ID, "updating client")
}

// DeleteClient removes a client. Dependent sessions, purchases and payments
// are removed by the schema's ON DELETE CASCADE.
func (r *clientRepository) DeleteClient(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting client ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "deleting client")
}

// DecrementSessionsLeft charges one session from the stored balance. The
// sessions_left > 0 guard makes the check-and-decrement a single atomic
// statement.
func (r *clientRepository) DecrementSessionsLeft(executor SQLExecutor, clientID int64) error {
	result, err := executor.Exec(
		`UPDATE clients SET sessions_left = sessions_left - 1, updated_at = $2
		 WHERE id = $1 AND sessions_left > 0`, clientID, time.Now())
	if err != nil {
		return fmt.Errorf("%w: decrementing balance for client ID %d: %v", ErrDatabaseError, clientID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for client ID %d: %v", ErrDatabaseError, clientID, err)
	}
	if affected == 0 {
		// Either the client is missing or the balance is zero; distinguish.
		if _, getErr := r.GetClientByID(clientID); getErr != nil {
			return getErr
		}
		return ErrBalanceExhausted
	}
	return nil
}

// IncrementSessionsLeft refunds one session without exceeding total_sessions.
func (r *clientRepository) IncrementSessionsLeft(executor SQLExecutor, clientID int64) error {
	result, err := executor.Exec(
		`UPDATE clients SET sessions_left = LEAST(sessions_left + 1, total_sessions), updated_at = $2
		 WHERE id = $1`, clientID, time.Now())
	if err != nil {
		return fmt.Errorf("%w: incrementing balance for client ID %d: %v", ErrDatabaseError, clientID, err)
	}
	return requireRowsAffected(result, clientID, "incrementing balance for client")
}

// ApplySessionDelta shifts both counters by delta, keeping sessions_left
// inside [0, new total]. Used by the purchase ledger.
func (r *clientRepository) ApplySessionDelta(executor SQLExecutor, clientID int64, delta int) error {
	result, err := executor.Exec(
		`UPDATE clients SET
		   total_sessions = total_sessions + $2,
		   sessions_left = GREATEST(0, LEAST(sessions_left + $2, total_sessions + $2)),
		   updated_at = $3
		 WHERE id = $1`, clientID, delta, time.Now())
	if err != nil {
		return fmt.Errorf("%w: applying session delta %d for client ID %d: %v", ErrDatabaseError, delta, clientID, err)
	}
	return requireRowsAffected(result, clientID, "applying session delta for client")
}

func requireRowsAffected(result sql.Result, id int64, action string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected while %s ID %d: %v", ErrDatabaseError, action, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
