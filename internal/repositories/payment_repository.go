package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pt_studio_backend/internal/models"

	"github.com/lib/pq"
)

// PaymentRepository defines the interface for payment records.
type PaymentRepository interface {
	CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error)
	GetPaymentByID(id int64) (*models.Payment, error)
	GetPaymentsByClient(clientID int64) ([]models.Payment, error)
	DeletePayment(executor SQLExecutor, id int64) error
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, client_id, purchase_id, amount, method, status, to_char(paid_at, 'YYYY-MM-DD') AS paid_at, notes, created_at, updated_at`

func scanPayment(row scanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.ClientID, &p.PurchaseID, &p.Amount, &p.Method,
		&p.Status, &p.PaidAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
	}
	return p, nil
}

// CreatePayment inserts a new payment record.
func (r *paymentRepository) CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (client_id, purchase_id, amount, method, status, paid_at, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	err := executor.QueryRow(query,
		payment.ClientID, payment.PurchaseID, payment.Amount, payment.Method,
		payment.Status, payment.PaidAt, payment.Notes, payment.CreatedAt, payment.UpdatedAt,
	).Scan(&payment.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: payment references missing client or purchase: %v", ErrDatabaseError, err)
		}
		return 0, fmt.Errorf("%w: creating payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

// GetPaymentByID retrieves a payment by id.
func (r *paymentRepository) GetPaymentByID(id int64) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

// GetPaymentsByClient returns a client's payments, newest first.
func (r *paymentRepository) GetPaymentsByClient(clientID int64) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE client_id = $1 ORDER BY paid_at DESC, id DESC`
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payments for client ID %d: %v", ErrDatabaseError, clientID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment rows: %v", ErrDatabaseError, err)
	}
	return payments, nil
}

// DeletePayment removes a payment record.
func (r *paymentRepository) DeletePayment(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting payment ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "deleting payment")
}
