package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pt_studio_backend/internal/models"
)

// PurchaseRepository defines the interface for the package purchase ledger.
type PurchaseRepository interface {
	CreatePurchase(executor SQLExecutor, purchase *models.PackagePurchase) (int64, error)
	GetPurchaseByID(id int64) (*models.PackagePurchase, error)
	GetPurchases(filters models.PurchaseFilters) ([]models.PackagePurchase, int, error)
	UpdatePurchase(executor SQLExecutor, purchase *models.PackagePurchase) error
	DeletePurchase(executor SQLExecutor, id int64) error
}

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new instance of PurchaseRepository.
func NewPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

const purchaseColumns = `id, client_id, client_name, package_name, package_sessions, amount,
	to_char(purchase_date, 'YYYY-MM-DD') AS purchase_date, payment_type, payment_status, notes, created_at, updated_at`

func scanPurchase(row scanner, extraDest ...interface{}) (*models.PackagePurchase, error) {
	p := &models.PackagePurchase{}
	dest := []interface{}{
		&p.ID, &p.ClientID, &p.ClientName, &p.PackageName, &p.PackageSessions,
		&p.Amount, &p.PurchaseDate, &p.PaymentType, &p.PaymentStatus, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	}
	dest = append(dest, extraDest...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning purchase: %v", ErrDatabaseError, err)
	}
	return p, nil
}

// CreatePurchase inserts a new ledger entry.
func (r *purchaseRepository) CreatePurchase(executor SQLExecutor, purchase *models.PackagePurchase) (int64, error) {
	query := `INSERT INTO package_purchases (client_id, client_name, package_name, package_sessions,
	            amount, purchase_date, payment_type, payment_status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	now := time.Now()
	purchase.CreatedAt = now
	purchase.UpdatedAt = now
	err := executor.QueryRow(query,
		purchase.ClientID, purchase.ClientName, purchase.PackageName, purchase.PackageSessions,
		purchase.Amount, purchase.PurchaseDate, purchase.PaymentType, purchase.PaymentStatus,
		purchase.Notes, purchase.CreatedAt, purchase.UpdatedAt,
	).Scan(&purchase.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating purchase: %v", ErrDatabaseError, err)
	}
	return purchase.ID, nil
}

// GetPurchaseByID retrieves a ledger entry by id.
func (r *purchaseRepository) GetPurchaseByID(id int64) (*models.PackagePurchase, error) {
	return scanPurchase(r.db.QueryRow(`SELECT `+purchaseColumns+` FROM package_purchases WHERE id = $1`, id))
}

// GetPurchases retrieves ledger entries with filters and pagination, most
// recent purchase first.
func (r *purchaseRepository) GetPurchases(filters models.PurchaseFilters) ([]models.PackagePurchase, int, error) {
	purchases := []models.PackagePurchase{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + purchaseColumns + `, COUNT(*) OVER() AS total_count FROM package_purchases`)

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
	if filters.PaymentStatus != nil {
		addCondition("payment_status = $%d", *filters.PaymentStatus)
	}
	if filters.DateFrom != nil {
		addCondition("purchase_date >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		addCondition("purchase_date <= $%d", *filters.DateTo)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY purchase_date DESC, id DESC")
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
		return nil, 0, fmt.Errorf("%w: querying purchases: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		purchase, err := scanPurchase(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		purchases = append(purchases, *purchase)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating purchase rows: %v", ErrDatabaseError, err)
	}
	return purchases, totalCount, nil
}

// UpdatePurchase updates an existing ledger entry.
func (r *purchaseRepository) UpdatePurchase(executor SQLExecutor, purchase *models.PackagePurchase) error {
	query := `UPDATE package_purchases SET
	            package_name = $1, package_sessions = $2, amount = $3, purchase_date = $4,
	            payment_type = $5, payment_status = $6, notes = $7, updated_at = $8
	          WHERE id = $9`
	purchase.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		purchase.PackageName, purchase.PackageSessions, purchase.Amount, purchase.PurchaseDate,
		purchase.PaymentType, purchase.PaymentStatus, purchase.Notes, purchase.UpdatedAt, purchase.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating purchase ID %d: %v", ErrDatabaseError, purchase.ID, err)
	}
	return requireRowsAffected(result, purchase.ID, "updating purchase")
}

// DeletePurchase removes a ledger entry.
func (r *purchaseRepository) DeletePurchase(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM package_purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting purchase ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "deleting purchase")
}
