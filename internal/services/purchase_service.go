package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/repositories"
	"pt_studio_backend/pkg/dateutil"
)

// --- Custom Service Errors for the Purchase Ledger ---
var (
	ErrPurchaseNotFound       = errors.New("package purchase not found")
	ErrPurchaseValidation     = errors.New("purchase data validation error")
	ErrClientForPurchaseNotFound = errors.New("client specified for purchase not found")
)

// --- Purchase DTOs ---
type AddPurchaseRequest struct {
	ClientID        int64   `json:"client_id" binding:"required"`
	PackageName     string  `json:"package_name" binding:"required"`
	PackageSessions int     `json:"package_sessions" binding:"required,gt=0"`
	Amount          float64 `json:"amount"`
	PurchaseDate    string  `json:"purchase_date"` // YYYY-MM-DD, defaults to today
	PaymentType     *string `json:"payment_type"`
	PaymentStatus   *string `json:"payment_status"` // defaults to completed
	Notes           *string `json:"notes"`
}

type UpdatePurchaseRequest struct {
	PackageName     *string  `json:"package_name"`
	PackageSessions *int     `json:"package_sessions"`
	Amount          *float64 `json:"amount"`
	PurchaseDate    *string  `json:"purchase_date"`
	PaymentType     *string  `json:"payment_type"`
	PaymentStatus   *string  `json:"payment_status"`
	Notes           *string  `json:"notes"`
}

// --- PurchaseService Interface ---
type PurchaseService interface {
	// AddPurchase records a purchase and credits the client's balance in a
	// single transaction.
	AddPurchase(req AddPurchaseRequest) (*models.PackagePurchase, *models.Client, error)
	GetPurchaseByID(id int64) (*models.PackagePurchase, error)
	GetPurchases(filters models.PurchaseFilters) ([]models.PackagePurchase, int, error)
	// UpdatePurchase rewrites a ledger row and applies the session-count
	// difference to the client, never an absolute count.
	UpdatePurchase(id int64, req UpdatePurchaseRequest) (*models.PackagePurchase, error)
	// DeletePurchase removes a ledger row and debits its session count back
	// off the client's balance.
	DeletePurchase(id int64) error
}

type purchaseService struct {
	purchaseRepo repositories.PurchaseRepository
	clientRepo   repositories.ClientRepository
	db           *sql.DB
}

// NewPurchaseService creates a new instance of PurchaseService.
func NewPurchaseService(pr repositories.PurchaseRepository, cr repositories.ClientRepository, db *sql.DB) PurchaseService {
	return &purchaseService{purchaseRepo: pr, clientRepo: cr, db: db}
}

// SessionDelta is the signed balance adjustment an edit of package_sessions
// implies: new minus old.
func SessionDelta(oldSessions, newSessions int) int {
	return newSessions - oldSessions
}

func (s *purchaseService) AddPurchase(req AddPurchaseRequest) (*models.PackagePurchase, *models.Client, error) {
	if req.PackageSessions <= 0 {
		return nil, nil, fmt.Errorf("%w: package_sessions must be positive", ErrPurchaseValidation)
	}

	purchaseDate := strings.TrimSpace(req.PurchaseDate)
	if purchaseDate == "" {
		purchaseDate = dateutil.Today().Format(dateutil.StorageLayout)
	}
	purchaseDate, err := dateutil.FormatForStorage(purchaseDate)
	if err != nil {
		return nil, nil, fmt.Errorf("purchase_date: %w", err)
	}

	status := string(models.PaymentStatusCompleted)
	if req.PaymentStatus != nil && strings.TrimSpace(*req.PaymentStatus) != "" {
		if !models.IsValidPaymentStatus(*req.PaymentStatus) {
			return nil, nil, fmt.Errorf("%w: invalid payment status %q", ErrPurchaseValidation, *req.PaymentStatus)
		}
		status = *req.PaymentStatus
	}

	client, err := s.clientRepo.GetClientByID(req.ClientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: ID %d", ErrClientForPurchaseNotFound, req.ClientID)
		}
		return nil, nil, fmt.Errorf("failed to validate client for purchase: %w", err)
	}

	purchase := &models.PackagePurchase{
		ClientID:        req.ClientID,
		ClientName:      client.FullName,
		PackageName:     strings.TrimSpace(req.PackageName),
		PackageSessions: req.PackageSessions,
		Amount:          req.Amount,
		PurchaseDate:    purchaseDate,
		PaymentType:     req.PaymentType,
		PaymentStatus:   status,
		Notes:           req.Notes,
	}

	// Ledger insert and balance credit commit or fail together.
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.purchaseRepo.CreatePurchase(tx, purchase); err != nil {
		return nil, nil, fmt.Errorf("failed to create purchase in repository: %w", err)
	}
	if err := s.clientRepo.ApplySessionDelta(tx, req.ClientID, req.PackageSessions); err != nil {
		return nil, nil, fmt.Errorf("failed to credit client balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit purchase transaction: %w", err)
	}

	updatedClient, err := s.clientRepo.GetClientByID(req.ClientID)
	if err != nil {
		return purchase, nil, fmt.Errorf("%w: purchase recorded but client re-read failed: %v", ErrPartialUpdate, err)
	}
	return purchase, updatedClient, nil
}

func (s *purchaseService) GetPurchaseByID(id int64) (*models.PackagePurchase, error) {
	purchase, err := s.purchaseRepo.GetPurchaseByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to get purchase by ID: %w", err)
	}
	return purchase, nil
}

func (s *purchaseService) GetPurchases(filters models.PurchaseFilters) ([]models.PackagePurchase, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	purchases, totalCount, err := s.purchaseRepo.GetPurchases(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get purchases: %w", err)
	}
	return purchases, totalCount, nil
}

func (s *purchaseService) UpdatePurchase(id int64, req UpdatePurchaseRequest) (*models.PackagePurchase, error) {
	purchase, err := s.purchaseRepo.GetPurchaseByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to find purchase for update: %w", err)
	}

	originalSessions := purchase.PackageSessions
	if req.PackageName != nil {
		purchase.PackageName = strings.TrimSpace(*req.PackageName)
	}
	if req.PackageSessions != nil {
		if *req.PackageSessions <= 0 {
			return nil, fmt.Errorf("%w: package_sessions must be positive", ErrPurchaseValidation)
		}
		purchase.PackageSessions = *req.PackageSessions
	}
	if req.Amount != nil {
		purchase.Amount = *req.Amount
	}
	if req.PurchaseDate != nil {
		normalized, err := dateutil.FormatForStorage(*req.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("purchase_date: %w", err)
		}
		purchase.PurchaseDate = normalized
	}
	if req.PaymentType != nil {
		purchase.PaymentType = req.PaymentType
	}
	if req.PaymentStatus != nil {
		if !models.IsValidPaymentStatus(*req.PaymentStatus) {
			return nil, fmt.Errorf("%w: invalid payment status %q", ErrPurchaseValidation, *req.PaymentStatus)
		}
		purchase.PaymentStatus = *req.PaymentStatus
	}
	if req.Notes != nil {
		purchase.Notes = req.Notes
	}

	delta := SessionDelta(originalSessions, purchase.PackageSessions)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase update transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.purchaseRepo.UpdatePurchase(tx, purchase); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to update purchase in repository: %w", err)
	}
	if delta != 0 {
		if err := s.clientRepo.ApplySessionDelta(tx, purchase.ClientID, delta); err != nil {
			return nil, fmt.Errorf("failed to apply session delta to client: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase update transaction: %w", err)
	}
	return s.purchaseRepo.GetPurchaseByID(id)
}

func (s *purchaseService) DeletePurchase(id int64) error {
	purchase, err := s.purchaseRepo.GetPurchaseByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPurchaseNotFound
		}
		return fmt.Errorf("failed to find purchase for deletion: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin purchase delete transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.purchaseRepo.DeletePurchase(tx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPurchaseNotFound
		}
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	if err := s.clientRepo.ApplySessionDelta(tx, purchase.ClientID, -purchase.PackageSessions); err != nil {
		return fmt.Errorf("failed to debit client balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit purchase delete transaction: %w", err)
	}
	return nil
}
