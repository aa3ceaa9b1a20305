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

// --- Custom Service Errors for Payments ---
var (
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrPaymentValidation        = errors.New("payment data validation error")
	ErrClientForPaymentNotFound = errors.New("client specified for payment not found")
)

// --- Payment DTOs ---
type RecordPaymentRequest struct {
	ClientID   int64   `json:"client_id" binding:"required"`
	PurchaseID *int64  `json:"purchase_id"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Method     *string `json:"method"`
	Status     *string `json:"status"`  // defaults to completed
	PaidAt     string  `json:"paid_at"` // YYYY-MM-DD, defaults to today
	Notes      *string `json:"notes"`
}

// --- PaymentService Interface ---
type PaymentService interface {
	RecordPayment(req RecordPaymentRequest) (*models.Payment, error)
	GetPaymentByID(id int64) (*models.Payment, error)
	GetPaymentsByClient(clientID int64) ([]models.Payment, error)
	DeletePayment(id int64) error
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	clientRepo  repositories.ClientRepository
	db          *sql.DB
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(pr repositories.PaymentRepository, cr repositories.ClientRepository, db *sql.DB) PaymentService {
	return &paymentService{paymentRepo: pr, clientRepo: cr, db: db}
}

func (s *paymentService) RecordPayment(req RecordPaymentRequest) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrPaymentValidation)
	}

	paidAt := strings.TrimSpace(req.PaidAt)
	if paidAt == "" {
		paidAt = dateutil.Today().Format(dateutil.StorageLayout)
	}
	paidAt, err := dateutil.FormatForStorage(paidAt)
	if err != nil {
		return nil, fmt.Errorf("paid_at: %w", err)
	}

	status := string(models.PaymentStatusCompleted)
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		if !models.IsValidPaymentStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid payment status %q", ErrPaymentValidation, *req.Status)
		}
		status = *req.Status
	}

	if _, err := s.clientRepo.GetClientByID(req.ClientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrClientForPaymentNotFound, req.ClientID)
		}
		return nil, fmt.Errorf("failed to validate client for payment: %w", err)
	}

	payment := &models.Payment{
		ClientID:   req.ClientID,
		PurchaseID: req.PurchaseID,
		Amount:     req.Amount,
		Method:     req.Method,
		Status:     status,
		PaidAt:     paidAt,
		Notes:      req.Notes,
	}

	if _, err := s.paymentRepo.CreatePayment(s.db, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment in repository: %w", err)
	}
	return payment, nil
}

func (s *paymentService) GetPaymentByID(id int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetPaymentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by ID: %w", err)
	}
	return payment, nil
}

func (s *paymentService) GetPaymentsByClient(clientID int64) ([]models.Payment, error) {
	payments, err := s.paymentRepo.GetPaymentsByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for client: %w", err)
	}
	return payments, nil
}

func (s *paymentService) DeletePayment(id int64) error {
	if err := s.paymentRepo.DeletePayment(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}
