package models

import "time"

// PaymentStatus values shared by purchases, sessions and payments.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsValidPaymentStatus checks whether the given string is a known payment
// status.
func IsValidPaymentStatus(status string) bool {
	switch PaymentStatus(status) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

// PackagePurchase is one entry of the per-client purchase ledger. Its
// PackageSessions value equals the delta applied to the owning client's
// balance when the purchase was recorded; edits and deletes re-apply the
// difference, never absolute counts.
type PackagePurchase struct {
	ID              int64     `json:"id" db:"id"`
	ClientID        int64     `json:"client_id" db:"client_id" binding:"required"`
	ClientName      string    `json:"client_name" db:"client_name"` // denormalized snapshot
	PackageName     string    `json:"package_name" db:"package_name"`
	PackageSessions int       `json:"package_sessions" db:"package_sessions"`
	Amount          float64   `json:"amount" db:"amount"`
	PurchaseDate    string    `json:"purchase_date" db:"purchase_date"` // YYYY-MM-DD
	PaymentType     *string   `json:"payment_type,omitempty" db:"payment_type"`
	PaymentStatus   string    `json:"payment_status" db:"payment_status"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// PurchaseFilters defines the available filters for querying the purchase
// ledger.
type PurchaseFilters struct {
	ClientID      *int64  `form:"client_id"`
	PaymentStatus *string `form:"payment_status"`
	DateFrom      *string `form:"date_from"` // YYYY-MM-DD
	DateTo        *string `form:"date_to"`   // YYYY-MM-DD
	Page          int     `form:"page"`
	PageSize      int     `form:"page_size"`
}
