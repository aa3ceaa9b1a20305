package models

import "time"

// Payment is a recorded money movement from a client, optionally tied to a
// package purchase.
type Payment struct {
	ID         int64     `json:"id" db:"id"`
	ClientID   int64     `json:"client_id" db:"client_id" binding:"required"`
	PurchaseID *int64    `json:"purchase_id,omitempty" db:"purchase_id"`
	Amount     float64   `json:"amount" db:"amount"`
	Method     *string   `json:"method,omitempty" db:"method"` // cash, card, transfer
	Status     string    `json:"status" db:"status"`
	PaidAt     string    `json:"paid_at" db:"paid_at"` // YYYY-MM-DD
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
