package models

import "time"

// Client is a training client together with their session balance.
// TotalSessions/SessionsLeft form the ledger the scheduler and the purchase
// ledger adjust; PackageName is a display snapshot while PackageID points at
// the current catalog entry.
type Client struct {
	ID            int64     `json:"id" db:"id"`
	FullName      string    `json:"full_name" db:"full_name" binding:"required"`
	Email         *string   `json:"email,omitempty" db:"email"`
	PhoneNumber   *string   `json:"phone_number,omitempty" db:"phone_number"`
	PackageID     *int64    `json:"package_id,omitempty" db:"package_id"`
	PackageName   *string   `json:"package_name,omitempty" db:"package_name"`
	Price         *float64  `json:"price,omitempty" db:"price"` // custom price override, may diverge from catalog
	TotalSessions int       `json:"total_sessions" db:"total_sessions"`
	SessionsLeft  int       `json:"sessions_left" db:"sessions_left"`
	MonthlyCount  int       `json:"monthly_count" db:"monthly_count"`
	RegularSlot   *string   `json:"regular_slot,omitempty" db:"regular_slot"` // free text, e.g. "Monday 09:00, Wed 2:00 PM"
	Location      *string   `json:"location,omitempty" db:"location"`
	PaymentType   *string   `json:"payment_type,omitempty" db:"payment_type"`
	JoinDate      *string   `json:"join_date,omitempty" db:"join_date"` // YYYY-MM-DD
	Birthday      *string   `json:"birthday,omitempty" db:"birthday"`   // YYYY-MM-DD, year may be a placeholder
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SessionCountView is the reconciliation result for a client against a
// candidate package name. Preview means the numbers are computed from the
// candidate, not read from the ledger, and are not persisted.
type SessionCountView struct {
	TotalSessions  int  `json:"total_sessions"`
	SessionsLeft   int  `json:"sessions_left"`
	CompletedCount int  `json:"completed_count"`
	Preview        bool `json:"preview"`
}

// ImportRowError describes one rejected row of a CSV client import.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportReport summarizes a CSV client import batch.
type ImportReport struct {
	BatchID  string           `json:"batch_id"`
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}
