package models

import "time"

// SessionStatus defines the lifecycle states of a booked session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusConfirmed SessionStatus = "confirmed"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// IsValidSessionStatus checks if the provided status string is a valid
// SessionStatus.
func IsValidSessionStatus(status string) bool {
	switch SessionStatus(status) {
	case SessionStatusPending, SessionStatusConfirmed, SessionStatusCompleted, SessionStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionSessionStatus reports whether a session may move from one
// status to another. Completed and cancelled are terminal; pending may be
// confirmed or cancelled, confirmed may be completed or cancelled.
func CanTransitionSessionStatus(from, to SessionStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case SessionStatusPending:
		return to == SessionStatusConfirmed || to == SessionStatusCancelled || to == SessionStatusCompleted
	case SessionStatusConfirmed:
		return to == SessionStatusCompleted || to == SessionStatusCancelled
	default:
		return false
	}
}

// Session is a single calendar booking charged against a client's balance.
// Date and Time are stored in their canonical string forms (YYYY-MM-DD and
// HH:MM:SS) so slot matching can compare prefixes directly.
type Session struct {
	ID              int64     `json:"id" db:"id"`
	ClientID        int64     `json:"client_id" db:"client_id" binding:"required"`
	ClientName      string    `json:"client_name" db:"client_name"` // denormalized snapshot
	Date            string    `json:"date" db:"session_date"`
	Time            string    `json:"time" db:"session_time"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	PackageName     *string   `json:"package_name,omitempty" db:"package_name"` // snapshot at booking time
	Status          string    `json:"status" db:"status"`
	Location        *string   `json:"location,omitempty" db:"location"`
	PaymentType     *string   `json:"payment_type,omitempty" db:"payment_type"`
	PaymentStatus   *string   `json:"payment_status,omitempty" db:"payment_status"`
	Price           *float64  `json:"price,omitempty" db:"price"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SessionOrdinal is the "session N of M" display label for a booking.
type SessionOrdinal struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// SessionFilters defines the available filters for querying sessions.
type SessionFilters struct {
	ClientID *int64  `form:"client_id"`
	DateFrom *string `form:"date_from"` // YYYY-MM-DD
	DateTo   *string `form:"date_to"`   // YYYY-MM-DD
	Status   *string `form:"status"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
