package models

import "time"

// User is a trainer or assistant account able to sign in to the studio API.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Email        *string   `json:"email,omitempty" db:"email"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"` // "Trainer" or "Assistant"
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Account roles. A single-trainer studio usually only has Trainer, but an
// Assistant role exists for front-desk access without catalog edit rights.
const (
	RoleTrainer   = "Trainer"
	RoleAssistant = "Assistant"
)
