package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors and wraps
	// the driver error text.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique
	// constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrBalanceExhausted is returned by the conditional balance decrement
	// when the client has no sessions left to charge.
	ErrBalanceExhausted = errors.New("client session balance exhausted")
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so repository methods
// can run standalone or inside a transaction managed by a service.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is satisfied by *sql.Row and *sql.Rows, for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}
