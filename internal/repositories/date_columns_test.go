package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// rowStub stands in for the Postgres driver in scan-shape tests: it records
// the SQL text it receives and answers every query with one scripted result
// set. DATE columns must reach the scanner as canonical YYYY-MM-DD strings,
// which is what the to_char wrapping in the column lists guarantees; without
// it the driver would hand back time.Time values that database/sql renders
// as RFC3339.

type rowStub struct {
	lastQuery string
	cols      []string
	rows      [][]driver.Value
}

type rowStubConnector struct{ stub *rowStub }

func (c rowStubConnector) Connect(context.Context) (driver.Conn, error) {
	return rowStubConn{stub: c.stub}, nil
}
func (c rowStubConnector) Driver() driver.Driver { return rowStubDriver{} }

type rowStubDriver struct{}

func (rowStubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type rowStubConn struct{ stub *rowStub }

func (c rowStubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("row stub answers queries directly")
}
func (c rowStubConn) Close() error              { return nil }
func (c rowStubConn) Begin() (driver.Tx, error) { return nil, errors.New("no transactions") }

func (c rowStubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.stub.lastQuery = query
	return &rowStubRows{cols: c.stub.cols, rows: c.stub.rows}, nil
}

type rowStubRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *rowStubRows) Columns() []string { return r.cols }
func (r *rowStubRows) Close() error      { return nil }
func (r *rowStubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func newRowStubDB(cols []string, rows ...[]driver.Value) (*sql.DB, *rowStub) {
	stub := &rowStub{cols: cols, rows: rows}
	return sql.OpenDB(rowStubConnector{stub: stub}), stub
}

var scanStamp = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestGetSessionByIDKeepsCanonicalDate(t *testing.T) {
	db, stub := newRowStubDB(
		[]string{"id", "client_id", "client_name", "session_date", "session_time", "duration_minutes",
			"package_name", "status", "location", "payment_type", "payment_status", "price", "notes",
			"created_at", "updated_at"},
		[]driver.Value{int64(1), int64(7), "Dana Ray", "2026-09-01", "17:00:00", int64(60),
			"10x PT 60MIN", "confirmed", nil, nil, nil, nil, nil, scanStamp, scanStamp},
	)
	repo := NewSessionRepository(db)

	session, err := repo.GetSessionByID(1)
	if err != nil {
		t.Fatalf("GetSessionByID: %v", err)
	}
	if session.Date != "2026-09-01" {
		t.Fatalf("session.Date = %q, want canonical 2026-09-01", session.Date)
	}
	if !strings.Contains(stub.lastQuery, "to_char(session_date, 'YYYY-MM-DD')") {
		t.Fatalf("session_date must be selected through to_char, query was:\n%s", stub.lastQuery)
	}
}

func TestGetClientByIDKeepsCanonicalDates(t *testing.T) {
	db, stub := newRowStubDB(
		[]string{"id", "full_name", "email", "phone_number", "package_id", "package_name", "price",
			"total_sessions", "sessions_left", "monthly_count", "regular_slot", "location",
			"payment_type", "join_date", "birthday", "notes", "created_at", "updated_at"},
		[]driver.Value{int64(7), "Dana Ray", nil, nil, nil, nil, nil,
			int64(10), int64(6), int64(0), nil, nil,
			nil, "2026-01-15", "1990-04-02", nil, scanStamp, scanStamp},
	)
	repo := NewClientRepository(db)

	client, err := repo.GetClientByID(7)
	if err != nil {
		t.Fatalf("GetClientByID: %v", err)
	}
	if client.JoinDate == nil || *client.JoinDate != "2026-01-15" {
		t.Fatalf("client.JoinDate = %v, want canonical 2026-01-15", client.JoinDate)
	}
	if client.Birthday == nil || *client.Birthday != "1990-04-02" {
		t.Fatalf("client.Birthday = %v, want canonical 1990-04-02", client.Birthday)
	}
	if !strings.Contains(stub.lastQuery, "to_char(join_date, 'YYYY-MM-DD')") ||
		!strings.Contains(stub.lastQuery, "to_char(birthday, 'YYYY-MM-DD')") {
		t.Fatalf("join_date and birthday must be selected through to_char, query was:\n%s", stub.lastQuery)
	}
}

func TestGetPurchaseByIDKeepsCanonicalDate(t *testing.T) {
	db, stub := newRowStubDB(
		[]string{"id", "client_id", "client_name", "package_name", "package_sessions", "amount",
			"purchase_date", "payment_type", "payment_status", "notes", "created_at", "updated_at"},
		[]driver.Value{int64(1), int64(7), "Dana Ray", "5x PT 30MIN", int64(5), float64(250),
			"2026-03-02", nil, "completed", nil, scanStamp, scanStamp},
	)
	repo := NewPurchaseRepository(db)

	purchase, err := repo.GetPurchaseByID(1)
	if err != nil {
		t.Fatalf("GetPurchaseByID: %v", err)
	}
	if purchase.PurchaseDate != "2026-03-02" {
		t.Fatalf("purchase.PurchaseDate = %q, want canonical 2026-03-02", purchase.PurchaseDate)
	}
	if !strings.Contains(stub.lastQuery, "to_char(purchase_date, 'YYYY-MM-DD')") {
		t.Fatalf("purchase_date must be selected through to_char, query was:\n%s", stub.lastQuery)
	}
}

func TestGetPaymentByIDKeepsCanonicalDate(t *testing.T) {
	db, stub := newRowStubDB(
		[]string{"id", "client_id", "purchase_id", "amount", "method", "status", "paid_at",
			"notes", "created_at", "updated_at"},
		[]driver.Value{int64(1), int64(7), nil, float64(250), "cash", "completed", "2026-03-02",
			nil, scanStamp, scanStamp},
	)
	repo := NewPaymentRepository(db)

	payment, err := repo.GetPaymentByID(1)
	if err != nil {
		t.Fatalf("GetPaymentByID: %v", err)
	}
	if payment.PaidAt != "2026-03-02" {
		t.Fatalf("payment.PaidAt = %q, want canonical 2026-03-02", payment.PaidAt)
	}
	if !strings.Contains(stub.lastQuery, "to_char(paid_at, 'YYYY-MM-DD')") {
		t.Fatalf("paid_at must be selected through to_char, query was:\n%s", stub.lastQuery)
	}
}
