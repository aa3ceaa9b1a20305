package services

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/repositories"
	"pt_studio_backend/pkg/dateutil"
	"pt_studio_backend/pkg/schedule"

	"github.com/google/uuid"
)

// --- Custom Service Errors for the Client Ledger ---
var (
	ErrClientNotFound    = errors.New("client not found")
	ErrPhoneNumberExists = errors.New("phone number already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrClientValidation  = errors.New("client data validation error")
)

// defaultSessionEntitlement is the balance a new client starts with when no
// catalog package seeds it.
const defaultSessionEntitlement = 10

// --- Client DTOs ---
type CreateClientRequest struct {
	FullName    string   `json:"full_name" binding:"required"`
	Email       *string  `json:"email"`
	PhoneNumber *string  `json:"phone_number"`
	PackageID   *int64   `json:"package_id"`
	Price       *float64 `json:"price"`
	RegularSlot *string  `json:"regular_slot"`
	Location    *string  `json:"location"`
	PaymentType *string  `json:"payment_type"`
	JoinDate    *string  `json:"join_date"` // YYYY-MM-DD, defaults to today
	Birthday    *string  `json:"birthday"`  // YYYY-MM-DD
	Notes       *string  `json:"notes"`
}

type UpdateClientRequest struct {
	FullName     *string  `json:"full_name"`
	Email        *string  `json:"email"`
	PhoneNumber  *string  `json:"phone_number"`
	PackageID    *int64   `json:"package_id"`
	Price        *float64 `json:"price"`
	MonthlyCount *int     `json:"monthly_count"`
	RegularSlot  *string  `json:"regular_slot"`
	Location     *string  `json:"location"`
	PaymentType  *string  `json:"payment_type"`
	JoinDate     *string  `json:"join_date"`
	Birthday     *string  `json:"birthday"`
	Notes        *string  `json:"notes"`
}

// --- ClientService Interface ---
type ClientService interface {
	// CreateClient persists the record and, when a real regular slot is
	// present, generates recurring bookings as a best-effort side effect:
	// their failure surfaces ErrPartialUpdate with the created client.
	CreateClient(req CreateClientRequest) (*models.Client, error)
	GetClientByID(clientID int64) (*models.Client, error)
	GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	// UpdateClient overwrites scalar fields. It never recomputes the session
	// balance, even when the package changes; entitlement changes flow
	// through the purchase ledger or an explicit reconciliation save.
	UpdateClient(clientID int64, req UpdateClientRequest) (*models.Client, error)
	DeleteClient(clientID int64) error
	// ImportClientsCSV creates one client per row of a header-keyed CSV.
	ImportClientsCSV(r io.Reader) (*models.ImportReport, error)
}

type clientService struct {
	clientRepo  repositories.ClientRepository
	packageRepo repositories.PackageRepository
	scheduler   SessionService
	db          *sql.DB
}

// NewClientService creates a new instance of ClientService.
func NewClientService(
	cr repositories.ClientRepository,
	pr repositories.PackageRepository,
	scheduler SessionService,
	db *sql.DB,
) ClientService {
	return &clientService{clientRepo: cr, packageRepo: pr, scheduler: scheduler, db: db}
}

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)

func (s *clientService) validateClientData(fullName string, email *string) error {
	if strings.TrimSpace(fullName) == "" {
		return fmt.Errorf("%w: full name cannot be empty", ErrClientValidation)
	}
	if email != nil && *email != "" {
		if !emailRegex.MatchString(strings.ToLower(strings.TrimSpace(*email))) {
			return fmt.Errorf("%w: email format is invalid", ErrClientValidation)
		}
	}
	return nil
}

func normalizeOptionalDate(value *string, field string) (*string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	normalized, err := dateutil.FormatForStorage(*value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &normalized, nil
}

func (s *clientService) CreateClient(req CreateClientRequest) (*models.Client, error) {
	if err := s.validateClientData(req.FullName, req.Email); err != nil {
		return nil, err
	}
	joinDate, err := normalizeOptionalDate(req.JoinDate, "join_date")
	if err != nil {
		return nil, err
	}
	if joinDate == nil {
		today := dateutil.Today().Format(dateutil.StorageLayout)
		joinDate = &today
	}
	birthday, err := normalizeOptionalDate(req.Birthday, "birthday")
	if err != nil {
		return nil, err
	}

	// New clients start with the 10-session default; a resolvable catalog
	// package seeds the entitlement from its session count instead.
	entitlement := defaultSessionEntitlement
	var packageID *int64
	var packageName *string
	if req.PackageID != nil {
		pkg, err := s.packageRepo.GetPackageByID(*req.PackageID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: package ID %d not found", ErrClientValidation, *req.PackageID)
			}
			return nil, fmt.Errorf("failed to resolve package for client: %w", err)
		}
		entitlement = pkg.Sessions
		packageID = &pkg.ID
		packageName = &pkg.Name
	}

	client := &models.Client{
		FullName:      strings.TrimSpace(req.FullName),
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		PackageID:     packageID,
		PackageName:   packageName,
		Price:         req.Price,
		TotalSessions: entitlement,
		SessionsLeft:  entitlement,
		RegularSlot:   req.RegularSlot,
		Location:      req.Location,
		PaymentType:   req.PaymentType,
		JoinDate:      joinDate,
		Birthday:      birthday,
		Notes:         req.Notes,
	}

	id, err := s.clientRepo.CreateClient(s.db, client)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "clients_phone_number_key") {
				return nil, ErrPhoneNumberExists
			}
			if strings.Contains(err.Error(), "clients_email_key") {
				return nil, ErrEmailExists
			}
			return nil, fmt.Errorf("failed to create client due to duplicate data: %w", err)
		}
		return nil, fmt.Errorf("failed to create client in repository: %w", err)
	}

	created, err := s.clientRepo.GetClientByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read created client: %w", err)
	}

	if req.RegularSlot != nil && !schedule.IsPlaceholder(*req.RegularSlot) {
		if _, recurringErr := s.scheduler.GenerateRecurringSessions(created); recurringErr != nil {
			// The client exists; report the incomplete schedule, don't roll back.
			refreshed, readErr := s.clientRepo.GetClientByID(id)
			if readErr == nil {
				created = refreshed
			}
			return created, fmt.Errorf("%w: client created, recurring bookings incomplete: %v", ErrPartialUpdate, recurringErr)
		}
		refreshed, readErr := s.clientRepo.GetClientByID(id)
		if readErr == nil {
			created = refreshed
		}
	}
	return created, nil
}

func (s *clientService) GetClientByID(clientID int64) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by ID: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	clients, totalCount, err := s.clientRepo.GetClients(page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get clients: %w", err)
	}
	return clients, totalCount, nil
}

func (s *clientService) UpdateClient(clientID int64, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client for update: %w", err)
	}

	if req.FullName != nil {
		client.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		client.Email = req.Email
	}
	if err := s.validateClientData(client.FullName, client.Email); err != nil {
		return nil, err
	}
	if req.PhoneNumber != nil {
		client.PhoneNumber = req.PhoneNumber
	}
	if req.PackageID != nil {
		pkg, err := s.packageRepo.GetPackageByID(*req.PackageID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: package ID %d not found", ErrClientValidation, *req.PackageID)
			}
			return nil, fmt.Errorf("failed to resolve package for client update: %w", err)
		}
		client.PackageID = &pkg.ID
		client.PackageName = &pkg.Name
		// The balance stays untouched; a package swap changes entitlement
		// only through the purchase ledger or a saved reconciliation.
	}
	if req.Price != nil {
		client.Price = req.Price
	}
	if req.MonthlyCount != nil {
		client.MonthlyCount = *req.MonthlyCount
	}
	if req.RegularSlot != nil {
		client.RegularSlot = req.RegularSlot
	}
	if req.Location != nil {
		client.Location = req.Location
	}
	if req.PaymentType != nil {
		client.PaymentType = req.PaymentType
	}
	if req.JoinDate != nil {
		joinDate, err := normalizeOptionalDate(req.JoinDate, "join_date")
		if err != nil {
			return nil, err
		}
		client.JoinDate = joinDate
	}
	if req.Birthday != nil {
		birthday, err := normalizeOptionalDate(req.Birthday, "birthday")
		if err != nil {
			return nil, err
		}
		client.Birthday = birthday
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}

	if err := s.clientRepo.UpdateClient(s.db, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "clients_phone_number_key") {
				return nil, ErrPhoneNumberExists
			}
			if strings.Contains(err.Error(), "clients_email_key") {
				return nil, ErrEmailExists
			}
			return nil, fmt.Errorf("failed to update client due to duplicate data: %w", err)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client in repository: %w", err)
	}
	return s.clientRepo.GetClientByID(clientID)
}

func (s *clientService) DeleteClient(clientID int64) error {
	if _, err := s.clientRepo.GetClientByID(clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to find client for deletion: %w", err)
	}
	// Sessions, purchases and payments go with the client via the schema's
	// ON DELETE CASCADE.
	if err := s.clientRepo.DeleteClient(s.db, clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// csvField reads a trimmed cell by header name, accepting any of the given
// aliases.
func csvField(row map[string]string, aliases ...string) string {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (s *clientService) ImportClientsCSV(r io.Reader) (*models.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: could not read CSV header: %v", ErrClientValidation, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	report := &models.ImportReport{BatchID: uuid.NewString()}
	rowNum := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, models.ImportRowError{Row: rowNum, Error: err.Error()})
			continue
		}

		row := map[string]string{}
		for i, cell := range record {
			if i < len(header) {
				row[header[i]] = cell
			}
		}

		req := CreateClientRequest{
			FullName:    csvField(row, "full_name", "name"),
			Email:       optional(csvField(row, "email")),
			PhoneNumber: optional(csvField(row, "phone_number", "phone")),
			RegularSlot: optional(csvField(row, "regular_slot", "slot")),
			Location:    optional(csvField(row, "location")),
			PaymentType: optional(csvField(row, "payment_type")),
			JoinDate:    optional(csvField(row, "join_date")),
			Birthday:    optional(csvField(row, "birthday")),
			Notes:       optional(csvField(row, "notes")),
		}
		if priceStr := csvField(row, "price"); priceStr != "" {
			if price, err := strconv.ParseFloat(priceStr, 64); err == nil {
				req.Price = &price
			}
		}
		if pkgName := csvField(row, "package", "package_name"); pkgName != "" {
			if pkg, err := s.packageRepo.GetPackageByName(pkgName); err == nil {
				req.PackageID = &pkg.ID
			}
		}

		if _, err := s.CreateClient(req); err != nil && !errors.Is(err, ErrPartialUpdate) {
			report.Failed++
			report.Errors = append(report.Errors, models.ImportRowError{Row: rowNum, Error: err.Error()})
			continue
		}
		report.Imported++
	}
	return report, nil
}
