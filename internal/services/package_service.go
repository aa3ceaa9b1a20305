package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/repositories"
)

// --- Custom Service Errors for the Package Catalog ---
var (
	ErrPackageNotFound   = errors.New("training package not found")
	ErrPackageNameExists = errors.New("a package with this name already exists")
	ErrPackageValidation = errors.New("package data validation error")
)

// --- Package DTOs ---
type CreatePackageRequest struct {
	Name            string  `json:"name" binding:"required"`
	Sessions        int     `json:"sessions" binding:"required,gt=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required"`
	Price           float64 `json:"price"`
}

type UpdatePackageRequest struct {
	Name            *string  `json:"name"`
	Sessions        *int     `json:"sessions"`
	DurationMinutes *int     `json:"duration_minutes"`
	Price           *float64 `json:"price"`
}

// --- PackageService Interface ---
type PackageService interface {
	CreatePackage(req CreatePackageRequest) (*models.TrainingPackage, error)
	GetPackageByID(id int64) (*models.TrainingPackage, error)
	GetPackages() ([]models.TrainingPackage, error)
	UpdatePackage(id int64, req UpdatePackageRequest) (*models.TrainingPackage, error)
	DeletePackage(id int64) error
	// SeedDefaults inserts the six default bundles when the catalog is empty.
	SeedDefaults() error
}

type packageService struct {
	packageRepo repositories.PackageRepository
	db          *sql.DB
}

// NewPackageService creates a new instance of PackageService.
func NewPackageService(repo repositories.PackageRepository, db *sql.DB) PackageService {
	return &packageService{packageRepo: repo, db: db}
}

func (s *packageService) validate(name string, sessions, duration int, price float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrPackageValidation)
	}
	if sessions <= 0 {
		return fmt.Errorf("%w: sessions must be positive", ErrPackageValidation)
	}
	if duration != 30 && duration != 60 {
		return fmt.Errorf("%w: duration must be 30 or 60 minutes", ErrPackageValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrPackageValidation)
	}
	return nil
}

func (s *packageService) CreatePackage(req CreatePackageRequest) (*models.TrainingPackage, error) {
	if err := s.validate(req.Name, req.Sessions, req.DurationMinutes, req.Price); err != nil {
		return nil, err
	}

	pkg := &models.TrainingPackage{
		Name:            strings.TrimSpace(req.Name),
		Sessions:        req.Sessions,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Type:            models.PackageTypeForDuration(req.DurationMinutes),
	}
	id, err := s.packageRepo.CreatePackage(s.db, pkg)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPackageNameExists
		}
		return nil, fmt.Errorf("failed to create package in repository: %w", err)
	}
	return s.packageRepo.GetPackageByID(id)
}

func (s *packageService) GetPackageByID(id int64) (*models.TrainingPackage, error) {
	pkg, err := s.packageRepo.GetPackageByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to get package by ID: %w", err)
	}
	return pkg, nil
}

func (s *packageService) GetPackages() ([]models.TrainingPackage, error) {
	packages, err := s.packageRepo.GetPackages()
	if err != nil {
		return nil, fmt.Errorf("failed to get packages: %w", err)
	}
	return packages, nil
}

func (s *packageService) UpdatePackage(id int64, req UpdatePackageRequest) (*models.TrainingPackage, error) {
	pkg, err := s.packageRepo.GetPackageByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to find package for update: %w", err)
	}

	if req.Name != nil {
		pkg.Name = strings.TrimSpace(*req.Name)
	}
	if req.Sessions != nil {
		pkg.Sessions = *req.Sessions
	}
	if req.DurationMinutes != nil {
		pkg.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		pkg.Price = *req.Price
	}
	if err := s.validate(pkg.Name, pkg.Sessions, pkg.DurationMinutes, pkg.Price); err != nil {
		return nil, err
	}
	// Type always follows duration, whatever the caller sent.
	pkg.Type = models.PackageTypeForDuration(pkg.DurationMinutes)

	if err := s.packageRepo.UpdatePackage(s.db, pkg); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPackageNameExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to update package in repository: %w", err)
	}
	return s.packageRepo.GetPackageByID(id)
}

func (s *packageService) DeletePackage(id int64) error {
	if err := s.packageRepo.DeletePackage(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPackageNotFound
		}
		return fmt.Errorf("failed to delete package: %w", err)
	}
	return nil
}

// defaultPackages are the six bundles a fresh studio starts with.
var defaultPackages = []CreatePackageRequest{
	{Name: "1x PT 30MIN", Sessions: 1, DurationMinutes: 30, Price: 35},
	{Name: "1x PT 60MIN", Sessions: 1, DurationMinutes: 60, Price: 60},
	{Name: "5x PT 30MIN", Sessions: 5, DurationMinutes: 30, Price: 160},
	{Name: "5x PT 60MIN", Sessions: 5, DurationMinutes: 60, Price: 280},
	{Name: "10x PT 30MIN", Sessions: 10, DurationMinutes: 30, Price: 300},
	{Name: "10x PT 60MIN", Sessions: 10, DurationMinutes: 60, Price: 540},
}

func (s *packageService) SeedDefaults() error {
	count, err := s.packageRepo.CountPackages()
	if err != nil {
		return fmt.Errorf("failed to count packages for seeding: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, req := range defaultPackages {
		pkg := &models.TrainingPackage{
			Name:            req.Name,
			Sessions:        req.Sessions,
			DurationMinutes: req.DurationMinutes,
			Price:           req.Price,
			Type:            models.PackageTypeForDuration(req.DurationMinutes),
		}
		if _, err := s.packageRepo.CreatePackage(s.db, pkg); err != nil {
			return fmt.Errorf("failed to seed default package %q: %w", req.Name, err)
		}
	}
	return nil
}

// Ordered fallbacks for reading a session count out of a package name when no
// catalog entry matches exactly. "10x PT 30MIN" yields 10.
var sessionCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(\d+)\s*x`),
	regexp.MustCompile(`(?i)(\d+)\s*x`),
	regexp.MustCompile(`(?i)(\d+)\s*sessions?`),
}

// FallbackSessionCount extracts a session count from a package name string.
// Defaults to 1 when no pattern matches.
func FallbackSessionCount(packageName string) int {
	for _, pattern := range sessionCountPatterns {
		if m := pattern.FindStringSubmatch(packageName); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}
