package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pt_studio_backend/internal/models"

	"github.com/lib/pq"
)

// PackageRepository defines the interface for training-package catalog
// operations. The catalog is a persisted table; clients reference entries by
// id while historical rows keep name snapshots.
type PackageRepository interface {
	CreatePackage(executor SQLExecutor, pkg *models.TrainingPackage) (int64, error)
	GetPackageByID(id int64) (*models.TrainingPackage, error)
	GetPackageByName(name string) (*models.TrainingPackage, error)
	GetPackages() ([]models.TrainingPackage, error)
	UpdatePackage(executor SQLExecutor, pkg *models.TrainingPackage) error
	DeletePackage(executor SQLExecutor, id int64) error
	CountPackages() (int, error)
}

type packageRepository struct {
	db *sql.DB
}

// NewPackageRepository creates a new instance of PackageRepository.
func NewPackageRepository(db *sql.DB) PackageRepository {
	return &packageRepository{db: db}
}

const packageColumns = `id, name, sessions, duration_minutes, price, type, created_at, updated_at`

func scanPackage(row scanner) (*models.TrainingPackage, error) {
	pkg := &models.TrainingPackage{}
	err := row.Scan(&pkg.ID, &pkg.Name, &pkg.Sessions, &pkg.DurationMinutes,
		&pkg.Price, &pkg.Type, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning training package: %v", ErrDatabaseError, err)
	}
	return pkg, nil
}

// CreatePackage inserts a new catalog entry.
func (r *packageRepository) CreatePackage(executor SQLExecutor, pkg *models.TrainingPackage) (int64, error) {
	query := `INSERT INTO training_packages (name, sessions, duration_minutes, price, type, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	now := time.Now()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	err := executor.QueryRow(query, pkg.Name, pkg.Sessions, pkg.DurationMinutes,
		pkg.Price, pkg.Type, pkg.CreatedAt, pkg.UpdatedAt).Scan(&pkg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating training package: %v", ErrDatabaseError, err)
	}
	return pkg.ID, nil
}

// GetPackageByID retrieves a catalog entry by id.
func (r *packageRepository) GetPackageByID(id int64) (*models.TrainingPackage, error) {
	return scanPackage(r.db.QueryRow(`SELECT `+packageColumns+` FROM training_packages WHERE id = $1`, id))
}

// GetPackageByName retrieves a catalog entry by its exact display name.
func (r *packageRepository) GetPackageByName(name string) (*models.TrainingPackage, error) {
	return scanPackage(r.db.QueryRow(`SELECT `+packageColumns+` FROM training_packages WHERE name = $1`, name))
}

// GetPackages returns the whole catalog ordered by name.
func (r *packageRepository) GetPackages() ([]models.TrainingPackage, error) {
	rows, err := r.db.Query(`SELECT ` + packageColumns + ` FROM training_packages ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying training packages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	packages := []models.TrainingPackage{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *pkg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating training package rows: %v", ErrDatabaseError, err)
	}
	return packages, nil
}

// UpdatePackage updates an existing catalog entry.
func (r *packageRepository) UpdatePackage(executor SQLExecutor, pkg *models.TrainingPackage) error {
	query := `UPDATE training_packages SET
	            name = $1, sessions = $2, duration_minutes = $3, price = $4, type = $5, updated_at = $6
	          WHERE id = $7`
	pkg.UpdatedAt = time.Now()
	result, err := executor.Exec(query, pkg.Name, pkg.Sessions, pkg.DurationMinutes,
		pkg.Price, pkg.Type, pkg.UpdatedAt, pkg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating training package ID %d: %v", ErrDatabaseError, pkg.ID, err)
	}
	return requireRowsAffected(result, pkg.ID, "updating training package")
}

// DeletePackage removes a catalog entry. Clients referencing it keep their
// name snapshot; the FK sets their package_id to NULL.
func (r *packageRepository) DeletePackage(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM training_packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting training package ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "deleting training package")
}

// CountPackages returns the number of catalog entries, used for seeding.
func (r *packageRepository) CountPackages() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM training_packages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting training packages: %v", ErrDatabaseError, err)
	}
	return count, nil
}
