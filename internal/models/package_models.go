package models

import "time"

// Package type labels, recomputed from duration on every write.
const (
	PackageType30Min = "30MIN"
	PackageType60Min = "60MIN"
)

// PackageTypeForDuration derives the catalog type label from a session
// duration in minutes.
func PackageTypeForDuration(durationMinutes int) string {
	if durationMinutes == 30 {
		return PackageType30Min
	}
	return PackageType60Min
}

// TrainingPackage is a purchasable session bundle in the catalog.
// Catalog entries are referenced by id from current entities; historical
// purchase and session rows keep the name as a snapshot instead.
type TrainingPackage struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name" binding:"required"`
	Sessions        int       `json:"sessions" db:"sessions"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Price           float64   `json:"price" db:"price"`
	Type            string    `json:"type" db:"type"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
