package services

import (
	"errors"
	"testing"

	"pt_studio_backend/internal/models"
)

func TestFallbackSessionCount(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"10x PT 60MIN", 10},
		{"5x PT 30MIN", 5},
		{"PT 3x weekly", 3},
		{"12 sessions bundle", 12},
		{"1 session trial", 1},
		{"Open gym", 1}, // no count anywhere
		{"0x nothing", 1},
	}
	for _, c := range cases {
		if got := FallbackSessionCount(c.name); got != c.want {
			t.Errorf("FallbackSessionCount(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestCreatePackageAssignsTypeFromDuration(t *testing.T) {
	svc := NewPackageService(newFakePackageRepo(), nil)

	pkg, err := svc.CreatePackage(CreatePackageRequest{Name: "10x PT 60MIN", Sessions: 10, DurationMinutes: 60, Price: 540})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if pkg.Type != string(models.PackageType60Min) {
		t.Fatalf("type = %q, want %q", pkg.Type, models.PackageType60Min)
	}
}

func TestCreatePackageRejectsOddDuration(t *testing.T) {
	svc := NewPackageService(newFakePackageRepo(), nil)
	_, err := svc.CreatePackage(CreatePackageRequest{Name: "10x PT 45MIN", Sessions: 10, DurationMinutes: 45})
	if !errors.Is(err, ErrPackageValidation) {
		t.Fatalf("expected ErrPackageValidation, got %v", err)
	}
}

func TestCreatePackageDuplicateName(t *testing.T) {
	svc := NewPackageService(newFakePackageRepo(), nil)
	if _, err := svc.CreatePackage(CreatePackageRequest{Name: "10x PT 60MIN", Sessions: 10, DurationMinutes: 60}); err != nil {
		t.Fatalf("first CreatePackage: %v", err)
	}
	if _, err := svc.CreatePackage(CreatePackageRequest{Name: "10x PT 60MIN", Sessions: 10, DurationMinutes: 60}); !errors.Is(err, ErrPackageNameExists) {
		t.Fatalf("expected ErrPackageNameExists, got %v", err)
	}
}

func TestUpdatePackageRecomputesType(t *testing.T) {
	repo := newFakePackageRepo()
	svc := NewPackageService(repo, nil)
	created, err := svc.CreatePackage(CreatePackageRequest{Name: "10x PT 60MIN", Sessions: 10, DurationMinutes: 60})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	thirty := 30
	updated, err := svc.UpdatePackage(created.ID, UpdatePackageRequest{DurationMinutes: &thirty})
	if err != nil {
		t.Fatalf("UpdatePackage: %v", err)
	}
	if updated.Type != string(models.PackageType30Min) {
		t.Fatalf("type = %q after duration change, want %q", updated.Type, models.PackageType30Min)
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	repo := newFakePackageRepo()
	svc := NewPackageService(repo, nil)

	if err := svc.SeedDefaults(); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	first, _ := repo.CountPackages()
	if first != 6 {
		t.Fatalf("seeded %d packages, want 6", first)
	}

	if err := svc.SeedDefaults(); err != nil {
		t.Fatalf("second SeedDefaults: %v", err)
	}
	second, _ := repo.CountPackages()
	if second != 6 {
		t.Fatalf("re-seeding grew the catalog to %d", second)
	}
}
