package services

import (
	"errors"
	"strings"
	"testing"

	"pt_studio_backend/internal/models"
)

// stubScheduler satisfies SessionService for client-service tests; only
// GenerateRecurringSessions is expected to run.
type stubScheduler struct {
	SessionService
	generated []*models.Client
	result    *RecurringResult
	err       error
}

func (s *stubScheduler) GenerateRecurringSessions(client *models.Client) (*RecurringResult, error) {
	s.generated = append(s.generated, client)
	if s.result == nil {
		return &RecurringResult{Created: []models.Session{}}, s.err
	}
	return s.result, s.err
}

func newClientFixture() (*fakeClientRepo, *fakePackageRepo, *stubScheduler, ClientService) {
	clientRepo := newFakeClientRepo()
	packageRepo := newFakePackageRepo()
	scheduler := &stubScheduler{}
	svc := NewClientService(clientRepo, packageRepo, scheduler, nil)
	return clientRepo, packageRepo, scheduler, svc
}

func TestCreateClientDefaultsEntitlement(t *testing.T) {
	_, _, _, svc := newClientFixture()

	client, err := svc.CreateClient(CreateClientRequest{FullName: "Dana Ray"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if client.TotalSessions != 10 || client.SessionsLeft != 10 {
		t.Fatalf("entitlement = %d/%d, want 10/10", client.SessionsLeft, client.TotalSessions)
	}
	if client.JoinDate == nil || *client.JoinDate == "" {
		t.Fatal("join date not defaulted")
	}
}

func TestCreateClientSeedsEntitlementFromPackage(t *testing.T) {
	_, packageRepo, _, svc := newClientFixture()
	pkg := packageRepo.add(&models.TrainingPackage{Name: "5x PT 60MIN", Sessions: 5, DurationMinutes: 60})

	client, err := svc.CreateClient(CreateClientRequest{FullName: "Dana Ray", PackageID: &pkg.ID})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if client.TotalSessions != 5 || client.SessionsLeft != 5 {
		t.Fatalf("entitlement = %d/%d, want 5/5", client.SessionsLeft, client.TotalSessions)
	}
	if client.PackageName == nil || *client.PackageName != "5x PT 60MIN" {
		t.Fatalf("package name snapshot missing: %v", client.PackageName)
	}
}

func TestCreateClientUnknownPackage(t *testing.T) {
	_, _, _, svc := newClientFixture()
	var missing int64 = 99
	if _, err := svc.CreateClient(CreateClientRequest{FullName: "Dana Ray", PackageID: &missing}); !errors.Is(err, ErrClientValidation) {
		t.Fatalf("expected ErrClientValidation, got %v", err)
	}
}

func TestCreateClientRejectsBadEmail(t *testing.T) {
	_, _, _, svc := newClientFixture()
	if _, err := svc.CreateClient(CreateClientRequest{FullName: "Dana Ray", Email: strPtr("not-an-email")}); !errors.Is(err, ErrClientValidation) {
		t.Fatalf("expected ErrClientValidation, got %v", err)
	}
}

func TestCreateClientGeneratesRecurringForRealSlot(t *testing.T) {
	_, _, scheduler, svc := newClientFixture()

	if _, err := svc.CreateClient(CreateClientRequest{FullName: "Dana Ray", RegularSlot: strPtr("Monday 17:00")}); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if len(scheduler.generated) != 1 {
		t.Fatalf("recurring generation ran %d times, want 1", len(scheduler.generated))
	}
}

func TestCreateClientSkipsPlaceholderSlot(t *testing.T) {
	_, _, scheduler, svc := newClientFixture()

	if _, err := svc.CreateClient(CreateClientRequest{FullName: "Dana Ray", RegularSlot: strPtr("TBD")}); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if len(scheduler.generated) != 0 {
		t.Fatal("placeholder slot must not trigger recurring generation")
	}
}

func TestCreateClientRecurringFailureReturnsPartialUpdate(t *testing.T) {
	_, _, scheduler, svc := newClientFixture()
	scheduler.err = errors.New("balance exhausted mid-batch")

	client, err := svc.CreateClient(CreateClientRequest{FullName: "Dana Ray", RegularSlot: strPtr("Monday 17:00")})
	if !errors.Is(err, ErrPartialUpdate) {
		t.Fatalf("expected ErrPartialUpdate, got %v", err)
	}
	if client == nil {
		t.Fatal("client must be returned alongside the partial-update error")
	}
}

func TestUpdateClientPackageSwapKeepsBalance(t *testing.T) {
	clientRepo, packageRepo, _, svc := newClientFixture()
	pkg := packageRepo.add(&models.TrainingPackage{Name: "5x PT 60MIN", Sessions: 5, DurationMinutes: 60})
	clientRepo.add(&models.Client{FullName: "Dana Ray", TotalSessions: 10, SessionsLeft: 7})

	updated, err := svc.UpdateClient(1, UpdateClientRequest{PackageID: &pkg.ID})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.TotalSessions != 10 || updated.SessionsLeft != 7 {
		t.Fatalf("package swap changed balance to %d/%d, want 7/10 untouched", updated.SessionsLeft, updated.TotalSessions)
	}
	if updated.PackageName == nil || *updated.PackageName != "5x PT 60MIN" {
		t.Fatalf("package name snapshot not updated: %v", updated.PackageName)
	}
}

func TestImportClientsCSV(t *testing.T) {
	_, packageRepo, _, svc := newClientFixture()
	packageRepo.add(&models.TrainingPackage{Name: "5x PT 60MIN", Sessions: 5, DurationMinutes: 60})

	csvData := strings.Join([]string{
		"name,email,phone,package,notes",
		"Dana Ray,dana@example.com,+6421000001,5x PT 60MIN,prefers mornings",
		",missing@example.com,+6421000002,,no name here",
		"Bo Lee,,,Unknown Package,",
	}, "\n")

	report, err := svc.ImportClientsCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportClientsCSV: %v", err)
	}
	if report.Imported != 2 {
		t.Fatalf("imported = %d, want 2", report.Imported)
	}
	if report.Failed != 1 {
		t.Fatalf("failed = %d, want 1", report.Failed)
	}
	if len(report.Errors) != 1 || report.Errors[0].Row != 3 {
		t.Fatalf("errors = %+v, want one error on row 3", report.Errors)
	}
	if report.BatchID == "" {
		t.Fatal("batch id not assigned")
	}

	// The aliased headers resolved: Dana got the catalog package.
	clients, _, listErr := svc.GetClients(1, 10, nil)
	if listErr != nil {
		t.Fatalf("GetClients: %v", listErr)
	}
	var dana *models.Client
	for i := range clients {
		if clients[i].FullName == "Dana Ray" {
			dana = &clients[i]
		}
	}
	if dana == nil {
		t.Fatal("imported client not found")
	}
	if dana.TotalSessions != 5 {
		t.Fatalf("catalog package did not seed entitlement: total = %d, want 5", dana.TotalSessions)
	}
}
