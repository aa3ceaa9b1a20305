package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sort"
	"sync"
	"time"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/notify"
	"pt_studio_backend/internal/repositories"
)

// txStubDriver backs a *sql.DB whose only job is handing out committable
// transactions. The repository fakes ignore the executor they receive, so no
// statement ever reaches the driver.

type txStubDriver struct{}

func (txStubDriver) Open(string) (driver.Conn, error) { return txStubConn{}, nil }

type txStubConn struct{}

func (txStubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("tx stub does not execute statements")
}
func (txStubConn) Close() error              { return nil }
func (txStubConn) Begin() (driver.Tx, error) { return txStubTx{}, nil }

type txStubTx struct{}

func (txStubTx) Commit() error   { return nil }
func (txStubTx) Rollback() error { return nil }

var txStubOnce sync.Once

func newTxDB() *sql.DB {
	txStubOnce.Do(func() { sql.Register("txstub", txStubDriver{}) })
	db, err := sql.Open("txstub", "")
	if err != nil {
		panic(err)
	}
	return db
}

// In-memory repository fakes. The executor argument is ignored; these fakes
// never participate in real transactions.

type fakeClientRepo struct {
	clients map[int64]*models.Client
	nextID  int64
	// decrementCalls counts DecrementSessionsLeft invocations, successful or
	// not, so tests can assert how many charges were attempted.
	decrementCalls int
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[int64]*models.Client{}, nextID: 1}
}

func (r *fakeClientRepo) add(client *models.Client) *models.Client {
	if client.ID == 0 {
		client.ID = r.nextID
		r.nextID++
	}
	r.clients[client.ID] = client
	return client
}

func (r *fakeClientRepo) CreateClient(_ repositories.SQLExecutor, client *models.Client) (int64, error) {
	r.add(client)
	return client.ID, nil
}

func (r *fakeClientRepo) GetClientByID(id int64) (*models.Client, error) {
	client, ok := r.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *client
	return &copied, nil
}

func (r *fakeClientRepo) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	out := []models.Client{}
	for _, c := range r.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeClientRepo) GetClientsWithBirthdayOn(month time.Month, day int) ([]models.Client, error) {
	out := []models.Client{}
	for _, c := range r.clients {
		if c.Birthday == nil {
			continue
		}
		t, err := time.Parse("2006-01-02", *c.Birthday)
		if err != nil {
			continue
		}
		if t.Month() == month && t.Day() == day {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) UpdateClient(_ repositories.SQLExecutor, client *models.Client) error {
	if _, ok := r.clients[client.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *client
	r.clients[client.ID] = &copied
	return nil
}

func (r *fakeClientRepo) DeleteClient(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *fakeClientRepo) DecrementSessionsLeft(_ repositories.SQLExecutor, clientID int64) error {
	r.decrementCalls++
	client, ok := r.clients[clientID]
	if !ok {
		return repositories.ErrNotFound
	}
	if client.SessionsLeft <= 0 {
		return repositories.ErrBalanceExhausted
	}
	client.SessionsLeft--
	return nil
}

func (r *fakeClientRepo) IncrementSessionsLeft(_ repositories.SQLExecutor, clientID int64) error {
	client, ok := r.clients[clientID]
	if !ok {
		return repositories.ErrNotFound
	}
	if client.SessionsLeft < client.TotalSessions {
		client.SessionsLeft++
	}
	return nil
}

func (r *fakeClientRepo) ApplySessionDelta(_ repositories.SQLExecutor, clientID int64, delta int) error {
	client, ok := r.clients[clientID]
	if !ok {
		return repositories.ErrNotFound
	}
	client.TotalSessions += delta
	client.SessionsLeft += delta
	if client.SessionsLeft < 0 {
		client.SessionsLeft = 0
	}
	if client.SessionsLeft > client.TotalSessions {
		client.SessionsLeft = client.TotalSessions
	}
	return nil
}

type fakeSessionRepo struct {
	sessions map[int64]*models.Session
	nextID   int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[int64]*models.Session{}, nextID: 1}
}

func (r *fakeSessionRepo) add(session *models.Session) *models.Session {
	if session.ID == 0 {
		session.ID = r.nextID
		r.nextID++
	}
	r.sessions[session.ID] = session
	return session
}

func (r *fakeSessionRepo) CreateSession(_ repositories.SQLExecutor, session *models.Session) (int64, error) {
	copied := *session
	r.add(&copied)
	session.ID = copied.ID
	return copied.ID, nil
}

func (r *fakeSessionRepo) GetSessionByID(id int64) (*models.Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) GetSessions(filters models.SessionFilters) ([]models.Session, int, error) {
	out := []models.Session{}
	for _, s := range r.sessions {
		if filters.ClientID != nil && s.ClientID != *filters.ClientID {
			continue
		}
		if filters.Status != nil && s.Status != *filters.Status {
			continue
		}
		out = append(out, *s)
	}
	sortSessions(out)
	return out, len(out), nil
}

func (r *fakeSessionRepo) GetSessionsByClient(clientID int64) ([]models.Session, error) {
	out := []models.Session{}
	for _, s := range r.sessions {
		if s.ClientID == clientID {
			out = append(out, *s)
		}
	}
	sortSessions(out)
	return out, nil
}

func sortSessions(sessions []models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date < sessions[j].Date
		}
		if sessions[i].Time != sessions[j].Time {
			return sessions[i].Time < sessions[j].Time
		}
		return sessions[i].ID < sessions[j].ID
	})
}

func (r *fakeSessionRepo) FindBySlot(date, timePrefix string) (*models.Session, error) {
	candidates := []models.Session{}
	for _, s := range r.sessions {
		if s.Date == date && len(s.Time) >= len(timePrefix) && s.Time[:len(timePrefix)] == timePrefix {
			candidates = append(candidates, *s)
		}
	}
	if len(candidates) == 0 {
		return nil, repositories.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return &candidates[0], nil
}

func (r *fakeSessionRepo) UpdateSession(_ repositories.SQLExecutor, session *models.Session) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) DeleteSession(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.sessions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) CountSessionsForClient(clientID int64) (int, error) {
	count := 0
	for _, s := range r.sessions {
		if s.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

type fakePackageRepo struct {
	packages map[int64]*models.TrainingPackage
	nextID   int64
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: map[int64]*models.TrainingPackage{}, nextID: 1}
}

func (r *fakePackageRepo) add(pkg *models.TrainingPackage) *models.TrainingPackage {
	if pkg.ID == 0 {
		pkg.ID = r.nextID
		r.nextID++
	}
	r.packages[pkg.ID] = pkg
	return pkg
}

func (r *fakePackageRepo) CreatePackage(_ repositories.SQLExecutor, pkg *models.TrainingPackage) (int64, error) {
	for _, existing := range r.packages {
		if existing.Name == pkg.Name {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.add(pkg)
	return pkg.ID, nil
}

func (r *fakePackageRepo) GetPackageByID(id int64) (*models.TrainingPackage, error) {
	pkg, ok := r.packages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *pkg
	return &copied, nil
}

func (r *fakePackageRepo) GetPackageByName(name string) (*models.TrainingPackage, error) {
	for _, pkg := range r.packages {
		if pkg.Name == name {
			copied := *pkg
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakePackageRepo) GetPackages() ([]models.TrainingPackage, error) {
	out := []models.TrainingPackage{}
	for _, pkg := range r.packages {
		out = append(out, *pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePackageRepo) UpdatePackage(_ repositories.SQLExecutor, pkg *models.TrainingPackage) error {
	if _, ok := r.packages[pkg.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *pkg
	r.packages[pkg.ID] = &copied
	return nil
}

func (r *fakePackageRepo) DeletePackage(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.packages[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.packages, id)
	return nil
}

func (r *fakePackageRepo) CountPackages() (int, error) {
	return len(r.packages), nil
}

type fakePurchaseRepo struct {
	purchases map[int64]*models.PackagePurchase
	nextID    int64
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: map[int64]*models.PackagePurchase{}, nextID: 1}
}

func (r *fakePurchaseRepo) CreatePurchase(_ repositories.SQLExecutor, purchase *models.PackagePurchase) (int64, error) {
	if purchase.ID == 0 {
		purchase.ID = r.nextID
		r.nextID++
	}
	copied := *purchase
	r.purchases[purchase.ID] = &copied
	return purchase.ID, nil
}

func (r *fakePurchaseRepo) GetPurchaseByID(id int64) (*models.PackagePurchase, error) {
	purchase, ok := r.purchases[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *purchase
	return &copied, nil
}

func (r *fakePurchaseRepo) GetPurchases(filters models.PurchaseFilters) ([]models.PackagePurchase, int, error) {
	out := []models.PackagePurchase{}
	for _, p := range r.purchases {
		if filters.ClientID != nil && p.ClientID != *filters.ClientID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate > out[j].PurchaseDate })
	return out, len(out), nil
}

func (r *fakePurchaseRepo) UpdatePurchase(_ repositories.SQLExecutor, purchase *models.PackagePurchase) error {
	if _, ok := r.purchases[purchase.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *purchase
	r.purchases[purchase.ID] = &copied
	return nil
}

func (r *fakePurchaseRepo) DeletePurchase(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.purchases[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.purchases, id)
	return nil
}

// Fake notification senders capturing the last dispatch.

type fakeEmailSender struct {
	to      string
	subject string
	body    string
	err     error
}

func (f *fakeEmailSender) SendEmail(_ context.Context, to, subject, htmlBody string) (notify.Result, error) {
	if f.err != nil {
		return notify.Result{}, f.err
	}
	f.to = to
	f.subject = subject
	f.body = htmlBody
	return notify.Result{MessageID: "email-1", SentAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil
}

type fakeSMSSender struct {
	to   string
	body string
	err  error
}

func (f *fakeSMSSender) SendSMS(_ context.Context, to, body string) (notify.Result, error) {
	if f.err != nil {
		return notify.Result{}, f.err
	}
	f.to = to
	f.body = body
	return notify.Result{MessageID: "sms-1", SentAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil
}

func strPtr(s string) *string { return &s }
