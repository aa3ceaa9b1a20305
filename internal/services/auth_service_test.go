package services

import (
	"errors"
	"testing"

	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/repositories"
)

type fakeAuthRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[int64]*models.User{}, nextID: 1}
}

func (r *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return 0, repositories.ErrDuplicateKey
		}
	}
	stored := *user
	stored.ID = r.nextID
	stored.PasswordHash = hashedPassword
	stored.IsActive = true
	r.users[stored.ID] = &stored
	r.nextID++
	return stored.ID, nil
}

func (r *fakeAuthRepo) FindUserByUsername(username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAuthRepo) FindUserByID(userID int64) (*models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func TestRegisterUserDefaultsToTrainerRole(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), nil)

	user, err := svc.RegisterUser(RegisterUserRequest{Username: "dana", Password: "correct horse"})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Role != models.RoleTrainer {
		t.Fatalf("role = %q, want %q", user.Role, models.RoleTrainer)
	}
}

func TestRegisterUserRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), nil)
	if _, err := svc.RegisterUser(RegisterUserRequest{Username: "dana", Password: "correct horse", Role: "Owner"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), nil)
	if _, err := svc.RegisterUser(RegisterUserRequest{Username: "dana", Password: "correct horse"}); err != nil {
		t.Fatalf("first RegisterUser: %v", err)
	}
	if _, err := svc.RegisterUser(RegisterUserRequest{Username: "dana", Password: "other password"}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestLoginUser(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, nil)
	if _, err := svc.RegisterUser(RegisterUserRequest{Username: "dana", Password: "correct horse"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	resp, err := svc.LoginUser(LoginRequest{Username: "dana", Password: "correct horse"})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("login did not issue both tokens")
	}

	if _, err := svc.LoginUser(LoginRequest{Username: "dana", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.LoginUser(LoginRequest{Username: "nobody", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLoginUserInactiveAccount(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, nil)
	if _, err := svc.RegisterUser(RegisterUserRequest{Username: "dana", Password: "correct horse"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	repo.users[1].IsActive = false

	if _, err := svc.LoginUser(LoginRequest{Username: "dana", Password: "correct horse"}); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, nil)
	if _, err := svc.RegisterUser(RegisterUserRequest{Username: "dana", Password: "correct horse"}); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	login, err := svc.LoginUser(LoginRequest{Username: "dana", Password: "correct horse"})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	refreshed, err := svc.RefreshToken(login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatal("refresh did not issue an access token")
	}

	if _, err := svc.RefreshToken("not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for garbage token, got %v", err)
	}
}
