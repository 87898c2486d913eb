package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Service wraps account management and authentication rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials. Unknown users,
// inactive users and wrong passwords all return the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Create registers a new account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("users: unknown role %q", req.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	user.PasswordHash = ""
	return &user, nil
}

// Deactivate disables an account without deleting it.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Reactivate enables a previously disabled account.
func (s *Service) Reactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}
