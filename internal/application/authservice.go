package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// AuthService verifies administrator credentials and resolves session
// subjects. Session transport lives in the auth package; this service never
// sees cookies or tokens.
type AuthService struct {
	store  driven.AdminStore
	hasher PasswordHasher
}

// NewAuthService creates a new AuthService with the required dependencies.
func NewAuthService(store driven.AdminStore, hasher PasswordHasher) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
	}
}

// Login returns the administrator whose username and password match. Unknown
// usernames and wrong passwords both return ErrInvalidCredentials after the
// same bcrypt work.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Administrator, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	admin, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find administrator: %w", err)
	}

	if admin == nil {
		s.hasher.Equalize(password)
		slog.Info("login rejected", "reason", "unknown username")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, admin.PasswordHash) {
		slog.Info("login rejected", "reason", "password mismatch", "id", admin.ID)
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// Whoami resolves a verified session subject to its administrator. A subject
// whose row no longer exists is treated as unauthenticated.
func (s *AuthService) Whoami(ctx context.Context, id uuid.UUID) (*model.Administrator, error) {
	admin, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find administrator: %w", err)
	}
	if admin == nil {
		return nil, ErrUnauthenticated
	}
	return admin, nil
}
