// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// maxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
// as input errors rather than failing inside the hasher.
const maxPasswordBytes = 72

// maxUsernameLength bounds usernames accepted at setup.
const maxUsernameLength = 64

// SetupService creates the sole administrator on first run. Once a row
// exists every further attempt is refused.
type SetupService struct {
	store  driven.AdminStore
	hasher PasswordHasher
	now    func() time.Time
}

// NewSetupService creates a new SetupService with the required dependencies.
func NewSetupService(store driven.AdminStore, hasher PasswordHasher) *SetupService {
	return &SetupService{
		store:  store,
		hasher: hasher,
		now:    time.Now,
	}
}

// Status reports whether first-run setup is still required.
func (s *SetupService) Status(ctx context.Context) (bool, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count administrators: %w", err)
	}
	return n == 0, nil
}

// Setup validates the input, hashes the password, and inserts the first
// administrator. It never issues a session; the caller logs in separately.
func (s *SetupService) Setup(ctx context.Context, username, password string) (*model.Administrator, error) {
	if err := validateSetupInput(username, password); err != nil {
		return nil, err
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count administrators: %w", err)
	}
	if n > 0 {
		return nil, ErrAlreadyInitialized
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := model.Administrator{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	// The count above is advisory; InsertFirst closes the race between two
	// concurrent first-run requests.
	if err := s.store.InsertFirst(ctx, admin); err != nil {
		if errors.Is(err, driven.ErrNotEmpty) {
			return nil, ErrAlreadyInitialized
		}
		return nil, fmt.Errorf("insert administrator: %w", err)
	}

	slog.Info("administrator created", "username", admin.Username, "id", admin.ID)
	return &admin, nil
}

func validateSetupInput(username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	case len(username) > maxUsernameLength:
		return fmt.Errorf("%w: username exceeds %d characters", ErrInvalidInput, maxUsernameLength)
	case password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	case len(password) > maxPasswordBytes:
		return fmt.Errorf("%w: password exceeds %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}
