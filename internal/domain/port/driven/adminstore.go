package driven

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jakewray/portfolio/internal/domain/model"
)

// Sentinel errors returned by AdminStore implementations.
var (
	// ErrUsernameTaken indicates an administrator with the same username already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNotEmpty indicates InsertFirst found an existing administrator row.
	ErrNotEmpty = errors.New("users table is not empty")

	// ErrStoreUnavailable wraps transport and storage failures. Callers present
	// a generic error to clients and keep the wrapped detail for logs.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// AdminStore defines the driven port for administrator persistence.
// Lookups return (nil, nil) when no row matches; "not found" is never an error.
type AdminStore interface {
	// FindByUsername returns the administrator with the exact (case-sensitive) username.
	FindByUsername(ctx context.Context, username string) (*model.Administrator, error)

	// FindByID resolves a verified session subject back to its administrator.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Administrator, error)

	// Count returns the number of administrator rows.
	Count(ctx context.Context) (int, error)

	// Insert stores a new administrator. Returns ErrUsernameTaken on a unique
	// violation.
	Insert(ctx context.Context, admin model.Administrator) error

	// InsertFirst stores admin only if no administrator exists yet. The
	// emptiness check and the insert are atomic at the storage layer, so
	// concurrent first-run requests cannot both succeed. Returns ErrNotEmpty
	// when a row already exists.
	InsertFirst(ctx context.Context, admin model.Administrator) error
}
