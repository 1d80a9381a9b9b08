package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AdminStore = (*AdminRepo)(nil)

// bootstrapLockKey is the pg_advisory_xact_lock key that serializes
// InsertFirst across connections and replicas.
const bootstrapLockKey int64 = 0x706f7274666f6c69 // "portfoli"

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// usernameConstraint is the name Postgres gives the UNIQUE on users.username.
const usernameConstraint = "users_username_key"

// AdminRepo is the PostgreSQL implementation of the AdminStore port interface.
type AdminRepo struct {
	db *DB
}

// NewAdminRepo creates a new AdminRepo backed by the given DB.
func NewAdminRepo(db *DB) *AdminRepo {
	return &AdminRepo{db: db}
}

// FindByUsername returns the administrator with the exact username, or (nil, nil).
func (r *AdminRepo) FindByUsername(ctx context.Context, username string) (*model.Administrator, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username)
}

// FindByID returns the administrator with the given id, or (nil, nil).
func (r *AdminRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Administrator, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id)
}

// Count returns the number of administrators.
func (r *AdminRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, storeErr("count users", err)
	}
	return n, nil
}

// Insert stores a new administrator.
func (r *AdminRepo) Insert(ctx context.Context, admin model.Administrator) error {
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt,
	)
	if err != nil {
		return insertErr(err)
	}
	return nil
}

// InsertFirst stores admin only when the users table is empty. A
// transaction-scoped advisory lock makes the emptiness check and the insert
// atomic with respect to other InsertFirst calls.
func (r *AdminRepo) InsertFirst(ctx context.Context, admin model.Administrator) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin insert first user", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockKey); err != nil {
		return storeErr("acquire bootstrap lock", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return storeErr("check users empty", err)
	}
	if exists {
		return driven.ErrNotEmpty
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt,
	)
	if err != nil {
		return insertErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit insert first user", err)
	}
	return nil
}

func (r *AdminRepo) findOne(ctx context.Context, query string, arg any) (*model.Administrator, error) {
	var admin model.Administrator
	err := r.db.pool.QueryRow(ctx, query, arg).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return &admin, nil
}

func insertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == usernameConstraint {
		return driven.ErrUsernameTaken
	}
	return storeErr("insert user", err)
}

// storeErr marks err as a storage failure while keeping its detail for logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", driven.ErrStoreUnavailable, op, err)
}
