package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AdminStore = (*AdminRepo)(nil)

// AdminRepo is the SQLite implementation of the AdminStore port interface.
type AdminRepo struct {
	db *DB
}

// NewAdminRepo creates a new AdminRepo backed by the given DB.
func NewAdminRepo(db *DB) *AdminRepo {
	return &AdminRepo{db: db}
}

const adminColumns = `id, username, password_hash, created_at`

// FindByUsername returns the administrator with the exact username, or
// (nil, nil) when none exists. SQLite's = on TEXT is case-sensitive.
func (r *AdminRepo) FindByUsername(ctx context.Context, username string) (*model.Administrator, error) {
	const query = `SELECT ` + adminColumns + ` FROM users WHERE username = ?`
	return r.findOne(ctx, query, username)
}

// FindByID returns the administrator with the given id, or (nil, nil).
func (r *AdminRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Administrator, error) {
	const query = `SELECT ` + adminColumns + ` FROM users WHERE id = ?`
	return r.findOne(ctx, query, id.String())
}

// Count returns the number of administrators.
func (r *AdminRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, storeErr("count users", err)
	}
	return n, nil
}

// Insert stores a new administrator.
func (r *AdminRepo) Insert(ctx context.Context, admin model.Administrator) error {
	const query = `INSERT INTO users (` + adminColumns + `) VALUES (?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		admin.ID.String(), admin.Username, admin.PasswordHash, formatTime(admin.CreatedAt))
	if err != nil {
		return insertErr(err)
	}
	return nil
}

// InsertFirst stores admin only when the users table is empty. The check and
// the insert are one statement, so SQLite's write lock makes them atomic.
func (r *AdminRepo) InsertFirst(ctx context.Context, admin model.Administrator) error {
	const query = `
		INSERT INTO users (` + adminColumns + `)
		SELECT ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM users)`

	res, err := r.db.Writer.ExecContext(ctx, query,
		admin.ID.String(), admin.Username, admin.PasswordHash, formatTime(admin.CreatedAt))
	if err != nil {
		return insertErr(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("insert first user", err)
	}
	if n == 0 {
		return driven.ErrNotEmpty
	}
	return nil
}

func (r *AdminRepo) findOne(ctx context.Context, query string, arg any) (*model.Administrator, error) {
	var (
		admin     model.Administrator
		id        string
		createdAt string
	)

	err := r.db.Reader.QueryRowContext(ctx, query, arg).Scan(&id, &admin.Username, &admin.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}

	admin.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, storeErr("parse user id", err)
	}
	admin.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, storeErr("parse created_at", err)
	}

	return &admin, nil
}

// usernameViolation is how SQLite reports the UNIQUE on users.username.
const usernameViolation = "UNIQUE constraint failed: users.username"

// insertErr maps a unique violation on users.username to ErrUsernameTaken.
// Any other constraint failure, including a primary key collision, is a
// storage error.
func insertErr(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) &&
		sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), usernameViolation) {
		return driven.ErrUsernameTaken
	}
	return storeErr("insert user", err)
}

// storeErr marks err as a storage failure while keeping its detail for logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", driven.ErrStoreUnavailable, op, err)
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts RFC 3339 as written by formatTime, plus SQLite's
// CURRENT_TIMESTAMP layout.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
