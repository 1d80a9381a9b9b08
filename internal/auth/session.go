package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jakewray/portfolio/internal/domain/model"
)

// Sentinel errors shared by the session strategies and the password hasher.
var (
	// ErrUnauthenticated is returned for any missing, malformed, tampered, or
	// expired session credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSigningFailed indicates a credential could not be signed or encoded.
	ErrSigningFailed = errors.New("session signing failed")

	// ErrHashingFailed indicates bcrypt could not hash a password.
	ErrHashingFailed = errors.New("password hashing failed")

	// ErrSecretTooShort is returned when the session secret is below MinSecretLength.
	ErrSecretTooShort = fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
)

const (
	// MinSecretLength is the minimum accepted session secret size in bytes.
	MinSecretLength = 32

	// DefaultTokenTTL is the bearer token lifetime when none is configured.
	DefaultTokenTTL = 24 * time.Hour
)

// SessionManager issues, verifies, and revokes admin session credentials.
// Implementations are safe for concurrent use.
type SessionManager interface {
	// Mode reports which credential transport this manager uses.
	Mode() model.SessionMode

	// Issue mints a credential bound to adminID. Cookie managers write
	// Set-Cookie on w; token managers return the token in the credential.
	Issue(w http.ResponseWriter, r *http.Request, adminID uuid.UUID) (model.SessionCredential, error)

	// Verify resolves the credential presented on r to an administrator id,
	// or returns ErrUnauthenticated.
	Verify(r *http.Request) (uuid.UUID, error)

	// Revoke instructs the client to drop its credential. Bearer tokens are
	// not server-revocable, so the token manager treats this as a no-op.
	Revoke(w http.ResponseWriter, r *http.Request) error
}

// SessionConfig selects and parameterizes a SessionManager.
type SessionConfig struct {
	Mode   model.SessionMode
	Secret []byte

	// TokenTTL is the bearer token lifetime. Zero means DefaultTokenTTL.
	TokenTTL time.Duration

	// CookieMaxAge is the cookie lifetime. Zero yields a browser-session cookie.
	CookieMaxAge time.Duration

	// CookieSecure marks the session cookie Secure. Disable only for local HTTP.
	CookieSecure bool
}

// NewSessionManager builds the manager for cfg.Mode.
func NewSessionManager(cfg SessionConfig) (SessionManager, error) {
	switch cfg.Mode {
	case model.SessionModeToken:
		mgr, err := NewTokenManager(cfg.Secret, cfg.TokenTTL)
		if err != nil {
			return nil, err
		}
		return mgr, nil
	case model.SessionModeCookie:
		mgr, err := NewCookieManager(cfg.Secret, cfg.CookieMaxAge, cfg.CookieSecure)
		if err != nil {
			return nil, err
		}
		return mgr, nil
	default:
		return nil, fmt.Errorf("unknown session mode %q", cfg.Mode)
	}
}
