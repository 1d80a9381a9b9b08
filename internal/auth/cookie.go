package auth

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/jakewray/portfolio/internal/domain/model"
)

const (
	// SessionCookieName is the cookie holding the admin session.
	SessionCookieName = "admin_session"

	sessionValueKey = "admin_id"
)

// Compile-time interface satisfaction check.
var _ SessionManager = (*CookieManager)(nil)

// CookieManager keeps the administrator id in a gorilla/sessions cookie that
// is HMAC-signed and AES-encrypted with keys derived from the session secret.
type CookieManager struct {
	store  *sessions.CookieStore
	maxAge time.Duration
	now    func() time.Time
}

// NewCookieManager creates a CookieManager. maxAge of zero issues
// browser-session cookies; secure should only be false for local HTTP.
func NewCookieManager(secret []byte, maxAge time.Duration, secure bool) (*CookieManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	// Separate keys for signing and encryption, both 32 bytes.
	hashKey := sha256.Sum256(append([]byte("auth:"), secret...))
	blockKey := sha256.Sum256(append([]byte("enc:"), secret...))

	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	seconds := int(maxAge / time.Second)
	if seconds > 0 {
		// Also bounds the timestamp securecookie embeds in the value.
		store.MaxAge(seconds)
	}

	return &CookieManager{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

// Mode returns SessionModeCookie.
func (m *CookieManager) Mode() model.SessionMode {
	return model.SessionModeCookie
}

// Issue writes a session cookie carrying adminID. A stale or tampered cookie
// on r is replaced.
func (m *CookieManager) Issue(w http.ResponseWriter, r *http.Request, adminID uuid.UUID) (model.SessionCredential, error) {
	session, _ := m.store.Get(r, SessionCookieName)
	session.Values[sessionValueKey] = adminID.String()

	if err := session.Save(r, w); err != nil {
		return model.SessionCredential{}, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	cred := model.SessionCredential{Subject: adminID}
	if m.maxAge > 0 {
		cred.ExpiresAt = m.now().Add(m.maxAge)
	}
	return cred, nil
}

// Verify decodes the session cookie on r. Absent, undecodable, and
// unparsable cookies all yield ErrUnauthenticated.
func (m *CookieManager) Verify(r *http.Request) (uuid.UUID, error) {
	session, err := m.store.Get(r, SessionCookieName)
	if err != nil {
		slog.Debug("session cookie rejected", "error", err)
		return uuid.Nil, ErrUnauthenticated
	}
	if session.IsNew {
		return uuid.Nil, ErrUnauthenticated
	}

	raw, ok := session.Values[sessionValueKey].(string)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// Revoke expires the session cookie on the client.
func (m *CookieManager) Revoke(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, SessionCookieName)
	delete(session.Values, sessionValueKey)
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session cookie: %w", err)
	}
	return nil
}
