package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakewray/portfolio/internal/domain/model"
)

func newTestCookieManager(t *testing.T) *CookieManager {
	t.Helper()
	m, err := NewCookieManager(testSecret, 7*24*time.Hour, true)
	require.NoError(t, err)
	return m
}

// issueCookie runs Issue against a recorder and returns the session cookie.
func issueCookie(t *testing.T, m *CookieManager, id uuid.UUID) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := m.Issue(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil), id)
	require.NoError(t, err)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", SessionCookieName)
	return nil
}

func requestWithCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestCookieManager_IssueAndVerify(t *testing.T) {
	m := newTestCookieManager(t)
	id := uuid.New()

	cookie := issueCookie(t, m, id)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.NotContains(t, cookie.Value, id.String(), "cookie value must be encrypted")

	got, err := m.Verify(requestWithCookie(cookie))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestCookieManager_CredentialExpiry(t *testing.T) {
	m := newTestCookieManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	cred, err := m.Issue(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, cred.Token)
	assert.Equal(t, now.Add(7*24*time.Hour), cred.ExpiresAt)
}

func TestCookieManager_NoCookie(t *testing.T) {
	m := newTestCookieManager(t)

	_, err := m.Verify(requestWithCookie(nil))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCookieManager_Tampered(t *testing.T) {
	m := newTestCookieManager(t)
	cookie := issueCookie(t, m, uuid.New())

	tampered := *cookie
	tampered.Value = flipByte(cookie.Value, len(cookie.Value)/2)
	require.NotEqual(t, cookie.Value, tampered.Value)

	_, err := m.Verify(requestWithCookie(&tampered))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCookieManager_ForgedValue(t *testing.T) {
	m := newTestCookieManager(t)

	_, err := m.Verify(requestWithCookie(&http.Cookie{Name: SessionCookieName, Value: uuid.NewString()}))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCookieManager_OtherSecret(t *testing.T) {
	m := newTestCookieManager(t)
	other, err := NewCookieManager([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, true)
	require.NoError(t, err)

	cookie := issueCookie(t, other, uuid.New())

	_, err = m.Verify(requestWithCookie(cookie))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCookieManager_Revoke(t *testing.T) {
	m := newTestCookieManager(t)
	cookie := issueCookie(t, m, uuid.New())

	rec := httptest.NewRecorder()
	require.NoError(t, m.Revoke(rec, requestWithCookie(cookie)))

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared, "revoke must emit a clearing cookie")
	assert.Negative(t, cleared.MaxAge)

	// A second, unrelated issue on the same manager is unaffected.
	fresh := issueCookie(t, m, uuid.New())
	assert.Positive(t, fresh.MaxAge)
}

func TestCookieManager_RevokeWithoutCookie(t *testing.T) {
	m := newTestCookieManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Revoke(rec, requestWithCookie(nil)))
	assert.NotEmpty(t, rec.Header().Values("Set-Cookie"))
}

func TestCookieManager_Insecure(t *testing.T) {
	m, err := NewCookieManager(testSecret, 0, false)
	require.NoError(t, err)

	cookie := issueCookie(t, m, uuid.New())
	assert.False(t, cookie.Secure)
	assert.Zero(t, cookie.MaxAge)
	assert.Equal(t, model.SessionModeCookie, m.Mode())
}

func TestNewCookieManager_ShortSecret(t *testing.T) {
	_, err := NewCookieManager([]byte("short"), time.Hour, true)
	assert.ErrorIs(t, err, ErrSecretTooShort)
}
