package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakewray/portfolio/internal/domain/model"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokenManager(t *testing.T, now time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, 24*time.Hour)
	require.NoError(t, err)
	m.now = func() time.Time { return now }
	return m
}

func bearerRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// flipByte changes the character at i to a different base64url character.
func flipByte(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestTokenManager(t, now)
	id := uuid.New()

	cred, err := m.Issue(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/login", nil), id)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Token)
	assert.Equal(t, id, cred.Subject)
	assert.Equal(t, now.Add(24*time.Hour), cred.ExpiresAt)

	got, err := m.Verify(bearerRequest(cred.Token))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenManager_Claims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestTokenManager(t, now)
	id := uuid.New()

	cred, err := m.IssueToken(id)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(cred.Token, claims)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "portfolio", claims.Issuer)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestTokenManager(t, issuedAt)
	id := uuid.New()

	cred, err := m.IssueToken(id)
	require.NoError(t, err)

	m.now = func() time.Time { return cred.ExpiresAt.Add(-time.Second) }
	got, err := m.VerifyToken(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	m.now = func() time.Time { return cred.ExpiresAt }
	_, err = m.VerifyToken(cred.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	m.now = func() time.Time { return cred.ExpiresAt.Add(time.Hour) }
	_, err = m.VerifyToken(cred.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokenManager_TamperedToken(t *testing.T) {
	m := newTestTokenManager(t, time.Now())

	cred, err := m.IssueToken(uuid.New())
	require.NoError(t, err)

	header, rest, _ := strings.Cut(cred.Token, ".")
	payload, _, _ := strings.Cut(rest, ".")

	// One byte changed in each segment: header, payload, signature (interior).
	positions := []int{
		len(header) / 2,
		len(header) + 1 + len(payload)/2,
		len(header) + 1 + len(payload) + 1 + 5,
	}
	for _, pos := range positions {
		tampered := flipByte(cred.Token, pos)
		require.NotEqual(t, cred.Token, tampered)

		_, err := m.VerifyToken(tampered)
		assert.ErrorIs(t, err, ErrUnauthenticated, "tampered at %d", pos)
	}
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// lowBitNeighbour swaps the character at i for the one whose 6-bit value
// differs only in the lowest bit.
func lowBitNeighbour(s string, i int) string {
	idx := strings.IndexByte(base64URLAlphabet, s[i])
	if idx < 0 {
		return s
	}
	b := []byte(s)
	b[i] = base64URLAlphabet[idx^1]
	return string(b)
}

func TestTokenManager_SingleCharacterTamperAnywhere(t *testing.T) {
	m := newTestTokenManager(t, time.Now())

	cred, err := m.IssueToken(uuid.New())
	require.NoError(t, err)

	last := len(cred.Token) - 1
	tampered := lowBitNeighbour(cred.Token, last)
	require.NotEqual(t, cred.Token, tampered)
	_, err = m.VerifyToken(tampered)
	require.ErrorIs(t, err, ErrUnauthenticated, "last signature character")

	for i := range len(cred.Token) {
		if cred.Token[i] == '.' {
			continue
		}
		tampered := lowBitNeighbour(cred.Token, i)
		_, err := m.VerifyToken(tampered)
		assert.ErrorIs(t, err, ErrUnauthenticated, "tampered at %d", i)
	}
}

func TestTokenManager_RejectsOtherKeysAndAlgorithms(t *testing.T) {
	m := newTestTokenManager(t, time.Now())
	id := uuid.New()

	other, err := NewTokenManager([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)
	foreign, err := other.IssueToken(id)
	require.NoError(t, err)

	_, err = m.VerifyToken(foreign.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		Issuer:    "portfolio",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.VerifyToken(unsigned)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = m.VerifyToken(hs512)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokenManager_RejectsBadClaims(t *testing.T) {
	m := newTestTokenManager(t, time.Now())

	sign := func(c jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testSecret)
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims jwt.RegisteredClaims
	}{
		{name: "missing exp", claims: jwt.RegisteredClaims{Subject: uuid.NewString(), Issuer: "portfolio"}},
		{name: "wrong issuer", claims: jwt.RegisteredClaims{Subject: uuid.NewString(), Issuer: "elsewhere", ExpiresAt: exp}},
		{name: "non-uuid subject", claims: jwt.RegisteredClaims{Subject: "1", Issuer: "portfolio", ExpiresAt: exp}},
		{name: "empty subject", claims: jwt.RegisteredClaims{Issuer: "portfolio", ExpiresAt: exp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.VerifyToken(sign(tt.claims))
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestTokenManager_VerifyHeaderForms(t *testing.T) {
	m := newTestTokenManager(t, time.Now())
	cred, err := m.IssueToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		wantOK bool
	}{
		{name: "bearer", header: "Bearer " + cred.Token, wantOK: true},
		{name: "lowercase scheme", header: "bearer " + cred.Token, wantOK: true},
		{name: "missing", header: "", wantOK: false},
		{name: "basic scheme", header: "Basic " + cred.Token, wantOK: false},
		{name: "no token", header: "Bearer ", wantOK: false},
		{name: "garbage", header: "Bearer not.a.jwt", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			_, err := m.Verify(r)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnauthenticated)
			}
		})
	}
}

func TestTokenManager_RevokeIsNoop(t *testing.T) {
	m := newTestTokenManager(t, time.Now())
	rec := httptest.NewRecorder()

	require.NoError(t, m.Revoke(rec, httptest.NewRequest(http.MethodPost, "/admin/logout", nil)))
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
	assert.Equal(t, model.SessionModeToken, m.Mode())
}

func TestNewTokenManager_ShortSecret(t *testing.T) {
	_, err := NewTokenManager([]byte("short"), time.Hour)
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	m, err := NewTokenManager(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, m.ttl)
}
