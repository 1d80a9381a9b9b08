package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jakewray/portfolio/internal/domain/model"
)

const (
	// tokenIssuer is written to and required in the iss claim.
	tokenIssuer = "portfolio"

	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer"
)

// Compile-time interface satisfaction check.
var _ SessionManager = (*TokenManager)(nil)

// TokenManager issues and verifies HS256-signed JWT bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret. A zero ttl
// falls back to DefaultTokenTTL.
func NewTokenManager(secret []byte, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenManager{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Mode returns SessionModeToken.
func (m *TokenManager) Mode() model.SessionMode {
	return model.SessionModeToken
}

// Issue signs a token for adminID expiring after the configured TTL.
// The response writer is not touched; the caller delivers the token.
func (m *TokenManager) Issue(_ http.ResponseWriter, _ *http.Request, adminID uuid.UUID) (model.SessionCredential, error) {
	return m.IssueToken(adminID)
}

// IssueToken signs a token for adminID.
func (m *TokenManager) IssueToken(adminID uuid.UUID) (model.SessionCredential, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return model.SessionCredential{}, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	return model.SessionCredential{
		Subject:   adminID,
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify reads the bearer token from the Authorization header.
func (m *TokenManager) Verify(r *http.Request) (uuid.UUID, error) {
	token, ok := bearerToken(r)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	return m.VerifyToken(token)
}

// VerifyToken checks the signature, algorithm, issuer, and expiry of
// tokenString and returns its subject. Segments are decoded strictly so
// non-zero trailing bits in the last character are not ignored.
func (m *TokenManager) VerifyToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		slog.Debug("bearer token rejected", "error", err)
		return uuid.Nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		slog.Debug("bearer token subject is not a uuid")
		return uuid.Nil, ErrUnauthenticated
	}

	return id, nil
}

// Revoke is a no-op: tokens carry their own expiry and there is no
// revocation list.
func (m *TokenManager) Revoke(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(authorizationHeader), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
