package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionMode selects how session credentials travel between browser and server.
type SessionMode string

const (
	// SessionModeCookie stores the administrator id in a signed, encrypted cookie.
	SessionModeCookie SessionMode = "cookie"
	// SessionModeToken returns a signed bearer token in the response body.
	SessionModeToken SessionMode = "token"
)

// Valid reports whether m is one of the known session modes.
func (m SessionMode) Valid() bool {
	return m == SessionModeCookie || m == SessionModeToken
}

// SessionCredential describes a freshly issued session. Token is empty in
// cookie mode, where the credential is delivered via Set-Cookie instead.
type SessionCredential struct {
	Subject   uuid.UUID
	Token     string
	ExpiresAt time.Time
}
