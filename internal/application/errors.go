package application

import (
	"errors"

	"github.com/jakewray/portfolio/internal/auth"
)

// Sentinel errors returned by the application services. Adapters map them
// to transport status codes with errors.Is.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAlreadyInitialized is returned by Setup once an administrator exists.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrInvalidInput indicates missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrShowcaseDisabled is returned by Sync when no GitHub account is configured.
	ErrShowcaseDisabled = errors.New("showcase sync is not configured")

	// ErrUnauthenticated is the session verifier's rejection, re-exported so
	// adapters need not import auth to classify service errors.
	ErrUnauthenticated = auth.ErrUnauthenticated
)
