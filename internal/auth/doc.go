// Package auth holds the security primitives behind the admin panel:
// bcrypt password hashing, the two interchangeable session strategies
// (signed bearer tokens and signed, encrypted cookies), and double-submit
// CSRF tokens for HTML forms.
//
// A deployment picks exactly one session strategy at startup:
//
//	mgr, err := auth.NewSessionManager(auth.SessionConfig{
//	    Mode:   model.SessionModeCookie,
//	    Secret: secret,
//	})
//
// Both strategies report every verification failure as ErrUnauthenticated,
// so callers cannot tell a tampered credential from an absent one.
package auth
