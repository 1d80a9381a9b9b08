package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	// CSRFCookieName is the double-submit cookie read by admin.js.
	CSRFCookieName = "csrf_token"
	// CSRFFormField is the hidden form field carrying the token.
	CSRFFormField = "csrf_token"
	// CSRFHeader is the header fetch requests use instead of the form field.
	CSRFHeader = "X-CSRF-Token"

	csrfTokenBytes = 32
)

// CSRF implements double-submit tokens for form-encoded admin requests.
type CSRF struct {
	// Secure marks the cookie Secure; mirrors the session cookie setting.
	Secure bool
}

// Token ensures a CSRF cookie is set on the response and returns its value
// for embedding in a form. An existing cookie on r is reused.
func (c CSRF) Token(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token := generateToken()
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // admin.js copies it into X-CSRF-Token on fetch requests
		SameSite: http.SameSiteStrictMode,
		Secure:   c.Secure,
	})
	return token
}

// Valid checks that the token from the header or form field matches the
// cookie. The form must already be parsed for the field to be seen.
func (c CSRF) Valid(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.Header.Get(CSRFHeader)
	if token == "" {
		token = r.FormValue(CSRFFormField)
	}

	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) == 1
}

func generateToken() string {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: failed to generate random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}
