package web

import (
	"errors"
	"net/http"

	"github.com/jakewray/portfolio/internal/adapter/driving/web/templates/pages"
	"github.com/jakewray/portfolio/internal/application"
	"github.com/jakewray/portfolio/internal/auth"
	"github.com/jakewray/portfolio/internal/domain/model"
)

// guard admits only requests carrying a valid session. The administrator is
// resolved once and stored in the request context; nothing is rendered
// before that succeeds.
//
// Rejections depend on what the browser can do next:
//   - token mode, plain navigation: the guard shell, which retries with the
//     stored bearer token
//   - token mode, a bearer token was sent but rejected: 401, so guard.js
//     can clear it
//   - otherwise: 303 to the login page
func (h *Handler) guard(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		noStore(w)

		admin, err := h.authenticate(r)
		if err == nil {
			next(w, r.WithContext(auth.NewContext(r.Context(), admin)))
			return
		}
		if !errors.Is(err, application.ErrUnauthenticated) {
			h.serverError(w, "failed to resolve session", err)
			return
		}

		tokenMode := h.sessions.Mode() == model.SessionModeToken
		hasBearer := r.Header.Get("Authorization") != ""
		switch {
		case tokenMode && !hasBearer && r.Method == http.MethodGet:
			h.render(w, r, "Admin", pages.GuardShell())
		case tokenMode && hasBearer:
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		default:
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		}
	})
}

// authenticate verifies the session credential and loads its administrator.
// Every credential failure is reported as application.ErrUnauthenticated.
func (h *Handler) authenticate(r *http.Request) (*model.Administrator, error) {
	id, err := h.sessions.Verify(r)
	if err != nil {
		return nil, err
	}
	return h.authSvc.Whoami(r.Context(), id)
}
