package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/jakewray/portfolio/internal/adapter/driving/web/templates"
	"github.com/jakewray/portfolio/internal/adapter/driving/web/templates/pages"
	vm "github.com/jakewray/portfolio/internal/adapter/driving/web/viewmodel"
	"github.com/jakewray/portfolio/internal/application"
	"github.com/jakewray/portfolio/internal/auth"
	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
	"github.com/jakewray/portfolio/internal/observability"
)

// dashboardPath is where a browser lands after signing in.
const dashboardPath = "/admin/dashboard"

// healthTimeout bounds the database ping behind /healthz.
const healthTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the admin auth API and
// the public showcase endpoints.
type Handler struct {
	setupSvc    *application.SetupService
	authSvc     *application.AuthService
	showcaseSvc *application.ShowcaseService
	sessions    auth.SessionManager
	csrf        auth.CSRF
	pinger      Pinger
	logger      *slog.Logger
	now         func() time.Time
}

// NewHandler creates a Handler with all required dependencies. pinger may be
// nil, in which case /healthz only reports that the process is serving.
func NewHandler(
	setupSvc *application.SetupService,
	authSvc *application.AuthService,
	showcaseSvc *application.ShowcaseService,
	sessions auth.SessionManager,
	csrf auth.CSRF,
	pinger Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		setupSvc:    setupSvc,
		authSvc:     authSvc,
		showcaseSvc: showcaseSvc,
		sessions:    sessions,
		csrf:        csrf,
		pinger:      pinger,
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterAPIRoutes registers the JSON and form endpoints on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /admin/setup/status", h.SetupStatus)
	mux.HandleFunc("POST /admin/setup", h.Setup)
	mux.HandleFunc("POST /admin/login", h.Login)
	mux.HandleFunc("POST /admin/logout", h.Logout)
	mux.Handle("GET /admin/me", h.requireSession(h.Me))
	mux.Handle("POST /admin/showcase/sync", h.requireSession(h.SyncShowcase))

	mux.HandleFunc("GET /api/showcase", h.ListShowcase)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", observability.Handler())
}

func (h *Handler) requireSession(fn http.HandlerFunc) http.Handler {
	return RequireSession(h.sessions, h.authSvc, h.logger, fn)
}

// SetupStatus reports whether first-run setup is still required.
func (h *Handler) SetupStatus(w http.ResponseWriter, r *http.Request) {
	required, err := h.setupSvc.Status(r.Context())
	if err != nil {
		h.logger.Error("failed to read setup status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SetupStatusResponse{Required: required})
}

// Setup creates the first administrator. It refuses once one exists and
// never signs the caller in.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	req, kind, err := readCredentials(w, r)
	if err != nil {
		observability.SetupAttemptsTotal.WithLabelValues(observability.OutcomeInvalid).Inc()
		writeBodyError(w, err)
		return
	}
	html := wantsHTML(r, kind)

	if !csrfOK(h.csrf, r, kind) {
		observability.SetupAttemptsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		h.renderForbidden(w, r, "Setup", pages.Setup(vm.SetupPage{
			CSRFToken: h.csrf.Token(w, r),
			Error:     vm.MsgCSRFExpired,
		}))
		return
	}

	admin, err := h.setupSvc.Setup(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		observability.SetupAttemptsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
		if html {
			http.Redirect(w, r, "/admin/login?setup=done", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, toSetupResponse(admin))

	case errors.Is(err, application.ErrInvalidInput):
		observability.SetupAttemptsTotal.WithLabelValues(observability.OutcomeInvalid).Inc()
		if html {
			http.Redirect(w, r, "/admin/setup?error=invalid", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusBadRequest, "username and password are required")

	case errors.Is(err, application.ErrAlreadyInitialized):
		observability.SetupAttemptsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		if html {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusForbidden, "already initialized")

	case errors.Is(err, driven.ErrUsernameTaken):
		observability.SetupAttemptsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		if html {
			http.Redirect(w, r, "/admin/setup?error=taken", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusConflict, "username taken")

	default:
		observability.SetupAttemptsTotal.WithLabelValues(observability.OutcomeError).Inc()
		h.logger.Error("setup failed", "error", err)
		if html {
			http.Redirect(w, r, "/admin/setup?error=unavailable", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Login verifies credentials and issues a session in the configured mode.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, kind, err := readCredentials(w, r)
	if err != nil {
		observability.LoginsTotal.WithLabelValues(observability.OutcomeInvalid).Inc()
		writeBodyError(w, err)
		return
	}
	html := wantsHTML(r, kind)

	if !csrfOK(h.csrf, r, kind) {
		observability.LoginsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		h.renderForbidden(w, r, "Sign in", pages.Login(vm.LoginPage{
			CSRFToken: h.csrf.Token(w, r),
			Error:     vm.MsgCSRFExpired,
		}))
		return
	}

	admin, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.loginFailed(w, r, html, err)
		return
	}

	cred, err := h.sessions.Issue(w, r, admin.ID)
	if err != nil {
		observability.LoginsTotal.WithLabelValues(observability.OutcomeError).Inc()
		h.logger.Error("failed to issue session", "id", admin.ID, "error", err)
		if html {
			http.Redirect(w, r, "/admin/login?error=unavailable", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	observability.LoginsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	h.logger.Info("admin signed in", "id", admin.ID, "mode", h.sessions.Mode())

	switch {
	case h.sessions.Mode() == model.SessionModeToken && html:
		h.render(w, r, http.StatusOK, "Signing in", pages.TokenHandoff(vm.TokenHandoff{
			Token: cred.Token,
			Next:  dashboardPath,
		}))
	case h.sessions.Mode() == model.SessionModeToken:
		writeJSON(w, http.StatusOK, TokenLoginResponse{
			Token:     cred.Token,
			ExpiresAt: formatTime(cred.ExpiresAt),
		})
	case html:
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
	default:
		writeJSON(w, http.StatusOK, CookieLoginResponse{
			Authenticated: true,
			Username:      admin.Username,
		})
	}
}

func (h *Handler) loginFailed(w http.ResponseWriter, r *http.Request, html bool, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		observability.LoginsTotal.WithLabelValues(observability.OutcomeInvalid).Inc()
		if html {
			http.Redirect(w, r, "/admin/login?error=missing", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusBadRequest, "username and password are required")

	case errors.Is(err, application.ErrInvalidCredentials):
		observability.LoginsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		if html {
			http.Redirect(w, r, "/admin/login?error=invalid", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized")

	default:
		observability.LoginsTotal.WithLabelValues(observability.OutcomeError).Inc()
		h.logger.Error("login failed", "error", err)
		if html {
			http.Redirect(w, r, "/admin/login?error=unavailable", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Logout clears the session cookie. Bearer tokens stay valid until expiry;
// browsers are told to discard theirs.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	kind, err := classifyBody(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	if kind == bodyForm {
		if err := parseForm(r); err != nil {
			writeBodyError(w, err)
			return
		}
		if !h.csrf.Valid(r) {
			writeError(w, http.StatusForbidden, "invalid csrf token")
			return
		}
	}

	if err := h.sessions.Revoke(w, r); err != nil {
		h.logger.Error("failed to revoke session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch {
	case !wantsHTML(r, kind):
		writeJSON(w, http.StatusOK, OKResponse{OK: true})
	case h.sessions.Mode() == model.SessionModeToken:
		h.render(w, r, http.StatusOK, "Signed out", pages.LoggedOut(true))
	default:
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
	}
}

// Me returns the signed-in administrator's username.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{Username: admin.Username})
}

// ListShowcase returns the synced GitHub repositories.
func (h *Handler) ListShowcase(w http.ResponseWriter, r *http.Request) {
	repos, err := h.showcaseSvc.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list showcase", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ShowcaseResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toShowcaseResponse(repo))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SyncShowcase refreshes the showcase from GitHub.
func (h *Handler) SyncShowcase(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	kind, err := classifyBody(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	if kind == bodyForm {
		if err := parseForm(r); err != nil {
			writeBodyError(w, err)
			return
		}
		if !h.csrf.Valid(r) {
			writeError(w, http.StatusForbidden, "invalid csrf token")
			return
		}
	}

	n, err := h.showcaseSvc.Sync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrShowcaseDisabled) {
			observability.ShowcaseSyncsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
			writeError(w, http.StatusServiceUnavailable, "showcase sync is not configured")
			return
		}
		observability.ShowcaseSyncsTotal.WithLabelValues(observability.OutcomeError).Inc()
		h.logger.Error("showcase sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	observability.ShowcaseSyncsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	writeJSON(w, http.StatusOK, SyncResponse{Synced: n})
}

// Health reports liveness and, when a pinger is configured, store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			resp.Status = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// render writes a full HTML page. Auth responses are never cached.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}

// renderForbidden answers a failed CSRF check on a form post by re-rendering
// the form with a usable token.
func (h *Handler) renderForbidden(w http.ResponseWriter, r *http.Request, title string, page templ.Component) {
	h.render(w, r, http.StatusForbidden, title, page)
}
