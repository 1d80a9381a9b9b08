// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
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
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	setupSvc    *application.SetupService
	authSvc     *application.AuthService
	showcaseSvc *application.ShowcaseService
	sessions    auth.SessionManager
	csrf        auth.CSRF
	logger      *slog.Logger
	now         func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	setupSvc *application.SetupService,
	authSvc *application.AuthService,
	showcaseSvc *application.ShowcaseService,
	sessions auth.SessionManager,
	csrf auth.CSRF,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		setupSvc:    setupSvc,
		authSvc:     authSvc,
		showcaseSvc: showcaseSvc,
		sessions:    sessions,
		csrf:        csrf,
		logger:      logger,
		now:         time.Now,
	}
}

// Home renders the public landing page with the GitHub showcase.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	repos, err := h.showcaseSvc.List(r.Context())
	if err != nil {
		h.serverError(w, "failed to list showcase", err)
		return
	}

	h.render(w, r, "Portfolio", pages.Home(vm.HomePage{
		Repos: toShowcaseCards(repos, h.now()),
	}))
}

// Login renders the sign-in form. A browser that already holds a valid
// session cookie goes straight to the dashboard.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Mode() == model.SessionModeCookie {
		if _, err := h.authenticate(r); err == nil {
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
	}

	required, err := h.setupSvc.Status(r.Context())
	if err != nil {
		// The form still works; only the setup hint is lost.
		h.logger.Warn("failed to read setup status", "error", err)
	}

	q := r.URL.Query()
	noStore(w)
	h.render(w, r, "Sign in", pages.Login(vm.LoginPage{
		CSRFToken:     h.csrf.Token(w, r),
		Error:         loginErrors[q.Get("error")],
		Notice:        loginNotices[q.Get("setup")],
		SetupRequired: required,
	}))
}

// Setup renders the first-run form while no administrator exists.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	required, err := h.setupSvc.Status(r.Context())
	if err != nil {
		h.serverError(w, "failed to read setup status", err)
		return
	}
	if !required {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	noStore(w)
	h.render(w, r, "Setup", pages.Setup(vm.SetupPage{
		CSRFToken: h.csrf.Token(w, r),
		Error:     setupErrors[r.URL.Query().Get("error")],
	}))
}

// AdminIndex sends /admin to the dashboard.
func (h *Handler) AdminIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Dashboard renders the admin landing page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	repos, err := h.showcaseSvc.List(r.Context())
	if err != nil {
		h.serverError(w, "failed to list showcase", err)
		return
	}

	h.render(w, r, "Dashboard", pages.Dashboard(vm.DashboardPage{
		Nav:           h.nav(w, r, "dashboard"),
		ShowcaseCount: len(repos),
		LastSynced:    lastSynced(repos),
		SyncEnabled:   h.showcaseSvc.Enabled(),
	}))
}

// Composer renders the markdown composer.
func (h *Handler) Composer(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Composer", pages.Composer(vm.ComposerPage{
		Nav: h.nav(w, r, "composer"),
	}))
}

// ComposerPreview returns the composer source rendered as sanitized HTML.
// The request must carry the CSRF token.
func (h *Handler) ComposerPreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if !h.csrf.Valid(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Preview(RenderMarkdown(r.PostFormValue("markdown"))).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render preview", "error", err)
	}
}

// SyncPage renders the showcase sync manager.
func (h *Handler) SyncPage(w http.ResponseWriter, r *http.Request) {
	repos, err := h.showcaseSvc.List(r.Context())
	if err != nil {
		h.serverError(w, "failed to list showcase", err)
		return
	}

	q := r.URL.Query()
	h.render(w, r, "Showcase sync", pages.Sync(vm.SyncPage{
		Nav:         h.nav(w, r, "sync"),
		Repos:       toShowcaseCards(repos, h.now()),
		SyncEnabled: h.showcaseSvc.Enabled(),
		Notice:      syncNotices[q.Get("notice")],
		Error:       syncErrors[q.Get("error")],
	}))
}

// SyncPost runs a showcase sync and redirects back to the sync page.
func (h *Handler) SyncPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if !h.csrf.Valid(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	n, err := h.showcaseSvc.Sync(r.Context())
	switch {
	case err == nil:
		h.logger.Info("showcase synced", "repos", n)
		http.Redirect(w, r, "/admin/sync?notice=done", http.StatusSeeOther)
	case errors.Is(err, application.ErrShowcaseDisabled):
		http.Redirect(w, r, "/admin/sync?error=disabled", http.StatusSeeOther)
	default:
		h.logger.Error("showcase sync failed", "error", err)
		http.Redirect(w, r, "/admin/sync?error=failed", http.StatusSeeOther)
	}
}

// nav builds the admin header for the signed-in administrator. Only called
// behind the guard, so the context always carries one.
func (h *Handler) nav(w http.ResponseWriter, r *http.Request, active string) vm.AdminNav {
	nav := vm.AdminNav{
		CSRFToken: h.csrf.Token(w, r),
		Mode:      string(h.sessions.Mode()),
		Active:    active,
	}
	if admin, ok := auth.FromContext(r.Context()); ok {
		nav.Username = admin.Username
	}
	return nav
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
