package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	sqliteadapter "github.com/jakewray/portfolio/internal/adapter/driven/sqlite"
	"github.com/jakewray/portfolio/internal/adapter/driving/web"
	"github.com/jakewray/portfolio/internal/application"
	"github.com/jakewray/portfolio/internal/auth"
	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeGitHub struct {
	repos []model.ShowcaseRepo
}

func (f *fakeGitHub) FetchPublicRepos(_ context.Context, _ string) ([]model.ShowcaseRepo, error) {
	return f.repos, nil
}

type fixture struct {
	handler  http.Handler
	setup    *application.SetupService
	sessions auth.SessionManager
}

func newFixture(t *testing.T, mode model.SessionMode, github driven.GitHubClient) *fixture {
	t.Helper()

	db, err := sqliteadapter.NewDB(context.Background(), filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqliteadapter.RunMigrations(db.Writer))

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	sessions, err := auth.NewSessionManager(auth.SessionConfig{
		Mode:         mode,
		Secret:       []byte(testSecret),
		TokenTTL:     time.Hour,
		CookieMaxAge: time.Hour,
	})
	require.NoError(t, err)

	store := sqliteadapter.NewAdminRepo(db)
	setup := application.NewSetupService(store, hasher)
	provider := application.NewGitHubClientProvider(github, "jake")

	h := web.NewHandler(
		setup,
		application.NewAuthService(store, hasher),
		application.NewShowcaseService(provider, sqliteadapter.NewShowcaseRepo(db)),
		sessions,
		auth.CSRF{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, h)

	return &fixture{handler: mux, setup: setup, sessions: sessions}
}

// signIn creates the administrator and returns a request decorator that
// attaches a valid session credential.
func (f *fixture) signIn(t *testing.T) func(*http.Request) {
	t.Helper()

	admin, err := f.setup.Setup(context.Background(), "jake", "s3cret")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	cred, err := f.sessions.Issue(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil), admin.ID)
	require.NoError(t, err)

	if f.sessions.Mode() == model.SessionModeToken {
		return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+cred.Token) }
	}

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func (f *fixture) get(path string, decorate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, d := range decorate {
		d(req)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postForm(path string, values url.Values, decorate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, d := range decorate {
		d(req)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func withCSRF(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "tok"})
	r.Header.Set(auth.CSRFHeader, "tok")
}

// --- Public pages ---

func TestHome_EmptyShowcase(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	rec := f.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GitHub Showcase")
	assert.Contains(t, rec.Body.String(), "Nothing to show yet.")
}

func TestLoginPage_SetsCSRFCookieAndShowsSetupHint(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	rec := f.get("/admin/login")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var csrf *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CSRFCookieName {
			csrf = c
		}
	}
	require.NotNil(t, csrf)
	assert.Contains(t, rec.Body.String(), `value="`+csrf.Value+`"`)
	assert.Contains(t, rec.Body.String(), `href="/admin/setup"`)
}

func TestLoginPage_MessagesComeFromFixedCodes(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	tests := []struct {
		query string
		want  string
	}{
		{"?error=invalid", "Invalid username or password."},
		{"?error=missing", "Enter both a username and a password."},
		{"?setup=done", "Administrator created. Sign in to continue."},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := f.get("/admin/login" + tt.query)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	rec := f.get("/admin/login?error=" + url.QueryEscape("<script>alert(1)</script>"))
	assert.NotContains(t, rec.Body.String(), "alert(1)")
	assert.NotContains(t, rec.Body.String(), `role="alert"`)
}

func TestLoginPage_CookieSessionSkipsForm(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)
	session := f.signIn(t)

	rec := f.get("/admin/login", session)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}

func TestSetupPage_OnlyWhileRequired(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	rec := f.get("/admin/setup")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/setup"`)

	f.signIn(t)

	rec = f.get("/admin/setup")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	for _, name := range []string{"admin.js", "guard.js", "portfolio.css"} {
		rec := f.get("/static/" + name)
		assert.Equal(t, http.StatusOK, rec.Code, name)
	}
}

// --- Guard ---

func TestGuard_CookieModeRedirectsAnonymous(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	for _, path := range []string{"/admin/dashboard", "/admin/composer", "/admin/sync"} {
		rec := f.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"), path)
		assert.NotContains(t, rec.Body.String(), "Signed in as", path)
	}
}

func TestGuard_CookieModeRejectsTamperedCookie(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)
	f.signIn(t)

	rec := f.get("/admin/dashboard", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "forged"})
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestGuard_CookieModeIgnoresStrayAuthorization(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	rec := f.get("/admin/dashboard", func(r *http.Request) {
		r.Header.Set("Authorization", "Basic amFrZTpzM2NyZXQ=")
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestGuard_CookieModeRendersForSession(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)
	session := f.signIn(t)

	rec := f.get("/admin/dashboard", session)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "Signed in as <strong>jake</strong>")
	assert.Contains(t, rec.Body.String(), "Never synced.")
}

func TestGuard_TokenModeServesShellToPlainNavigation(t *testing.T) {
	f := newFixture(t, model.SessionModeToken, nil)

	rec := f.get("/admin/dashboard")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `src="/static/guard.js"`)
	assert.NotContains(t, rec.Body.String(), "Signed in as")
}

func TestGuard_TokenModeRejectsBadBearer(t *testing.T) {
	f := newFixture(t, model.SessionModeToken, nil)
	f.signIn(t)

	rec := f.get("/admin/dashboard", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-jwt")
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuard_TokenModeRendersForBearer(t *testing.T) {
	f := newFixture(t, model.SessionModeToken, nil)
	session := f.signIn(t)

	rec := f.get("/admin/composer", session)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="composer"`)
	assert.Contains(t, rec.Body.String(), `data-session-mode="token"`)
}

func TestGuard_DeletedAdministratorIsAnonymous(t *testing.T) {
	f := newFixture(t, model.SessionModeToken, nil)
	f.signIn(t)

	mgr, err := auth.NewTokenManager([]byte(testSecret), time.Hour)
	require.NoError(t, err)
	cred, err := mgr.IssueToken(uuid.New())
	require.NoError(t, err)

	rec := f.get("/admin/dashboard", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+cred.Token)
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminIndexRedirects(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	for _, path := range []string{"/admin", "/admin/"} {
		rec := f.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"), path)
	}
}

// --- Composer ---

func TestComposerPreview_RendersSanitizedMarkdown(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)
	session := f.signIn(t)

	rec := f.postForm("/admin/composer/preview",
		url.Values{"markdown": {"**hi** <script>alert(1)</script>"}},
		session, withCSRF)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>hi</strong>")
	assert.NotContains(t, rec.Body.String(), "<script>")
}

func TestComposerPreview_RequiresCSRF(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)
	session := f.signIn(t)

	rec := f.postForm("/admin/composer/preview", url.Values{"markdown": {"hi"}}, session)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestComposerPreview_RequiresSession(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)

	rec := f.postForm("/admin/composer/preview", url.Values{"markdown": {"hi"}}, withCSRF)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

// --- Showcase sync ---

func TestSyncPost_Disabled(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, nil)
	session := f.signIn(t)

	rec := f.postForm("/admin/sync", url.Values{}, session, withCSRF)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/sync?error=disabled", rec.Header().Get("Location"))

	page := f.get(rec.Header().Get("Location"), session)
	assert.Contains(t, page.Body.String(), "GitHub sync is not configured.")
}

func TestSyncPost_StoresRepos(t *testing.T) {
	gh := &fakeGitHub{repos: []model.ShowcaseRepo{
		{ID: 7, FullName: "jake/portfolio", Name: "portfolio", HTMLURL: "https://github.com/jake/portfolio", Stars: 5},
	}}
	f := newFixture(t, model.SessionModeCookie, gh)
	session := f.signIn(t)

	rec := f.postForm("/admin/sync", url.Values{}, session, withCSRF)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/sync?notice=done", rec.Header().Get("Location"))

	page := f.get("/admin/sync?notice=done", session)
	assert.Contains(t, page.Body.String(), "Showcase synced from GitHub.")
	assert.Contains(t, page.Body.String(), "jake/portfolio")

	home := f.get("/")
	assert.Contains(t, home.Body.String(), `href="https://github.com/jake/portfolio"`)
}

func TestSyncPost_RequiresCSRF(t *testing.T) {
	f := newFixture(t, model.SessionModeCookie, &fakeGitHub{})
	session := f.signIn(t)

	rec := f.postForm("/admin/sync", url.Values{}, session)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
