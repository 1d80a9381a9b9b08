// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// SessionMode mirrors model.SessionMode as a plain string so templates need
// not import the domain.
const (
	ModeCookie = "cookie"
	ModeToken  = "token"
)

// AdminNav is the header shared by every admin page.
type AdminNav struct {
	Username  string
	CSRFToken string
	Mode      string
	Active    string // "dashboard", "composer", or "sync"
}

// LoginPage holds the login form state. Error and Notice are fixed strings
// chosen server-side; request input is never echoed.
type LoginPage struct {
	CSRFToken     string
	Error         string
	Notice        string
	SetupRequired bool
}

// SetupPage holds the first-run form state.
type SetupPage struct {
	CSRFToken string
	Error     string
}

// DashboardPage is the admin landing page.
type DashboardPage struct {
	Nav           AdminNav
	ShowcaseCount int
	LastSynced    string // empty when never synced
	SyncEnabled   bool
}

// ComposerPage is the markdown composer with live preview.
type ComposerPage struct {
	Nav AdminNav
}

// SyncPage manages the GitHub showcase.
type SyncPage struct {
	Nav         AdminNav
	Repos       []ShowcaseCard
	SyncEnabled bool
	Notice      string
	Error       string
}

// HomePage is the public landing page.
type HomePage struct {
	Repos []ShowcaseCard
}

// ShowcaseCard is one repository in the public showcase.
type ShowcaseCard struct {
	Name        string
	FullName    string
	Description string
	URL         string
	Language    string
	Stars       int
	Forks       int
	Topics      []string
	PushedAgo   string
}

// TokenHandoff carries a freshly issued bearer token to admin.js, which
// moves it into localStorage and navigates to Next.
type TokenHandoff struct {
	Token string
	Next  string
}

// MsgCSRFExpired is shown when a form post fails the CSRF check.
const MsgCSRFExpired = "Your session form expired. Please try again."
