package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jakewray/portfolio/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SetupStatusResponse is the body of GET /admin/setup/status.
type SetupStatusResponse struct {
	Required bool `json:"required"`
}

// SetupResponse is the body returned after the administrator is created.
type SetupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// TokenLoginResponse is the JSON login result in token mode.
type TokenLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// CookieLoginResponse is the JSON login result in cookie mode. The session
// itself travels in Set-Cookie.
type CookieLoginResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
}

// MeResponse is the body of GET /admin/me.
type MeResponse struct {
	Username string `json:"username"`
}

// OKResponse acknowledges a request with no other result.
type OKResponse struct {
	OK bool `json:"ok"`
}

// SyncResponse reports how many repositories a showcase sync stored.
type SyncResponse struct {
	Synced int `json:"synced"`
}

// ShowcaseResponse is the JSON representation of a showcase repository.
type ShowcaseResponse struct {
	FullName    string   `json:"full_name"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Language    string   `json:"language"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	Topics      []string `json:"topics"`
	PushedAt    string   `json:"pushed_at"`
	SyncedAt    string   `json:"synced_at"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toSetupResponse(admin *model.Administrator) SetupResponse {
	return SetupResponse{
		ID:       admin.ID.String(),
		Username: admin.Username,
	}
}

func toShowcaseResponse(repo model.ShowcaseRepo) ShowcaseResponse {
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return ShowcaseResponse{
		FullName:    repo.FullName,
		Name:        repo.Name,
		Description: repo.Description,
		URL:         repo.HTMLURL,
		Language:    repo.Language,
		Stars:       repo.Stars,
		Forks:       repo.Forks,
		Topics:      topics,
		PushedAt:    formatTime(repo.PushedAt),
		SyncedAt:    formatTime(repo.SyncedAt),
	}
}

// formatTime renders t as RFC 3339 in UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
