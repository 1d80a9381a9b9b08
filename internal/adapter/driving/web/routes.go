package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Admin pages live under /admin and pass through the session guard.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Public pages.
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /admin/login", h.Login)
	mux.HandleFunc("GET /admin/setup", h.Setup)

	// Guarded admin pages.
	mux.HandleFunc("GET /admin", h.AdminIndex)
	mux.HandleFunc("GET /admin/{$}", h.AdminIndex)
	mux.Handle("GET /admin/dashboard", h.guard(h.Dashboard))
	mux.Handle("GET /admin/composer", h.guard(h.Composer))
	mux.Handle("POST /admin/composer/preview", h.guard(h.ComposerPreview))
	mux.Handle("GET /admin/sync", h.guard(h.SyncPage))
	mux.Handle("POST /admin/sync", h.guard(h.SyncPost))
}
