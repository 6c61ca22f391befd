// internal/app/routes.go
package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"smart-farming/internal/config"
	hh "smart-farming/internal/handlers/http"
	"smart-farming/internal/middleware"
)

type routeDeps struct {
	Dashboard *hh.DashboardHandler
	Admin     *hh.AdminHandler
	Ready     http.HandlerFunc
}

// registerRoutes memasang semua route HTTP.
func registerRoutes(r *mux.Router, cfg *config.Config, d routeDeps) {
	r.Use(middleware.RequestID, middleware.CORS(cfg.AllowedOrigin))

	// --- no prefix ---
	r.HandleFunc("/healthz", hh.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/readyz", d.Ready).Methods(http.MethodGet)
	r.HandleFunc("/metrics", hh.MetricsHandler).Methods(http.MethodGet)
	r.HandleFunc("/login", hh.NewLoginHandler(hh.LoginConfig{
		User:      cfg.Admin.User,
		PassHash:  cfg.Admin.PassHash,
		JWTSecret: cfg.Admin.JWTSecret,
	})).Methods(http.MethodPost, http.MethodOptions)

	// --- /api prefix (dashboard per sesi) ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.APIKey(cfg.APIKey), middleware.Session(middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.AppEnv == "production",
	}))
	api.HandleFunc("/healthz", hh.HealthHandler).Methods(http.MethodGet)

	dash := d.Dashboard
	api.HandleFunc("/dashboard", dash.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/fields", dash.Fields).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/input", dash.PatchInput).Methods(http.MethodPatch)
	api.HandleFunc("/dashboard/analyze", dash.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/dashboard/weather/detect", dash.DetectWeather).Methods(http.MethodPost)
	api.HandleFunc("/dashboard/weather/place", dash.LookupPlace).Methods(http.MethodPost)
	api.HandleFunc("/dashboard/notifications", dash.Notifications).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/events", dash.Events).Methods(http.MethodGet)

	// Preflight catch-all
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(hh.PreflightHandler)

	// Admin (JWT protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminJWTAuth(cfg.Admin.JWTSecret))
	admin.HandleFunc("/sessions", d.Admin.ListSessions).Methods(http.MethodGet)
	admin.HandleFunc("/sessions/{id}", d.Admin.DeleteSession).Methods(http.MethodDelete)
	admin.HandleFunc("/analyses", d.Admin.ListAnalyses).Methods(http.MethodGet)
}
