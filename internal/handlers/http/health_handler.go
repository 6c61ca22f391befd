// internal/handlers/http/health_handler.go
// Handler sederhana untuk health & readiness check

package http

import (
	"context"
	"net/http"
	"time"
)

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewReadyHandler reports 503 while the optional analysis log is unreachable.
// A nil db means the log is disabled and the service is ready.
func NewReadyHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"status": "ok", "analysis_log": "disabled"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"status": "unavailable", "analysis_log": err.Error(),
				})
				return
			}
			resp["analysis_log"] = "ok"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
