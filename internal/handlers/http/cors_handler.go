// internal/handlers/http/cors_handler.go
package http

import "net/http"

// PreflightHandler menjawab OPTIONS dengan 204; header CORS dipasang middleware.
func PreflightHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Max-Age", "600")
	w.WriteHeader(http.StatusNoContent)
}
