// internal/handlers/http/metrics_handler.go
// Handler untuk metrics Prometheus

package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var metricsHandler = promhttp.Handler()

func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	metricsHandler.ServeHTTP(w, r)
}
