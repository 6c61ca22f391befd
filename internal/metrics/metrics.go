// internal/metrics/metrics.go
// Metrik Prometheus untuk dashboard: submit analisis, panggilan remote, sumber cuaca.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AppUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "farm_app_up",
		Help: "1 if the app is up",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farm_analysis_submissions_total",
		Help: "Analysis submissions by outcome (ok, failed, rejected).",
	}, []string{"outcome"})

	InFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "farm_analysis_in_flight",
		Help: "Sessions whose busy flag is currently set.",
	})

	RemoteCalls = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farm_remote_call_seconds",
		Help:    "Latency of prediction service calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "outcome"})

	WeatherReadings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farm_weather_readings_total",
		Help: "Weather readings published, by source (live, fallback).",
	}, []string{"source"})

	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "farm_sessions_active",
		Help: "Dashboard sessions currently held in memory.",
	})
)

// ObserveRemoteCall mencatat durasi satu panggilan ke layanan prediksi.
func ObserveRemoteCall(service string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RemoteCalls.WithLabelValues(service, outcome).Observe(time.Since(start).Seconds())
}
