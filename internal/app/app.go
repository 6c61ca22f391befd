// internal/app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"smart-farming/internal/config"
	"smart-farming/internal/dashboard"
	hh "smart-farming/internal/handlers/http"
	"smart-farming/internal/logging"
	"smart-farming/internal/metrics"
	"smart-farming/internal/predict"
	mysqlrepo "smart-farming/internal/repositories/mysql"
	"smart-farming/internal/util"
	"smart-farming/pkg/db"
	"smart-farming/pkg/weather"
)

// Deps adalah dependency eksternal App. Field nil diisi dari config oleh Build.
type Deps struct {
	Analyzer dashboard.Analyzer
	Weather  dashboard.WeatherSource
	DB       *sql.DB // opsional: log audit analisis
	Clock    util.Clock
}

// App menampung router utama dan registri sesi dashboard
type App struct {
	Router   *mux.Router
	Sessions *dashboard.Sessions
	DB       *sql.DB

	cfg *config.Config
	log *slog.Logger
}

// Build membuat dependency dari config (client prediksi, client cuaca, DB
// opsional) lalu memanggil New.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.New("app")
	deps := Deps{
		Analyzer: predict.NewClient(predict.Endpoints{
			Recommend:  cfg.Predict.RecommendURL,
			Yield:      cfg.Predict.YieldURL,
			Fertilizer: cfg.Predict.FertilizerURL,
		}, cfg.Predict.Timeout),
		Weather: weather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout),
	}

	if cfg.DB.DSN != "" {
		conn, err := db.Open(ctx, db.Options{
			Driver:  cfg.DB.Driver,
			DSN:     cfg.DB.DSN,
			MaxOpen: cfg.DB.MaxOpen,
			MaxIdle: cfg.DB.MaxIdle,
		})
		if err != nil {
			// log audit opsional; dashboard tetap jalan tanpa DB
			log.Error("analysis log disabled", "driver", cfg.DB.Driver, "error", err)
		} else {
			deps.DB = conn
		}
	} else {
		log.Warn("DB_DSN empty; analysis log disabled")
	}

	return New(ctx, cfg, deps)
}

// New merakit sesi dashboard + semua routes
func New(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	log := logging.New("app")
	dd := dashboard.Deps{
		Analyzer: deps.Analyzer,
		Weather:  deps.Weather,
		Clock:    deps.Clock,
		Logger:   logging.New("dashboard"),
	}

	var analyses hh.AnalysisLister
	var pinger hh.Pinger
	if deps.DB != nil {
		repo := &mysqlrepo.AnalysisRepo{DB: deps.DB}
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		dd.Recorder = repo
		analyses = repo
		pinger = deps.DB
	}

	sessions := dashboard.NewSessions(dd, cfg.Session.TTL)
	r := mux.NewRouter()
	registerRoutes(r, cfg, routeDeps{
		Dashboard: &hh.DashboardHandler{Sessions: sessions, Log: logging.New("http")},
		Admin:     &hh.AdminHandler{Sessions: sessions, Analyses: analyses},
		Ready:     hh.NewReadyHandler(pinger),
	})

	metrics.AppUp.Set(1)
	log.Info("app ready", "predict", cfg.Predict.BaseURL, "weather_live", cfg.Weather.APIKey != "", "analysis_log", deps.DB != nil)
	return &App{Router: r, Sessions: sessions, DB: deps.DB, cfg: cfg, log: log}, nil
}

// Run menjalankan server HTTP + janitor sesi sampai ctx selesai, lalu shutdown.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        ":" + a.cfg.AppPort,
		Handler:     a.Router,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout 0: stream SSE berumur panjang
		IdleTimeout: 60 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go a.Sessions.Run(janitorCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("API running", "addr", srv.Addr, "env", a.cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	metrics.AppUp.Set(0)
	if a.DB != nil {
		a.DB.Close()
	}
	return err
}
