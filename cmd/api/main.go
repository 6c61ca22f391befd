// cmd/api/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"smart-farming/internal/app"
	"smart-farming/internal/config"
	"smart-farming/internal/logging"
)

var BuildVersion = "dev" // diisi saat ldflags

func main() {
	_ = godotenv.Load() // .env opsional untuk lokal

	cfg := config.Load()
	logging.Init(cfg.SlogLevel(), cfg.LogFormat)
	slog.Info("starting", "app", cfg.AppName, "version", BuildVersion)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		slog.Error("init failed", "error", err)
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
