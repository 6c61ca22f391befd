// cmd/mock-predictor/main.go
// Backend prediksi tiruan (recommend / predict_yield / optimize_fertilizer / weather)
// untuk pengembangan lokal. Bukan untuk produksi.
//
// Usage: mock-predictor [--port 5000] [--debug]
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"smart-farming/internal/config"
	"smart-farming/internal/llm"
	"smart-farming/internal/logging"
	"smart-farming/internal/mockpredict"
	"smart-farming/pkg/weather"
)

var (
	port  string
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "mock-predictor",
	Short: "Serve canned crop, yield and fertilizer answers on the prediction API",
	Long: `Stands in for the external prediction backend. /recommend and /predict_yield
return canned values (marked with the X-Mock header); /optimize_fertilizer applies
the nutrient deficit rule and asks the LLM for guidance text when OPENAI_API_KEY is set.`,
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&port, "port", "", "listen port (default MOCK_PORT or 5000)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	level := cfg.SlogLevel()
	if debug {
		level = slog.LevelDebug
	}
	logging.Init(level, cfg.LogFormat)
	log := logging.New("mock-predictor")

	if port == "" {
		port = cfg.MockPort
	}

	var advisor mockpredict.Advisor
	if guide, err := llm.NewGuide(cfg.LLM.APIKey, cfg.LLM.APIBase, cfg.LLM.Model); err != nil {
		log.Warn("fertilizer guidance uses template text", "reason", err)
	} else {
		advisor = guide
		log.Info("fertilizer guidance via llm", "model", guide.Model())
	}
	wx := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mockpredict.New(advisor, wx, log).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("mock predictor running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		log.Error("listen", "error", err)
		return err
	case <-cmd.Context().Done():
	}

	log.Info("shutting down mock predictor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
