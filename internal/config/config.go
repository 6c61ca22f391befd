// internal/config/config.go
// Loader konfigurasi dari environment variables
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	AppName   string
	AppEnv    string
	AppPort   string
	MockPort  string
	LogLevel  string
	LogFormat string

	APIKey        string // opsional: X-API-Key untuk /api
	AllowedOrigin string

	Predict struct {
		BaseURL       string
		RecommendURL  string
		YieldURL      string
		FertilizerURL string
		Timeout       time.Duration
	}

	Weather struct {
		APIKey  string // OPENWEATHER_API_KEY, disuntik saat deploy
		BaseURL string
		Timeout time.Duration
	}

	Session struct {
		Secret     string
		TTL        time.Duration
		CookieName string
	}

	Admin struct {
		User      string
		PassHash  string // bcrypt
		JWTSecret string
	}

	DB struct {
		Driver  string // mysql | sqlite
		DSN     string
		MaxOpen int
		MaxIdle int
	}

	LLM struct {
		APIKey  string
		APIBase string
		Model   string
	}
}

func Load() *Config {
	c := &Config{}
	c.AppName = getEnv("APP_NAME", "smart-farming")
	c.AppEnv = getEnv("APP_ENV", "development")
	c.AppPort = getEnv("APP_PORT", "8080")
	c.MockPort = getEnv("MOCK_PORT", "5000")
	c.LogLevel = getEnv("LOG_LEVEL", "debug")
	c.LogFormat = getEnv("LOG_FORMAT", "json")
	c.APIKey = getEnv("API_KEY", "")
	c.AllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", "*")

	// Prediction backend (recommend / predict_yield / optimize_fertilizer)
	c.Predict.BaseURL = strings.TrimRight(getEnv("PREDICT_BASE_URL", "http://localhost:5000"), "/")
	c.Predict.RecommendURL = getEnv("PREDICT_RECOMMEND_URL", c.Predict.BaseURL+"/recommend")
	c.Predict.YieldURL = getEnv("PREDICT_YIELD_URL", c.Predict.BaseURL+"/predict_yield")
	c.Predict.FertilizerURL = getEnv("PREDICT_FERTILIZER_URL", c.Predict.BaseURL+"/optimize_fertilizer")
	c.Predict.Timeout = getEnvDuration("PREDICT_TIMEOUT", 30*time.Second)

	c.Weather.APIKey = getEnv("OPENWEATHER_API_KEY", "")
	c.Weather.BaseURL = strings.TrimRight(getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"), "/")
	c.Weather.Timeout = getEnvDuration("OPENWEATHER_TIMEOUT", 10*time.Second)

	c.Session.Secret = getEnv("SESSION_SECRET", "")
	c.Session.TTL = getEnvDuration("SESSION_TTL", 2*time.Hour)
	c.Session.CookieName = getEnv("SESSION_COOKIE", "farm_session")

	c.Admin.User = getEnv("ADMIN_USER", "")
	c.Admin.PassHash = getEnv("ADMIN_PASS_HASH", "")
	c.Admin.JWTSecret = getEnv("ADMIN_JWT_SECRET", "")

	c.DB.Driver = getEnv("DB_DRIVER", "mysql")
	c.DB.DSN = getEnv("DB_DSN", "")
	c.DB.MaxOpen = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	c.DB.MaxIdle = getEnvInt("DB_MAX_IDLE_CONNS", 5)

	// LLM / OpenAI (hanya dipakai mock-predictor untuk teks rekomendasi pupuk)
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", "")
	c.LLM.APIBase = getEnv("OPENAI_API_BASE", "")
	c.LLM.Model = getEnv("OPENAI_MODEL", "gpt-4o-mini")

	if c.Weather.APIKey == "" {
		slog.Warn("OPENWEATHER_API_KEY is not set, weather will run in fallback mode")
	}

	return c
}

// SlogLevel memetakan LOG_LEVEL ke slog.Level (default info).
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		_, err := fmt.Sscanf(v, "%d", &i)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
