// internal/handlers/http/login_handler.go
package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"smart-farming/internal/middleware"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // epoch seconds
	User      string `json:"user"`
	Role      string `json:"role"`
}

type LoginConfig struct {
	User      string
	PassHash  string // bcrypt
	JWTSecret string
}

func NewLoginHandler(cfg LoginConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginReq
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if cfg.User == "" || cfg.PassHash == "" || cfg.JWTSecret == "" {
			http.Error(w, "admin not configured", http.StatusForbidden)
			return
		}

		if subtle.ConstantTimeCompare([]byte(in.Username), []byte(cfg.User)) != 1 {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(cfg.PassHash), []byte(in.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, exp, err := middleware.GenerateAdminToken(cfg.JWTSecret, cfg.User)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, loginResp{
			Token:     token,
			ExpiresAt: exp,
			User:      cfg.User,
			Role:      "admin",
		})
	}
}
