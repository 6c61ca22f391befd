// internal/middleware/session.go
// Cookie sesi dashboard: JWT HS256 berisi claim "sid". Cookie yang hilang,
// kedaluwarsa, atau tidak valid diganti sesi baru.
package middleware

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smart-farming/internal/util"
)

type SessionConfig struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "farm_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		// sesi tidak bertahan lintas restart
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		slog.Warn("SESSION_SECRET is not set, using a random per-process secret")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				sid = parseSession(c.Value, secret)
			}
			if sid == "" {
				sid = util.NewID()
			}
			// perpanjang setiap request (sliding expiry)
			if tok, err := signSession(sid, secret, cfg.TTL); err == nil {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    tok,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFrom returns the session id set by Session ("" outside it).
func SessionIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

func signSession(sid string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSession(raw string, secret []byte) string {
	var claims sessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return ""
	}
	if !util.ValidID(claims.SID) {
		return ""
	}
	return claims.SID
}
