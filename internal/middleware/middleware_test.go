package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rr.Header().Get("X-Request-ID"))
}

func TestAPIKey(t *testing.T) {
	h := APIKey("k1")(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "k1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	APIKey("")(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORSHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	CORS("https://farm.example")(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "https://farm.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestSessionIssuesAndReusesCookie(t *testing.T) {
	var sid string
	h := Session(SessionConfig{CookieName: "s", Secret: "secret", TTL: time.Hour})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid = SessionIDFrom(r.Context())
		}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	first := sid
	require.NotEmpty(t, first)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, first, sid)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "s", Value: "garbage"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, first, sid)
}

func TestSessionRejectsForeignSecret(t *testing.T) {
	tok, err := signSession("6f1c1f8e-7a51-4c1e-9f5a-0a2b0c3d4e5f", []byte("other"), time.Hour)
	require.NoError(t, err)
	assert.Empty(t, parseSession(tok, []byte("secret")))
	assert.Equal(t, "6f1c1f8e-7a51-4c1e-9f5a-0a2b0c3d4e5f", parseSession(tok, []byte("other")))
}

func TestAdminJWTAuth(t *testing.T) {
	h := AdminJWTAuth("s3cret")(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	tok, exp, err := GenerateAdminToken("s3cret", "root")
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	req := httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	notAdmin, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "viewer"}).SignedString([]byte("s3cret"))
	req = httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+notAdmin)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	AdminJWTAuth("")(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
